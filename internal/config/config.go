package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrConfig = errors.New("invalid configuration")

type Config struct {
	Env        string
	ServerHost string
	ServerPort int
	LogLevel   string

	DBDriver    string
	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	JWTIssuer        string
	JWTAudience      string

	HashWorkers int

	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3ForcePathStyle bool
	PresignTTL       time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	parseErrs []string
}

// Load reads the env file picked by APP_ENV and then the process environment.
// The result is not validated; call Validate before using it.
func Load() *Config {
	loadEnvFile(os.Getenv("APP_ENV"))

	env := &envReader{}
	cfg := &Config{
		Env:        EnvDefault("APP_ENV", "local"),
		ServerHost: EnvDefault("SERVER_HOST", "localhost"),
		ServerPort: env.intDefault("SERVER_PORT", 3000),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(EnvDefault("DB_DRIVER", "postgres")),
		DatabaseURL: databaseURL(),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTokenTTL:   env.durationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  env.durationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		JWTIssuer:        EnvDefault("JWT_ISSUER", "file_drive"),
		JWTAudience:      EnvDefault("JWT_AUDIENCE", "file_drive"),

		HashWorkers: env.intDefault("HASH_WORKERS", runtime.NumCPU()),

		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         EnvDefault("REGION", "us-east-1"),
		S3Endpoint:       os.Getenv("ENDPOINT"),
		S3AccessKey:      os.Getenv("ACCESS_KEY"),
		S3SecretKey:      os.Getenv("SECRET_ACCESS_KEY"),
		S3ForcePathStyle: env.boolDefault("FORCE_STYLE", false),
		PresignTTL:       env.durationDefault("PRESIGN_TTL", 10*time.Minute),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "files"),
	}
	cfg.parseErrs = env.errs
	return cfg
}

func (c *Config) Validate() error {
	problems := append([]string(nil), c.parseErrs...)

	if len(c.JWTAccessSecret) == 0 {
		problems = append(problems, "JWT_SECRET is empty")
	}
	if len(c.JWTRefreshSecret) == 0 {
		problems = append(problems, "JWT_REFRESH_SECRET is empty")
	}
	if len(c.JWTAccessSecret) > 0 && string(c.JWTAccessSecret) == string(c.JWTRefreshSecret) {
		problems = append(problems, "JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.AccessTokenTTL <= 0 {
		problems = append(problems, "ACCESS_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		problems = append(problems, "REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}
	if c.HashWorkers < 1 {
		problems = append(problems, "HASH_WORKERS must be at least 1")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		problems = append(problems, fmt.Sprintf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is empty")
	}
	if c.S3Bucket == "" {
		problems = append(problems, "S3_BUCKET is empty")
	}
	if c.PresignTTL <= 0 {
		problems = append(problems, "PRESIGN_TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

func loadEnvFile(env string) {
	var file string
	switch env {
	case "prod":
		file = ".env.prod"
	case "dev":
		file = ".env.dev"
	default:
		file = ".env.local"
	}

	if err := godotenv.Load(file); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Notice: %s file not found. Using system environment variables", file)
		}
	}
}

func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		EnvDefault("POSTGRES_PORT", "5432"),
		os.Getenv("POSTGRES_DB"),
	)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envReader parses typed variables and records malformed values for Validate.
type envReader struct {
	errs []string
}

func (r *envReader) fail(key, v string, err error) {
	r.errs = append(r.errs, fmt.Sprintf("%s=%q: %v", key, v, err))
}

func (r *envReader) intDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *envReader) boolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *envReader) durationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}
