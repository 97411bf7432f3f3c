package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/file_drive/internal/config"
	"github.com/Skotchmaster/file_drive/internal/db"
	"github.com/Skotchmaster/file_drive/internal/es"
	"github.com/Skotchmaster/file_drive/internal/handlers"
	"github.com/Skotchmaster/file_drive/internal/hash"
	"github.com/Skotchmaster/file_drive/internal/logging"
	loggingmw "github.com/Skotchmaster/file_drive/internal/middleware/logging"
	"github.com/Skotchmaster/file_drive/internal/mykafka"
	"github.com/Skotchmaster/file_drive/internal/repo"
	"github.com/Skotchmaster/file_drive/internal/service"
	"github.com/Skotchmaster/file_drive/internal/storage"
	"github.com/Skotchmaster/file_drive/internal/tokens"
	httpserver "github.com/Skotchmaster/file_drive/internal/transport/http"
)

func fatal(l *slog.Logger, msg string, err error) {
	l.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		fatal(log, "config_error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		fatal(log, "db_init_failed", err)
	}
	store := &repo.GormRepo{DB: gdb}

	scrypt, err := hash.NewScrypt(hash.DefaultParams)
	if err != nil {
		fatal(log, "hasher_init_failed", err)
	}
	hasher := hash.NewPool(scrypt, cfg.HashWorkers)

	access, err := tokens.New(tokens.Config{
		Secret:   cfg.JWTAccessSecret,
		TTL:      cfg.AccessTokenTTL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		fatal(log, "access_issuer_init_failed", err)
	}
	refresh, err := tokens.New(tokens.Config{
		Secret:   cfg.JWTRefreshSecret,
		TTL:      cfg.RefreshTokenTTL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		fatal(log, "refresh_issuer_init_failed", err)
	}

	objects, err := storage.New(ctx, storage.Config{
		Bucket:         cfg.S3Bucket,
		Region:         cfg.S3Region,
		Endpoint:       cfg.S3Endpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		ForcePathStyle: cfg.S3ForcePathStyle,
		PresignTTL:     cfg.PresignTTL,
	})
	if err != nil {
		fatal(log, "storage_init_failed", err)
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		fatal(log, "bucket_init_failed", err)
	}

	index, err := es.New(ctx, es.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		fatal(log, "search_init_failed", err)
	}

	events := mykafka.New(cfg.KafkaBrokers)

	auth := &service.AuthService{
		Users:         store,
		Hasher:        hasher,
		AccessTokens:  access,
		RefreshTokens: refresh,
		Events:        events,
	}
	files := &service.FileService{
		Files:   store,
		Objects: objects,
		Index:   index,
		Events:  events,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(log),
		middleware.CORS(),
	)

	httpserver.Register(e, &httpserver.Deps{
		DB:              gdb,
		UserHandler:     &handlers.UserHandler{Auth: auth, Users: &service.UserService{Users: store}},
		FileHandler:     &handlers.FileHandler{Files: files},
		AccessVerifier:  tokens.VerifierFunc(auth.ValidateAccessToken),
		RefreshVerifier: refresh,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info("server_started", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	if err := events.Close(); err != nil {
		log.Error("kafka_close_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Error("db_close_error", "error", err)
	}

	log.Info("shutdown complete")
}
