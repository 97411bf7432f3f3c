package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/file_drive/internal/logging"
	"github.com/Skotchmaster/file_drive/internal/tokens"
)

const (
	UserIDKey = "user_id"
	tokenKey  = "bearer_token"
)

// Bearer accepts "Authorization: Bearer <token>" tokens that v verifies.
// Access and refresh tokens differ only by which verifier is passed in.
func Bearer(v tokens.Verifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  tokenKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			sub, err := v.Verify(auth)
			if err != nil {
				return nil, err
			}
			c.Set(UserIDKey, sub)
			return auth, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		},
	})
}

func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}

func Token(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}
