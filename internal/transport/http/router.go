package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/file_drive/internal/db"
	"github.com/Skotchmaster/file_drive/internal/handlers"
	authmw "github.com/Skotchmaster/file_drive/internal/middleware/auth"
	"github.com/Skotchmaster/file_drive/internal/tokens"
)

type Deps struct {
	DB              *gorm.DB
	UserHandler     *handlers.UserHandler
	FileHandler     *handlers.FileHandler
	AccessVerifier  tokens.Verifier
	RefreshVerifier tokens.Verifier
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	access := authmw.Bearer(d.AccessVerifier)
	refresh := authmw.Bearer(d.RefreshVerifier)

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("/signup", d.UserHandler.SignUp)
	users.POST("/signin", d.UserHandler.SignIn)
	users.POST("/refresh", d.UserHandler.Refresh, refresh)
	users.POST("/signout", d.UserHandler.SignOut, access)
	users.GET("", d.UserHandler.List, access)
	users.GET("/:id", d.UserHandler.Get, access)
	users.PATCH("/:id", d.UserHandler.Update, access)
	users.DELETE("/:username", d.UserHandler.Delete, access)

	files := api.Group("/files", access)
	files.POST("/upload", d.FileHandler.Upload)
	files.GET("/all", d.FileHandler.List)
	files.POST("/file", d.FileHandler.Get)
	files.DELETE("/file", d.FileHandler.Delete)
	files.GET("/search", d.FileHandler.Search)
}
