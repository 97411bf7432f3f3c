package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/file_drive/internal/logging"
	authmw "github.com/Skotchmaster/file_drive/internal/middleware/auth"
	"github.com/Skotchmaster/file_drive/internal/service"
	"github.com/Skotchmaster/file_drive/internal/transport"
)

type UserHandler struct {
	Auth  *service.AuthService
	Users *service.UserService
}

func (h *UserHandler) SignUp(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return badBody(ctx, "users_signup", err)
	}

	user, err := h.Auth.SignUp(ctx, req.Username, req.Password, req.Email)
	if err != nil {
		return httpError(ctx, "users_signup", err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.SignInRequest
	if err := c.Bind(&req); err != nil {
		return badBody(ctx, "users_signin", err)
	}

	pair, err := h.Auth.SignIn(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(ctx, "users_signin", err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh sits behind the refresh-token bearer middleware.
func (h *UserHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	pair, err := h.Auth.Refresh(ctx, authmw.UserID(c), authmw.Token(c))
	if err != nil {
		return httpError(ctx, "users_refresh", err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *UserHandler) SignOut(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Auth.SignOut(ctx, authmw.UserID(c)); err != nil {
		return httpError(ctx, "users_signout", err)
	}
	logging.FromContext(ctx).Info("successful_signout", "handler", "users_signout")
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		return httpError(ctx, "users_list", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.Users.GetUser(ctx, c.Param("id"))
	if err != nil {
		return httpError(ctx, "users_get", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(ctx, "users_update", err)
	}

	user, err := h.Users.UpdateEmail(ctx, authmw.UserID(c), c.Param("id"), req.Email)
	if err != nil {
		return httpError(ctx, "users_update", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Users.DeleteUser(ctx, authmw.UserID(c), c.Param("username")); err != nil {
		return httpError(ctx, "users_delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}
