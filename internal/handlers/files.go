package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/file_drive/internal/middleware/auth"
	"github.com/Skotchmaster/file_drive/internal/service"
	"github.com/Skotchmaster/file_drive/internal/transport"
	"github.com/Skotchmaster/file_drive/internal/util"
)

type FileHandler struct {
	Files *service.FileService
}

func (h *FileHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.AddFileRequest
	if err := c.Bind(&req); err != nil {
		return badBody(ctx, "files_upload", err)
	}

	up, err := h.Files.AddFile(ctx, authmw.UserID(c), req.Filename, req.Mimetype)
	if err != nil {
		return httpError(ctx, "files_upload", err)
	}
	return c.JSON(http.StatusCreated, up)
}

func (h *FileHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	keys, err := h.Files.ListFiles(ctx)
	if err != nil {
		return httpError(ctx, "files_list", err)
	}
	return c.JSON(http.StatusOK, keys)
}

func (h *FileHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.FilePathRequest
	if err := c.Bind(&req); err != nil {
		return badBody(ctx, "files_get", err)
	}

	url, err := h.Files.GetFile(ctx, req.FilePath)
	if err != nil {
		return httpError(ctx, "files_get", err)
	}
	return c.JSON(http.StatusOK, transport.PresignedURLResponse{URL: url})
}

func (h *FileHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.FilePathRequest
	if err := c.Bind(&req); err != nil {
		return badBody(ctx, "files_delete", err)
	}

	if err := h.Files.DeleteFile(ctx, authmw.UserID(c), req.FilePath); err != nil {
		return httpError(ctx, "files_delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FileHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, files, err := h.Files.SearchFiles(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return httpError(ctx, "files_search", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "files": files})
}
