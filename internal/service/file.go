package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/file_drive/internal/es"
	"github.com/Skotchmaster/file_drive/internal/logging"
	"github.com/Skotchmaster/file_drive/internal/models"
	"github.com/Skotchmaster/file_drive/internal/mykafka"
	"github.com/Skotchmaster/file_drive/internal/repo"
	"github.com/Skotchmaster/file_drive/internal/storage"
	"github.com/Skotchmaster/file_drive/internal/util"
)

type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
}

type FileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindFileByName(ctx context.Context, filename string) (*models.File, error)
	CreateFile(ctx context.Context, f *models.File) error
	DeleteFileByName(ctx context.Context, filename string) (int64, error)
}

type FileService struct {
	Files   FileStore
	Objects ObjectStore
	Index   es.Indexer
	Events  mykafka.Publisher

	listing singleflight.Group
}

type UploadedFile struct {
	models.File
	PresignedURL string `json:"presignedUrl"`
}

// AddFile records metadata for a new file and returns a presigned PUT URL
// for <username>/<filename>. The bytes never pass through the server.
func (s *FileService) AddFile(ctx context.Context, callerID, filename, mimetype string) (*UploadedFile, error) {
	l := logging.FromContext(ctx).With("svc", "files.add", "filename", filename)

	if err := validateFilename(filename); err != nil {
		l.Warn("add_file_failed", "status", 400, "error", err)
		return nil, err
	}
	if mimetype == "" {
		mimetype = storage.DefaultContentType
	}

	user, err := s.caller(ctx, callerID)
	if err != nil {
		l.Warn("add_file_failed", "error", err)
		return nil, err
	}

	if _, err := s.Files.FindFileByName(ctx, filename); err == nil {
		l.Warn("add_file_failed", "status", 409, "reason", "file already exist")
		return nil, fmt.Errorf("%w: file %q exists", ErrConflict, filename)
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("add_file_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	key := storage.ObjectKey(user.Username, filename)
	url, err := s.Objects.PresignPut(ctx, key, mimetype)
	if err != nil {
		l.Error("add_file_failed", "status", 500, "reason", "cannot presign upload", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	file := models.File{Filename: filename, Username: user.Username, Mimetype: mimetype}
	if err := s.Files.CreateFile(ctx, &file); err != nil {
		l.Warn("add_file_failed", "error", err)
		return nil, storeErr(err)
	}

	if s.Index != nil {
		doc := es.FileDoc{
			ID:        file.ID.String(),
			Filename:  file.Filename,
			Username:  file.Username,
			Mimetype:  file.Mimetype,
			Path:      key,
			CreatedAt: file.CreatedAt,
		}
		if err := s.Index.IndexFile(ctx, doc); err != nil {
			l.Warn("index_file_failed", "error", err)
		}
	}
	s.publish(ctx, mykafka.FileEvent{
		Type:     mykafka.FileUploadRequested,
		UserID:   user.ID.String(),
		Username: user.Username,
		FilePath: key,
		Mimetype: mimetype,
	})

	l.Info("add_file_successful", "file_id", file.ID)
	return &UploadedFile{File: file, PresignedURL: url}, nil
}

// ListFiles returns every object key in the bucket. Concurrent callers
// share a single listing.
func (s *FileService) ListFiles(ctx context.Context) ([]string, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.listing.Do("list", func() (any, error) {
		return s.Objects.List(shared)
	})
	if err != nil {
		logging.FromContext(ctx).Error("list_files_failed", "svc", "files.list", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	keys := v.([]string)
	out := make([]string, len(keys))
	copy(out, keys)
	return out, nil
}

func (s *FileService) GetFile(ctx context.Context, filePath string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "files.get", "path", filePath)

	folder, name, err := splitPath(filePath)
	if err != nil {
		l.Warn("get_file_failed", "status", 400, "error", err)
		return "", err
	}

	url, err := s.Objects.PresignGet(ctx, storage.ObjectKey(folder, name))
	if err != nil {
		l.Error("get_file_failed", "status", 500, "error", err)
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return url, nil
}

// DeleteFile removes the object and its metadata. Callers may only delete
// under their own top-level folder.
func (s *FileService) DeleteFile(ctx context.Context, callerID, filePath string) error {
	l := logging.FromContext(ctx).With("svc", "files.delete", "path", filePath)

	folder, name, err := splitPath(filePath)
	if err != nil {
		l.Warn("delete_file_failed", "status", 400, "error", err)
		return err
	}

	user, err := s.caller(ctx, callerID)
	if err != nil {
		return err
	}
	if owner, _, _ := strings.Cut(folder, "/"); owner != user.Username {
		l.Warn("delete_file_failed", "status", 403, "caller", callerID)
		return ErrForbidden
	}

	if err := s.Objects.Delete(ctx, storage.ObjectKey(folder, name)); err != nil {
		l.Error("delete_file_failed", "status", 500, "reason", "cannot delete object", "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	meta, err := s.Files.FindFileByName(ctx, name)
	switch {
	case errors.Is(err, repo.ErrNotFound):
	case err != nil:
		l.Error("delete_file_failed", "status", 500, "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	case meta.Username == folder:
		if _, err := s.Files.DeleteFileByName(ctx, name); err != nil {
			l.Error("delete_file_failed", "status", 500, "reason", "cannot delete metadata", "error", err)
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		if s.Index != nil {
			if err := s.Index.DeleteFile(ctx, meta.ID.String()); err != nil {
				l.Warn("unindex_file_failed", "error", err)
			}
		}
	}

	s.publish(ctx, mykafka.FileEvent{
		Type:     mykafka.FileDeleted,
		UserID:   user.ID.String(),
		Username: user.Username,
		FilePath: storage.ObjectKey(folder, name),
	})
	l.Info("delete_file_successful")
	return nil
}

func (s *FileService) SearchFiles(ctx context.Context, query string, page, size int) (int64, []es.FileDoc, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: empty search query", ErrValidation)
	}
	if s.Index == nil {
		return 0, []es.FileDoc{}, nil
	}

	from, limit := util.Calculate(page, size)
	total, docs, err := s.Index.Search(ctx, query, from, limit)
	if err != nil {
		logging.FromContext(ctx).Error("search_files_failed", "svc", "files.search", "error", err)
		return 0, nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return total, docs, nil
}

func (s *FileService) caller(ctx context.Context, callerID string) (*models.User, error) {
	id, err := uuid.Parse(callerID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.Files.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

func (s *FileService) publish(ctx context.Context, ev mykafka.FileEvent) {
	if s.Events == nil {
		return
	}
	ev.At = time.Now().UTC()
	if err := s.Events.PublishEvent(ctx, mykafka.TopicFileEvents, ev.UserID, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_failed", "topic", mykafka.TopicFileEvents, "event", ev.Type, "error", err)
	}
}

// splitPath separates "<folder>/<name>". The folder may itself be nested;
// its first segment is the owning username.
func splitPath(filePath string) (folder, name string, err error) {
	parts := strings.Split(filePath, "/")
	if len(parts) < 2 || slices.Contains(parts, "") {
		return "", "", fmt.Errorf("%w: file path must look like <folder>/<name>", ErrValidation)
	}
	last := len(parts) - 1
	return strings.Join(parts[:last], "/"), parts[last], nil
}
