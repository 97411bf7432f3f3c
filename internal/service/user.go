package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/file_drive/internal/logging"
	"github.com/Skotchmaster/file_drive/internal/models"
	"github.com/Skotchmaster/file_drive/internal/repo"
)

type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) (*models.User, error)
	DeleteUserByUsername(ctx context.Context, username string) error
}

type UserService struct {
	Users UserStore
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.Users.ListUsers(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_users_failed", "svc", "users.list", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed user id", ErrValidation)
	}
	user, err := s.Users.FindByID(ctx, uid)
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

// UpdateEmail only lets callers change their own record.
func (s *UserService) UpdateEmail(ctx context.Context, callerID, id, email string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.update", "user_id", id)

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed user id", ErrValidation)
	}
	if callerID != uid.String() {
		l.Warn("update_user_failed", "status", 403, "caller", callerID)
		return nil, ErrForbidden
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.Users.UpdateEmail(ctx, uid, email)
	if err != nil {
		l.Warn("update_user_failed", "error", err)
		return nil, storeErr(err)
	}
	l.Info("update_user_successful")
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, callerID, username string) error {
	l := logging.FromContext(ctx).With("svc", "users.delete", "username", username)

	caller, err := s.GetUser(ctx, callerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
			return ErrUnauthorized
		}
		return err
	}
	if caller.Username != username {
		l.Warn("delete_user_failed", "status", 403, "caller", callerID)
		return ErrForbidden
	}

	if err := s.Users.DeleteUserByUsername(ctx, username); err != nil {
		l.Error("delete_user_failed", "error", err)
		return storeErr(err)
	}
	l.Info("delete_user_successful")
	return nil
}

func storeErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrAlreadyExists):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}
