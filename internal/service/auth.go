package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/file_drive/internal/hash"
	"github.com/Skotchmaster/file_drive/internal/logging"
	"github.com/Skotchmaster/file_drive/internal/models"
	"github.com/Skotchmaster/file_drive/internal/mykafka"
	"github.com/Skotchmaster/file_drive/internal/repo"
)

type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateRefreshHash(ctx context.Context, id uuid.UUID, hash string) error
	SwapRefreshHash(ctx context.Context, id uuid.UUID, old, hash string) error
}

type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
	Verify(token string) (string, error)
}

type AuthService struct {
	Users         CredentialStore
	Hasher        hash.Hasher
	AccessTokens  TokenIssuer
	RefreshTokens TokenIssuer
	Events        mykafka.Publisher
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AccessExp    time.Time `json:"-"`
	RefreshExp   time.Time `json:"-"`
}

func (s *AuthService) SignUp(ctx context.Context, username, password, email string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup", "username", username)

	for _, err := range []error{validateUsername(username), validatePassword(password), validateEmail(email)} {
		if err != nil {
			l.Warn("signup_error", "status", 400, "error", err)
			return nil, err
		}
	}

	pwHash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("%w: hash password: %w", ErrInternal, err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			l.Warn("signup_error", "status", 409, "reason", "user already exist")
			return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
		l.Error("signup_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.publish(ctx, user.ID.String(), mykafka.UserSignedUp, user.Username)
	l.Info("signup_successful", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signin", "username", username)

	if username == "" || password == "" {
		l.Warn("signin_failed", "status", 400, "reason", "empty credentials")
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("signin_failed", "status", 401, "reason", "invalid username or password")
			return nil, ErrUnauthorized
		}
		l.Error("signin_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if !s.Hasher.Verify(ctx, password, user.PasswordHash) {
		l.Warn("signin_failed", "status", 401, "reason", "invalid username or password")
		return nil, ErrUnauthorized
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("signin_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, user.ID.String(), mykafka.UserSignedIn, user.Username)
	l.Info("signin_successful", "user_id", user.ID)
	return pair, nil
}

// Refresh rotates the stored refresh hash; the presented token is dead afterwards.
// The rotation only lands if the hash is unchanged since it was checked, so a
// token refreshes at most once and a concurrent sign-out is never undone.
func (s *AuthService) Refresh(ctx context.Context, identityID, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh", "user_id", identityID)

	user, err := s.lookup(ctx, identityID)
	if err != nil {
		l.Warn("refresh_failed", "error", err)
		return nil, err
	}

	if user.RefreshTokenHash == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "signed out")
		return nil, ErrUnauthorized
	}
	if !s.Hasher.Verify(ctx, refreshToken, user.RefreshTokenHash) {
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token mismatch")
		return nil, ErrUnauthorized
	}

	pair, refreshHash, err := s.mintPair(ctx, user)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	if err := s.Users.SwapRefreshHash(ctx, user.ID, user.RefreshTokenHash, refreshHash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "refresh token already rotated")
			return nil, ErrUnauthorized
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	l.Info("refresh_successful")
	return pair, nil
}

func (s *AuthService) SignOut(ctx context.Context, identityID string) error {
	l := logging.FromContext(ctx).With("svc", "auth.signout", "user_id", identityID)

	id, err := uuid.Parse(identityID)
	if err != nil {
		l.Warn("signout_failed", "status", 401, "reason", "malformed subject")
		return ErrUnauthorized
	}

	if err := s.Users.UpdateRefreshHash(ctx, id, ""); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("signout_failed", "status", 401, "reason", "unknown user")
			return ErrUnauthorized
		}
		l.Error("signout_failed", "status", 500, "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.publish(ctx, identityID, mykafka.UserSignedOut, "")
	l.Info("signout_successful")
	return nil
}

// ValidateAccessToken checks signature and expiry only. A signed-out user's
// access token stays valid until it expires.
func (s *AuthService) ValidateAccessToken(token string) (string, error) {
	sub, err := s.AccessTokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return sub, nil
}

func (s *AuthService) lookup(ctx context.Context, identityID string) (*models.User, error) {
	id, err := uuid.Parse(identityID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return user, nil
}

// issuePair mints a pair and unconditionally stores its refresh hash.
func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	pair, refreshHash, err := s.mintPair(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.Users.UpdateRefreshHash(ctx, user.ID, refreshHash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return pair, nil
}

func (s *AuthService) mintPair(ctx context.Context, user *models.User) (*TokenPair, string, error) {
	sub := user.ID.String()

	access, accessExp, err := s.AccessTokens.Issue(sub)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInternal, err)
	}
	refresh, refreshExp, err := s.RefreshTokens.Issue(sub)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInternal, err)
	}

	refreshHash, err := s.Hasher.Hash(ctx, refresh)
	if err != nil {
		return nil, "", fmt.Errorf("%w: hash refresh token: %w", ErrInternal, err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, refreshHash, nil
}

func (s *AuthService) publish(ctx context.Context, userID, eventType, username string) {
	if s.Events == nil {
		return
	}
	ev := mykafka.UserEvent{Type: eventType, UserID: userID, Username: username, At: time.Now().UTC()}
	if err := s.Events.PublishEvent(ctx, mykafka.TopicUserEvents, userID, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_failed", "topic", mykafka.TopicUserEvents, "event", eventType, "error", err)
	}
}
