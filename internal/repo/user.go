package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/file_drive/internal/models"
)

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CreateUser inserts u unless the username is taken. The unique index
// catches the race between two concurrent sign-ups.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	candidate := *u
	tx := r.DB.WithContext(ctx).Where("username = ?", u.Username).FirstOrCreate(&candidate)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	*u = candidate
	return nil
}

// UpdateRefreshHash overwrites the stored refresh-token hash in one UPDATE;
// concurrent writers for the same user resolve last-write-wins.
func (r *GormRepo) UpdateRefreshHash(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token_hash", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SwapRefreshHash replaces the stored refresh hash only while it still equals
// old. ErrNotFound means the user is gone or another writer got there first.
func (r *GormRepo) SwapRefreshHash(ctx context.Context, id uuid.UUID, old, hash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token_hash = ?", id, old).
		Update("refresh_token_hash", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) (*models.User, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("email", email)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *GormRepo) DeleteUserByUsername(ctx context.Context, username string) error {
	res := r.DB.WithContext(ctx).Where("username = ?", username).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
