package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Username         string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email            string    `gorm:"not null"                 json:"email"`
	PasswordHash     string    `gorm:"not null"                 json:"-"`
	RefreshTokenHash string    `gorm:"not null;default:''"      json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type File struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Filename  string    `gorm:"uniqueIndex;not null"     json:"filename"`
	Username  string    `gorm:"index;not null"           json:"username"`
	Mimetype  string    `gorm:"not null"                 json:"mimetype"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f *File) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func All() []any {
	return []any{&User{}, &File{}}
}
