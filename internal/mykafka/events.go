package mykafka

import "time"

const (
	UserSignedUp        = "user_signed_up"
	UserSignedIn        = "user_signed_in"
	UserSignedOut       = "user_signed_out"
	FileUploadRequested = "file_upload_requested"
	FileDeleted         = "file_deleted"
)

type UserEvent struct {
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username,omitempty"`
	At       time.Time `json:"at"`
}

type FileEvent struct {
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	FilePath string    `json:"file_path"`
	Mimetype string    `json:"mimetype,omitempty"`
	At       time.Time `json:"at"`
}
