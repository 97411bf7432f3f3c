package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	maxFilenameLen = 255
)

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d-%d characters", ErrValidation, minUsernameLen, maxUsernameLen)
	}
	if strings.TrimSpace(username) != username || strings.Contains(username, "/") {
		return fmt.Errorf("%w: username contains invalid characters", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}

// validateEmail accepts a bare address only, not "Name <addr>".
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return nil
}

func validateFilename(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > maxFilenameLen {
		return fmt.Errorf("%w: filename must be 1-%d characters", ErrValidation, maxFilenameLen)
	}
	if strings.Contains(name, "/") || name == "." || name == ".." {
		return fmt.Errorf("%w: filename must not be a path", ErrValidation)
	}
	return nil
}
