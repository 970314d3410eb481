package validator

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores the rest
)

var (
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrPasswordLength  = errors.New("password must be between 8 and 72 characters")
	ErrFullNameMissing = errors.New("full name is required")
)

// NormalizeEmail lowercases and trims an address after checking that it is a bare address.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || !strings.Contains(email[at:], ".") {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrPasswordLength
	}
	return nil
}

func ValidateFullName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrFullNameMissing
	}
	return nil
}
