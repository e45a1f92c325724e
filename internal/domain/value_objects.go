package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if len(s) > 255 {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// Email is a validated, lower-cased email address.
type Email struct {
	value string
}

// NewEmail parses and normalizes an email address.
func NewEmail(s string) (Email, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return Email{}, fmt.Errorf("%w: %s", ErrInvalidEmail, s)
	}
	return Email{value: s}, nil
}

// String returns the email value.
func (e Email) String() string {
	return e.value
}

// NewUserRole validates and creates a UserRole. Matching is case-insensitive.
func NewUserRole(s string) (UserRole, error) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(s)))

	switch role {
	case UserRoleUser, UserRoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidUserRole, s)
	}
}

// ValidatePassword checks the password policy: at least 8 characters,
// at least one digit and at least one upper-case letter.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasDigit, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}

	if !hasDigit || !hasUpper {
		return ErrWeakPassword
	}
	return nil
}
