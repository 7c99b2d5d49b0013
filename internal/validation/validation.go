// Package validation contains input policy checks for account fields.
package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

const (
	minNameLen     = 2
	maxNameLen     = 60
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit
)

// ValidateName checks the display name length bounds.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < minNameLen {
		return errors.New("name must be at least 2 characters")
	}
	if len(trimmed) > maxNameLen {
		return errors.New("name must be at most 60 characters")
	}
	return nil
}

// ValidateEmail checks that the address parses as a bare RFC 5322 address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("email must be a valid address")
	}
	return nil
}

// ValidatePassword enforces the password policy: length bounds plus at
// least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > maxPasswordLen {
		return errors.New("password must be at most 72 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("password must contain at least one letter and one digit")
	}
	return nil
}
