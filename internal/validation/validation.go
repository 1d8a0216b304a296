// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
	MinPasswordLen = 6
	MaxEmailLen    = 254
	MaxBioLen      = 500
	MaxPostLen     = 5000
	MaxCommentLen  = 2000
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLen || n > MaxUsernameLen {
		return fmt.Errorf("username must be %d-%d characters", MinUsernameLen, MaxUsernameLen)
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !emailRegex.MatchString(email) {
		return fmt.Errorf("please provide a valid email")
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TrimContent trims surrounding whitespace and reports whether anything is left.
func TrimContent(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	return trimmed, trimmed != ""
}

// ValidateLength rejects values longer than max runes.
func ValidateLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s too long (max %d characters)", field, max)
	}
	return nil
}
