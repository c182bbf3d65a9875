package auth

import (
	"fmt"
	"strings"
)

// Policy selects a password strength preset.
type Policy string

const (
	// PolicyStrict requires length, three character classes and a special
	// character. Registration uses this preset.
	PolicyStrict Policy = "strict"
	// PolicyBasic requires length and three character classes only. It is
	// the lighter preset matching client-side login form checks.
	PolicyBasic Policy = "basic"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
	passwordMinLen = 8

	specialChars = "@$!%*?&"
)

// ValidateUsername checks syntax rules only: length 3-20 and the
// [A-Za-z0-9_] charset. Uniqueness is a store question and is checked by
// the caller. The returned slice holds every violated rule; empty means
// valid.
func ValidateUsername(username string) []string {
	var errs []string

	if len(username) < usernameMinLen {
		errs = append(errs, fmt.Sprintf("username must be at least %d characters long", usernameMinLen))
	}
	if len(username) > usernameMaxLen {
		errs = append(errs, fmt.Sprintf("username must be no more than %d characters long", usernameMaxLen))
	}
	if !isUsernameCharset(username) {
		errs = append(errs, "username can only contain letters, numbers, and underscores")
	}

	return errs
}

// ValidatePassword checks the password against the given policy preset.
// All violations are accumulated so the caller can report them at once.
func ValidatePassword(password string, policy Policy) []string {
	var errs []string

	if len(password) < passwordMinLen {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", passwordMinLen))
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}

	if !hasLower {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if !hasUpper {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain at least one number")
	}
	if policy == PolicyStrict && !hasSpecial {
		errs = append(errs, fmt.Sprintf("password must contain at least one special character (%s)", specialChars))
	}

	return errs
}

func isUsernameCharset(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
