// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	MinNameLen     = 3
	MaxNameLen     = 100
	MinPasswordLen = 6
	MaxPasswordLen = 100
	MaxTitleLen    = 100
	MaxTextLen     = 5000
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateName checks display name length bounds.
func ValidateName(name string) error {
	if len(name) < MinNameLen {
		return fmt.Errorf("name must be at least %d characters long", MinNameLen)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLen)
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLen)
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	return nil
}

// ValidateTitle checks that a post title is present and within bounds.
func ValidateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}
	return nil
}

// ValidateText checks that post or response text is present, within bounds,
// and not blank. Blankness is judged on the text with all whitespace
// removed, so a body of spaces and newlines is rejected.
func ValidateText(text string) error {
	if text == "" {
		return fmt.Errorf("text is required")
	}
	if len(text) > MaxTextLen {
		return fmt.Errorf("text must not exceed %d characters", MaxTextLen)
	}
	if stripWhitespace(text) == "" {
		return fmt.Errorf("text must not be blank")
	}
	return nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
