// Package validators holds the field-level checks shared by the identity and
// resource services.
package validators

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/critiq-dev/critiq/internal/types"
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidScore    = errors.New("invalid score")
)

var allowedUsernameChars = regexp.MustCompile(`[\w.@+-]+`)

// ValidateUsername trims surrounding whitespace, then rejects the reserved
// username, anything empty or over 150 characters, and any character outside
// [\w.@+-]. The error lists every distinct offending character so the caller
// can see exactly what to fix. Returns the trimmed value.
func ValidateUsername(value string) (string, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return "", fmt.Errorf("%w: must not be empty", ErrInvalidUsername)
	}

	if len(value) > 150 {
		return "", fmt.Errorf("%w: must be at most 150 characters", ErrInvalidUsername)
	}

	if value == types.ReservedUsername {
		return "", fmt.Errorf("%w: username %q is reserved", ErrInvalidUsername, value)
	}

	leftover := allowedUsernameChars.ReplaceAllString(value, "")

	if leftover != "" {
		var distinct []string
		seen := make(map[rune]bool)

		for _, r := range leftover {
			if !seen[r] {
				seen[r] = true
				distinct = append(distinct, string(r))
			}
		}

		return "", fmt.Errorf("%w: forbidden characters: %s",
			ErrInvalidUsername, strings.Join(distinct, " "))
	}

	return value, nil
}

// ValidateEmail normalizes an email address to its trimmed, lowercased form
// and enforces the 254 character column limit. Format checking stays with the
// request binding.
func ValidateEmail(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	if value == "" {
		return "", fmt.Errorf("%w: must not be empty", ErrInvalidEmail)
	}

	if len(value) > 254 {
		return "", fmt.Errorf("%w: must be at most 254 characters", ErrInvalidEmail)
	}

	return value, nil
}

// ValidateYear rejects years after the current calendar year. There is no
// lower bound.
func ValidateYear(value int) error {
	now := time.Now().Year()

	if value > now {
		return fmt.Errorf("%w: year %d is after the current year %d", ErrInvalidYear, value, now)
	}

	return nil
}

// ValidateScore rejects scores outside [1,10].
func ValidateScore(value int) error {
	if value < 1 || value > 10 {
		return fmt.Errorf("%w: score %d must be between 1 and 10", ErrInvalidScore, value)
	}

	return nil
}
