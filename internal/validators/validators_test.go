package validators

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"plain", "alice", false},
		{"all allowed specials", "a.b@c+d-e_f", false},
		{"digits", "user42", false},
		{"reserved", "me", true},
		{"space", "al ice", true},
		{"hash", "alice#1", true},
		{"non-ascii letters rejected", "пользователь", true},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"at the length cap", strings.Repeat("a", 150), false},
		{"over the length cap", strings.Repeat("a", 151), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateUsername(tt.username)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidUsername)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.username, got)
		})
	}
}

func TestValidateUsernameTrimsWhitespace(t *testing.T) {
	got, err := ValidateUsername("  alice\t")

	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got)

	_, err = ValidateEmail("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = ValidateEmail(strings.Repeat("a", 250) + "@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestValidateUsernameEnumeratesOffendingCharacters(t *testing.T) {
	_, err := ValidateUsername("a!b!c$d e")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "!")
	assert.Contains(t, err.Error(), "$")
	assert.Contains(t, err.Error(), " ")
	// Each offending character is listed once.
	assert.Equal(t, 1, strings.Count(err.Error(), "!"))
}

func TestValidateYear(t *testing.T) {
	current := time.Now().Year()

	assert.NoError(t, ValidateYear(current))
	assert.NoError(t, ValidateYear(current-50))
	// No lower bound.
	assert.NoError(t, ValidateYear(-500))

	err := ValidateYear(current + 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidYear)
}

func TestValidateScore(t *testing.T) {
	for score := 1; score <= 10; score++ {
		assert.NoError(t, ValidateScore(score))
	}

	for _, score := range []int{0, -1, 11, 100} {
		err := ValidateScore(score)
		require.Error(t, err, "score %d", score)
		assert.ErrorIs(t, err, ErrInvalidScore)
	}
}
