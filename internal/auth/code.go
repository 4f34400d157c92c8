package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NewConfirmationCode returns a fresh opaque confirmation code. The code is
// sent to the user and only its hash is persisted.
func NewConfirmationCode() string {
	return uuid.NewString()
}

func HashConfirmationCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func CheckConfirmationCode(hash, code string) bool {
	if hash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
