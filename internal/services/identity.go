package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/critiq-dev/critiq/internal/auth"
	"github.com/critiq-dev/critiq/internal/models"
	"github.com/critiq-dev/critiq/internal/validators"
	"gorm.io/gorm"
)

// IdentityService implements signup and token issuance. Registration is
// idempotent for an exact (username, email) pair; any other clash on either
// column is a conflict.
type IdentityService struct {
	DB     *gorm.DB
	Sender Sender
}

func (s *IdentityService) Register(username, email string) error {
	username, err := validators.ValidateUsername(username)

	if err != nil {
		return err
	}

	email, err = validators.ValidateEmail(email)

	if err != nil {
		return err
	}

	code := auth.NewConfirmationCode()
	hash, err := auth.HashConfirmationCode(code)

	if err != nil {
		return err
	}

	var user models.User

	err = s.DB.Where("username = ? OR email = ?", username, email).First(&user).Error

	switch {
	case err == nil:
		if user.Username != username || user.Email != email {
			return fmt.Errorf("%w: username or email already in use", ErrConflict)
		}

		// Re-request for the same identity: rotate the code and resend.
		if err := s.DB.Model(&user).Update("confirmation_code", hash).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Username:         username,
			Email:            email,
			Role:             models.RoleUser,
			ConfirmationCode: hash,
		}

		if err := s.DB.Create(&user).Error; err != nil {
			// The unique indexes are the authoritative arbiter when two
			// signups race.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: username or email already in use", ErrConflict)
			}
			return err
		}
	default:
		return err
	}

	subject := "Confirmation code"
	body := fmt.Sprintf("Your username is %s, confirmation code: %s", user.Username, code)

	if err := s.Sender.Send(user.Email, subject, body); err != nil {
		// Registration already succeeded; the user can request a resend.
		log.Printf("Failed to send confirmation code to %s: %v", user.Email, err)
	}

	return nil
}

// IssueToken exchanges a confirmation code for a signed access token. The
// stored code is cleared on success, so a code works exactly once; signing up
// again issues a fresh one.
func (s *IdentityService) IssueToken(username, code string) (string, error) {
	var user models.User

	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user %s", ErrNotFound, username)
		}
		return "", err
	}

	if !auth.CheckConfirmationCode(user.ConfirmationCode, code) {
		return "", ErrInvalidConfirmationCode
	}

	token, err := auth.GenerateJWT(user.ID, user.Username)

	if err != nil {
		return "", err
	}

	if err := s.DB.Model(&user).Update("confirmation_code", "").Error; err != nil {
		return "", err
	}

	return token, nil
}
