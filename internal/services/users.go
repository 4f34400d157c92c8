package services

import (
	"errors"
	"fmt"

	"github.com/critiq-dev/critiq/internal/models"
	"github.com/critiq-dev/critiq/internal/validators"
	"gorm.io/gorm"
)

// UserService implements the admin user CRUD and the self-service profile
// operations.
type UserService struct {
	DB *gorm.DB
}

// UserInput carries a create or partial-update payload. Nil fields are left
// unchanged on update.
type UserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

func validRole(role string) bool {
	switch role {
	case models.RoleUser, models.RoleModerator, models.RoleAdmin:
		return true
	}
	return false
}

func (s *UserService) ListUsers(search string, limit, offset int) ([]models.User, int64, error) {
	query := s.DB.Model(&models.User{})

	if search != "" {
		query = query.Where("username ILIKE ?", "%"+search+"%")
	}

	var count int64

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User

	if err := query.Order("username").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

func (s *UserService) CreateUser(in UserInput) (*models.User, error) {
	if in.Username == nil || in.Email == nil {
		return nil, NewFieldError("username", "username and email are required")
	}

	username, err := validators.ValidateUsername(*in.Username)

	if err != nil {
		return nil, err
	}

	email, err := validators.ValidateEmail(*in.Email)

	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleUser,
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}

	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	if in.Bio != nil {
		user.Bio = *in.Bio
	}

	if in.Role != nil {
		if !validRole(*in.Role) {
			return nil, NewFieldError("role", "must be one of user, moderator, admin")
		}
		user.Role = *in.Role
	}

	if err := s.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username or email already in use", ErrConflict)
		}
		return nil, err
	}

	return &user, nil
}

func (s *UserService) GetUser(username string) (*models.User, error) {
	var user models.User

	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, username)
		}
		return nil, err
	}

	return &user, nil
}

func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User

	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}

	return &user, nil
}

func (s *UserService) applyUpdate(user *models.User, in UserInput) error {
	updates := make(map[string]interface{})

	if in.Username != nil && *in.Username != user.Username {
		username, err := validators.ValidateUsername(*in.Username)
		if err != nil {
			return err
		}
		updates["username"] = username
	}

	if in.Email != nil {
		email, err := validators.ValidateEmail(*in.Email)
		if err != nil {
			return err
		}
		updates["email"] = email
	}

	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}

	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}

	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}

	if in.Role != nil {
		if !validRole(*in.Role) {
			return NewFieldError("role", "must be one of user, moderator, admin")
		}
		updates["role"] = *in.Role
	}

	if len(updates) == 0 {
		return nil
	}

	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: username or email already in use", ErrConflict)
		}
		return err
	}

	return nil
}

func (s *UserService) UpdateUser(username string, in UserInput) (*models.User, error) {
	user, err := s.GetUser(username)

	if err != nil {
		return nil, err
	}

	if err := s.applyUpdate(user, in); err != nil {
		return nil, err
	}

	return s.GetUserByID(user.ID)
}

// UpdateSelf applies a profile edit with the role pinned to its stored value,
// so a client-supplied role on /users/me never escalates privileges.
func (s *UserService) UpdateSelf(userID uint, in UserInput) (*models.User, error) {
	user, err := s.GetUserByID(userID)

	if err != nil {
		return nil, err
	}

	in.Role = &user.Role

	if err := s.applyUpdate(user, in); err != nil {
		return nil, err
	}

	return s.GetUserByID(user.ID)
}

// DeleteUser removes the user and all of their authored content. Comments by
// other users on the deleted user's reviews go with the reviews.
func (s *UserService) DeleteUser(username string) error {
	user, err := s.GetUser(username)

	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var reviewIDs []uint

		if err := tx.Model(&models.Review{}).
			Where("author_id = ?", user.ID).
			Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}

		if len(reviewIDs) > 0 {
			if err := tx.Unscoped().Where("review_id IN ?", reviewIDs).
				Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("author_id = ?", user.ID).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("author_id = ?", user.ID).
			Delete(&models.Review{}).Error; err != nil {
			return err
		}

		// Unscoped frees the username and email for a later signup.
		return tx.Unscoped().Delete(user).Error
	})
}
