package services

import (
	"errors"
	"fmt"

	"github.com/critiq-dev/critiq/internal/models"
	"github.com/critiq-dev/critiq/internal/validators"
	"gorm.io/gorm"
)

// ReviewService manages reviews scoped to a parent title. At most one review
// per (author, title) pair, enforced on create; the composite unique index is
// the authoritative arbiter when creates race.
type ReviewService struct {
	DB *gorm.DB
}

func (s *ReviewService) requireTitle(titleID uint) error {
	var title models.Title

	if err := s.DB.First(&title, titleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: title %d", ErrNotFound, titleID)
		}
		return err
	}

	return nil
}

func (s *ReviewService) CreateReview(titleID, authorID uint, text string, score int) (*models.Review, error) {
	if text == "" {
		return nil, NewFieldError("text", "must not be empty")
	}

	if err := validators.ValidateScore(score); err != nil {
		return nil, NewFieldError("score", err.Error())
	}

	if err := s.requireTitle(titleID); err != nil {
		return nil, err
	}

	var existing models.Review

	err := s.DB.Where("title_id = ? AND author_id = ?", titleID, authorID).First(&existing).Error

	if err == nil {
		return nil, fmt.Errorf("%w: you have already reviewed this title", ErrConflict)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := models.Review{
		Text:     text,
		Score:    score,
		AuthorID: authorID,
		TitleID:  titleID,
	}

	if err := s.DB.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: you have already reviewed this title", ErrConflict)
		}
		return nil, err
	}

	return s.GetReview(titleID, review.ID)
}

func (s *ReviewService) ListReviews(titleID uint, limit, offset int) ([]models.Review, int64, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, 0, err
	}

	var count int64

	if err := s.DB.Model(&models.Review{}).
		Where("title_id = ?", titleID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review

	if err := s.DB.Preload("Author").
		Where("title_id = ?", titleID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, count, nil
}

func (s *ReviewService) GetReview(titleID, reviewID uint) (*models.Review, error) {
	var review models.Review

	err := s.DB.Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&review).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		return nil, err
	}

	return &review, nil
}

// UpdateReview edits an existing review. The one-review-per-title rule only
// applies on create, so an author editing their own review never conflicts.
func (s *ReviewService) UpdateReview(titleID, reviewID uint, text *string, score *int) (*models.Review, error) {
	review, err := s.GetReview(titleID, reviewID)

	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if text != nil {
		if *text == "" {
			return nil, NewFieldError("text", "must not be empty")
		}
		updates["text"] = *text
	}

	if score != nil {
		if err := validators.ValidateScore(*score); err != nil {
			return nil, NewFieldError("score", err.Error())
		}
		updates["score"] = *score
	}

	if len(updates) > 0 {
		if err := s.DB.Model(review).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetReview(titleID, reviewID)
}

// DeleteReview permanently removes the review and its comments in one
// transaction. The row is gone from the unique index, so the author can
// review the title again afterwards.
func (s *ReviewService) DeleteReview(titleID, reviewID uint) error {
	review, err := s.GetReview(titleID, reviewID)

	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("review_id = ?", review.ID).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(review).Error
	})
}
