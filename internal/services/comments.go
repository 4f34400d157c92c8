package services

import (
	"errors"
	"fmt"

	"github.com/critiq-dev/critiq/internal/models"
	"gorm.io/gorm"
)

// CommentService manages comments scoped to a parent review. The review is
// addressed through its title in the URL, but only the review linkage matters
// for data access.
type CommentService struct {
	DB *gorm.DB
}

func (s *CommentService) requireReview(titleID, reviewID uint) (*models.Review, error) {
	var review models.Review

	err := s.DB.Where("id = ? AND title_id = ?", reviewID, titleID).First(&review).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		return nil, err
	}

	return &review, nil
}

func (s *CommentService) CreateComment(titleID, reviewID, authorID uint, text string) (*models.Comment, error) {
	if text == "" {
		return nil, NewFieldError("text", "must not be empty")
	}

	review, err := s.requireReview(titleID, reviewID)

	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		Text:     text,
		AuthorID: authorID,
		ReviewID: review.ID,
	}

	if err := s.DB.Create(&comment).Error; err != nil {
		return nil, err
	}

	return s.GetComment(titleID, reviewID, comment.ID)
}

func (s *CommentService) ListComments(titleID, reviewID uint, limit, offset int) ([]models.Comment, int64, error) {
	review, err := s.requireReview(titleID, reviewID)

	if err != nil {
		return nil, 0, err
	}

	var count int64

	if err := s.DB.Model(&models.Comment{}).
		Where("review_id = ?", review.ID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment

	if err := s.DB.Preload("Author").
		Where("review_id = ?", review.ID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	return comments, count, nil
}

func (s *CommentService) GetComment(titleID, reviewID, commentID uint) (*models.Comment, error) {
	review, err := s.requireReview(titleID, reviewID)

	if err != nil {
		return nil, err
	}

	var comment models.Comment

	err = s.DB.Preload("Author").
		Where("id = ? AND review_id = ?", commentID, review.ID).
		First(&comment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: comment %d", ErrNotFound, commentID)
		}
		return nil, err
	}

	return &comment, nil
}

func (s *CommentService) UpdateComment(titleID, reviewID, commentID uint, text string) (*models.Comment, error) {
	if text == "" {
		return nil, NewFieldError("text", "must not be empty")
	}

	comment, err := s.GetComment(titleID, reviewID, commentID)

	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(comment).Update("text", text).Error; err != nil {
		return nil, err
	}

	return s.GetComment(titleID, reviewID, commentID)
}

func (s *CommentService) DeleteComment(titleID, reviewID, commentID uint) error {
	comment, err := s.GetComment(titleID, reviewID, commentID)

	if err != nil {
		return err
	}

	return s.DB.Unscoped().Delete(comment).Error
}
