package services

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/critiq-dev/critiq/internal/models"
	"gorm.io/gorm"
)

// CatalogService manages categories and genres: create, searchable list and
// delete by slug. Neither resource has an update operation.
type CatalogService struct {
	DB *gorm.DB
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func validateSlugRef(name, slug string) error {
	if name == "" || len(name) > 256 {
		return NewFieldError("name", "must be between 1 and 256 characters")
	}

	if slug == "" || len(slug) > 50 {
		return NewFieldError("slug", "must be between 1 and 50 characters")
	}

	if !slugPattern.MatchString(slug) {
		return NewFieldError("slug", "may only contain letters, numbers, hyphens and underscores")
	}

	return nil
}

func (s *CatalogService) CreateCategory(name, slug string) (*models.Category, error) {
	if err := validateSlugRef(name, slug); err != nil {
		return nil, err
	}

	category := models.Category{Name: name, Slug: slug}

	if err := s.DB.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug %s already exists", ErrConflict, slug)
		}
		return nil, err
	}

	return &category, nil
}

func (s *CatalogService) ListCategories(search string, limit, offset int) ([]models.Category, int64, error) {
	query := s.DB.Model(&models.Category{})

	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var count int64

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var categories []models.Category

	if err := query.Order("name").Limit(limit).Offset(offset).Find(&categories).Error; err != nil {
		return nil, 0, err
	}

	return categories, count, nil
}

// DeleteCategory removes the category and nullifies the category reference on
// any title pointing at it, in one transaction.
func (s *CatalogService) DeleteCategory(slug string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var category models.Category

		if err := tx.Where("slug = ?", slug).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: category %s", ErrNotFound, slug)
			}
			return err
		}

		if err := tx.Model(&models.Title{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		// Unscoped frees the slug for reuse.
		return tx.Unscoped().Delete(&category).Error
	})
}

func (s *CatalogService) CreateGenre(name, slug string) (*models.Genre, error) {
	if err := validateSlugRef(name, slug); err != nil {
		return nil, err
	}

	genre := models.Genre{Name: name, Slug: slug}

	if err := s.DB.Create(&genre).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug %s already exists", ErrConflict, slug)
		}
		return nil, err
	}

	return &genre, nil
}

func (s *CatalogService) ListGenres(search string, limit, offset int) ([]models.Genre, int64, error) {
	query := s.DB.Model(&models.Genre{})

	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var count int64

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var genres []models.Genre

	if err := query.Order("name").Limit(limit).Offset(offset).Find(&genres).Error; err != nil {
		return nil, 0, err
	}

	return genres, count, nil
}

// DeleteGenre removes the genre and its title associations, in one
// transaction. Titles themselves are untouched.
func (s *CatalogService) DeleteGenre(slug string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var genre models.Genre

		if err := tx.Where("slug = ?", slug).First(&genre).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: genre %s", ErrNotFound, slug)
			}
			return err
		}

		if err := tx.Unscoped().Where("genre_id = ?", genre.ID).
			Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}

		// Unscoped frees the slug for reuse.
		return tx.Unscoped().Delete(&genre).Error
	})
}
