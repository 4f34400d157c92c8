package services

import (
	"errors"
	"fmt"

	"github.com/critiq-dev/critiq/internal/models"
	"github.com/critiq-dev/critiq/internal/validators"
	"gorm.io/gorm"
)

// TitleService manages titles and their category/genre references. Writes
// take slugs and resolve them to entities; reads return the denormalized
// category and genres plus the computed rating.
type TitleService struct {
	DB *gorm.DB
}

// TitleInput carries a create or partial-update payload. Nil fields are left
// unchanged on update.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

// TitleDetail is the read model for a title. Rating is nil when the title has
// no reviews.
type TitleDetail struct {
	ID          uint
	Name        string
	Year        int
	Description *string
	Rating      *float64
	Category    *models.Category
	Genres      []models.Genre
}

// TitleFilter narrows a title listing. Zero values mean no filtering.
type TitleFilter struct {
	Name         string
	Year         *int
	CategorySlug string
	GenreSlug    string
}

func (s *TitleService) resolveCategory(tx *gorm.DB, slug string) (*models.Category, error) {
	var category models.Category

	if err := tx.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewFieldError("category", fmt.Sprintf("unknown category %q", slug))
		}
		return nil, err
	}

	return &category, nil
}

func (s *TitleService) resolveGenres(tx *gorm.DB, slugs []string) ([]models.Genre, error) {
	genres := make([]models.Genre, 0, len(slugs))

	for _, slug := range slugs {
		var genre models.Genre

		if err := tx.Where("slug = ?", slug).First(&genre).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewFieldError("genre", fmt.Sprintf("unknown genre %q", slug))
			}
			return nil, err
		}

		genres = append(genres, genre)
	}

	return genres, nil
}

func (s *TitleService) CreateTitle(in TitleInput) (*TitleDetail, error) {
	if in.Name == nil || *in.Name == "" || len(*in.Name) > 256 {
		return nil, NewFieldError("name", "must be between 1 and 256 characters")
	}

	if in.Year == nil {
		return nil, NewFieldError("year", "is required")
	}

	if err := validators.ValidateYear(*in.Year); err != nil {
		return nil, NewFieldError("year", err.Error())
	}

	title := models.Title{
		Name:        *in.Name,
		Year:        *in.Year,
		Description: in.Description,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if in.Category != nil {
			category, err := s.resolveCategory(tx, *in.Category)
			if err != nil {
				return err
			}
			title.CategoryID = &category.ID
		}

		var genres []models.Genre

		if in.Genres != nil {
			var err error
			if genres, err = s.resolveGenres(tx, *in.Genres); err != nil {
				return err
			}
		}

		if err := tx.Create(&title).Error; err != nil {
			return err
		}

		for _, genre := range genres {
			if err := tx.Create(&models.TitleGenre{TitleID: title.ID, GenreID: genre.ID}).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return s.GetTitle(title.ID)
}

func (s *TitleService) UpdateTitle(id uint, in TitleInput) (*TitleDetail, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var title models.Title

		if err := tx.First(&title, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: title %d", ErrNotFound, id)
			}
			return err
		}

		updates := make(map[string]interface{})

		if in.Name != nil {
			if *in.Name == "" || len(*in.Name) > 256 {
				return NewFieldError("name", "must be between 1 and 256 characters")
			}
			updates["name"] = *in.Name
		}

		if in.Year != nil {
			if err := validators.ValidateYear(*in.Year); err != nil {
				return NewFieldError("year", err.Error())
			}
			updates["year"] = *in.Year
		}

		if in.Description != nil {
			updates["description"] = *in.Description
		}

		if in.Category != nil {
			category, err := s.resolveCategory(tx, *in.Category)
			if err != nil {
				return err
			}
			updates["category_id"] = category.ID
		}

		if len(updates) > 0 {
			if err := tx.Model(&title).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.Genres != nil {
			genres, err := s.resolveGenres(tx, *in.Genres)
			if err != nil {
				return err
			}

			// Unscoped, or the old rows would still occupy the
			// (title, genre) unique index when a genre is re-added.
			if err := tx.Unscoped().Where("title_id = ?", title.ID).
				Delete(&models.TitleGenre{}).Error; err != nil {
				return err
			}

			for _, genre := range genres {
				if err := tx.Create(&models.TitleGenre{TitleID: title.ID, GenreID: genre.ID}).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return s.GetTitle(id)
}

func (s *TitleService) GetTitle(id uint) (*TitleDetail, error) {
	var title models.Title

	if err := s.DB.Preload("Category").First(&title, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: title %d", ErrNotFound, id)
		}
		return nil, err
	}

	details, err := s.buildDetails([]models.Title{title})

	if err != nil {
		return nil, err
	}

	return &details[0], nil
}

func (s *TitleService) titlesQuery(filter TitleFilter) *gorm.DB {
	query := s.DB.Model(&models.Title{})

	if filter.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}

	if filter.Year != nil {
		query = query.Where("titles.year = ?", *filter.Year)
	}

	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ? AND categories.deleted_at IS NULL", filter.CategorySlug)
	}

	if filter.GenreSlug != "" {
		query = query.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ? AND title_genres.deleted_at IS NULL AND genres.deleted_at IS NULL", filter.GenreSlug)
	}

	return query
}

func (s *TitleService) ListTitles(filter TitleFilter, limit, offset int) ([]TitleDetail, int64, error) {
	var count int64

	if err := s.titlesQuery(filter).Distinct("titles.id").Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var titles []models.Title

	if err := s.titlesQuery(filter).Preload("Category").
		Distinct("titles.*").
		Order("titles.name").
		Limit(limit).Offset(offset).
		Find(&titles).Error; err != nil {
		return nil, 0, err
	}

	details, err := s.buildDetails(titles)

	if err != nil {
		return nil, 0, err
	}

	return details, count, nil
}

// DeleteTitle removes a title together with its reviews, their comments and
// its genre associations, all in one transaction.
func (s *TitleService) DeleteTitle(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var title models.Title

		if err := tx.First(&title, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: title %d", ErrNotFound, id)
			}
			return err
		}

		var reviewIDs []uint

		if err := tx.Model(&models.Review{}).
			Where("title_id = ?", title.ID).
			Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}

		if len(reviewIDs) > 0 {
			if err := tx.Unscoped().Where("review_id IN ?", reviewIDs).
				Delete(&models.Comment{}).Error; err != nil {
				return err
			}

			if err := tx.Unscoped().Where("title_id = ?", title.ID).
				Delete(&models.Review{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("title_id = ?", title.ID).
			Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&title).Error
	})
}

// buildDetails attaches genres and the computed average rating to a page of
// titles with one query each.
func (s *TitleService) buildDetails(titles []models.Title) ([]TitleDetail, error) {
	details := make([]TitleDetail, 0, len(titles))

	if len(titles) == 0 {
		return details, nil
	}

	ids := make([]uint, 0, len(titles))

	for _, title := range titles {
		ids = append(ids, title.ID)
	}

	type ratingRow struct {
		TitleID uint
		Rating  float64
	}

	var ratings []ratingRow

	if err := s.DB.Model(&models.Review{}).
		Select("title_id, AVG(score) AS rating").
		Where("title_id IN ?", ids).
		Group("title_id").
		Scan(&ratings).Error; err != nil {
		return nil, err
	}

	ratingByTitle := make(map[uint]float64, len(ratings))

	for _, row := range ratings {
		ratingByTitle[row.TitleID] = row.Rating
	}

	type genreRow struct {
		models.Genre
		TitleID uint
	}

	var genreRows []genreRow

	if err := s.DB.Model(&models.Genre{}).
		Select("genres.*, title_genres.title_id").
		Joins("JOIN title_genres ON title_genres.genre_id = genres.id").
		Where("title_genres.title_id IN ? AND title_genres.deleted_at IS NULL", ids).
		Order("genres.name").
		Scan(&genreRows).Error; err != nil {
		return nil, err
	}

	genresByTitle := make(map[uint][]models.Genre)

	for _, row := range genreRows {
		genresByTitle[row.TitleID] = append(genresByTitle[row.TitleID], row.Genre)
	}

	for _, title := range titles {
		detail := TitleDetail{
			ID:          title.ID,
			Name:        title.Name,
			Year:        title.Year,
			Description: title.Description,
			Category:    title.Category,
			Genres:      genresByTitle[title.ID],
		}

		if rating, ok := ratingByTitle[title.ID]; ok {
			detail.Rating = &rating
		}

		details = append(details, detail)
	}

	return details, nil
}
