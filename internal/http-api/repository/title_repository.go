package repository

import (
	"context"
	"fmt"

	"titlehub/internal/http-api/models"

	"gorm.io/gorm"
)

// TitleFilter narrows the title list. Zero values mean "no filter".
type TitleFilter struct {
	Name     string
	Year     int
	Category string // category slug
	Genre    string // genre slug
}

type TitleRepository interface {
	Create(ctx context.Context, t *models.Title) error
	Save(ctx context.Context, t *models.Title) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error
	AverageRating(ctx context.Context, titleID int64) (float64, error)
	AverageRatings(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create title: %w", translateError(err))
	}
	return nil
}

func (r *titleRepository) Save(ctx context.Context, t *models.Title) error {
	// Save does not touch associations; ReplaceGenres handles the genre set
	if err := r.db.WithContext(ctx).Omit("Genres", "Category").Save(t).Error; err != nil {
		return fmt.Errorf("update title: %w", translateError(err))
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).Preload("Genres").Preload("Category").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// filtered builds a query for the filter. Count and Find each need their
// own chain; sharing one pollutes the statement between calls.
func (r *titleRepository) filtered(ctx context.Context, filter TitleFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Title{})
	if filter.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != 0 {
		query = query.Where("titles.year = ?", filter.Year)
	}
	if filter.Category != "" {
		query = query.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", filter.Category)
	}
	if filter.Genre != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM genre_titles gt
			JOIN genres ON genres.id = gt.genre_id
			WHERE gt.title_id = titles.id AND genres.slug = ?)`, filter.Genre)
	}
	return query
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := r.filtered(ctx, filter).
		Preload("Genres").
		Preload("Category").
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *titleRepository) ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error {
	if err := r.db.WithContext(ctx).Model(t).Association("Genres").Replace(genres); err != nil {
		return fmt.Errorf("replace genres: %w", err)
	}
	t.Genres = genres
	return nil
}

// AverageRating computes the mean review score for a title, 0 when it has
// no reviews.
func (r *titleRepository) AverageRating(ctx context.Context, titleID int64) (float64, error) {
	var avg struct {
		Average float64
	}

	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(score), 0) as average").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}

	return avg.Average, nil
}

// AverageRatings batches the aggregate for a page of titles. Titles with
// no reviews are absent from the map.
func (r *titleRepository) AverageRatings(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	ratings := make(map[int64]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return ratings, nil
	}

	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, AVG(score) as average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		ratings[row.TitleID] = row.Average
	}
	return ratings, nil
}
