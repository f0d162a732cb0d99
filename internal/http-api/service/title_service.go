package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"titlehub/internal/http-api/dto"
	"titlehub/internal/http-api/models"
	"titlehub/internal/http-api/repository"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	genreRepo    repository.GenreRepository
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	genreRepo repository.GenreRepository,
	categoryRepo repository.CategoryRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		genreRepo:    genreRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	ratings, err := s.titleRepo.AverageRatings(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.TitleResponse, 0, len(titles))
	for _, t := range titles {
		resp = append(resp, dto.TitleFromModel(t, ratings[t.ID]))
	}
	return dto.NewPaginated(resp, total, page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.findTitle(ctx, id)
	if err != nil {
		return nil, err
	}

	rating, err := s.titleRepo.AverageRating(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(*title, rating)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if verr := s.validateYear(in.Year); verr != nil {
		return nil, verr
	}

	genres, verr, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		return nil, verr
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}

	if in.Category != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, in.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newValidationError("category", "unknown category slug")
			}
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	title.Genres = genres
	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(*title, 0)
	return &resp, nil
}

func (s *titleService) Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.findTitle(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		title.Name = *in.Name
	}
	if in.Year != nil {
		if verr := s.validateYear(*in.Year); verr != nil {
			return nil, verr
		}
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = *in.Description
	}
	if in.Category != nil {
		if *in.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.categoryRepo.FindBySlug(ctx, *in.Category)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, newValidationError("category", "unknown category slug")
				}
				return nil, err
			}
			title.CategoryID = &category.ID
			title.Category = category
		}
	}

	if err := s.titleRepo.Save(ctx, title); err != nil {
		return nil, err
	}

	if in.Genre != nil {
		genres, verr, err := s.resolveGenres(ctx, in.Genre)
		if err != nil {
			return nil, err
		}
		if verr != nil {
			return nil, verr
		}
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, err
		}
	}

	rating, err := s.titleRepo.AverageRating(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(*title, rating)
	return &resp, nil
}

// Delete removes a title; the store cascades to its reviews (and their
// comments) and its genre links.
func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *titleService) findTitle(ctx context.Context, id int64) (*models.Title, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}
	return title, nil
}

func (s *titleService) validateYear(year int) *ValidationError {
	if year > s.now().Year() {
		return newValidationError("year", "release year cannot be in the future")
	}
	return nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, *ValidationError, error) {
	genres, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, nil, err
	}
	if len(genres) != len(slugs) {
		return nil, newValidationError("genre", "unknown genre slug"), nil
	}
	return genres, nil, nil
}
