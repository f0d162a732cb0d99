package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"titlehub/internal/http-api/dto"
	"titlehub/internal/http-api/models"
	"titlehub/internal/http-api/repository"
)

type ReviewService interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor *models.User, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor *models.User, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor *models.User, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		resp = append(resp, dto.ReviewFromModel(&reviews[i]))
	}
	return dto.NewPaginated(resp, total, page, pageSize), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Create(ctx context.Context, actor *models.User, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, err
	}

	// Pre-check gives a clean validation error; the unique index is the
	// authoritative guard under concurrent submissions.
	_, err := s.reviewRepo.GetByTitleAndAuthor(ctx, titleID, actor.ID)
	if err == nil {
		return nil, newValidationError("title", "you have already reviewed this title")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     in.Text,
		Score:    in.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("title", "you have already reviewed this title")
		}
		return nil, err
	}

	review.Author = *actor
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, actor *models.User, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, review.AuthorID) {
		return nil, ErrForbidden
	}

	if in.Text != nil {
		review.Text = *in.Text
	}
	if in.Score != nil {
		review.Score = *in.Score
	}

	if err := s.reviewRepo.Save(ctx, review); err != nil {
		return nil, err
	}

	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

// Delete removes a review; the store cascades to its comments.
func (s *reviewService) Delete(ctx context.Context, actor *models.User, titleID, reviewID int64) error {
	if err := s.checkTitle(ctx, titleID); err != nil {
		return err
	}

	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !canModify(actor, review.AuthorID) {
		return ErrForbidden
	}

	return s.reviewRepo.Delete(ctx, review.ID)
}

func (s *reviewService) checkTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) findReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// canModify implements the author-or-read-only object check: the author,
// a moderator, an admin or a superuser may write.
func canModify(actor *models.User, authorID int64) bool {
	return actor.ID == authorID || actor.IsModerator()
}
