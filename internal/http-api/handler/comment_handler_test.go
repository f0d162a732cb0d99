package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"titlehub/internal/http-api/dto"
	"titlehub/internal/http-api/models"
	"titlehub/internal/http-api/service"
)

// MockCommentService mocks the CommentService interface
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	args := m.Called(ctx, titleID, reviewID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Paginated[dto.CommentResponse]), args.Error(1)
}

func (m *MockCommentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	args := m.Called(ctx, titleID, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, actor *models.User, titleID, reviewID int64, in dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	args := m.Called(ctx, actor, titleID, reviewID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, in dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	args := m.Called(ctx, actor, titleID, reviewID, commentID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error {
	args := m.Called(ctx, actor, titleID, reviewID, commentID)
	return args.Error(0)
}

func TestCommentCreate_Created(t *testing.T) {
	mockService := new(MockCommentService)
	handler := NewCommentHandler(mockService)
	router := setupRouter()

	actor := &models.User{ID: 11, Username: "critic"}
	handler.RegisterRoutes(router.Group("/api/v1/titles"), asUser(actor))

	in := dto.CreateCommentDTO{Text: "agreed"}
	mockService.On("Create", mock.Anything, actor, int64(5), int64(2), in).
		Return(&dto.CommentResponse{ID: 3, Text: "agreed", Author: "critic"}, nil)

	w := postJSON(router, "/api/v1/titles/5/reviews/2/comments", in)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCommentList_ReviewNotInTitleIs404(t *testing.T) {
	mockService := new(MockCommentService)
	handler := NewCommentHandler(mockService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/api/v1/titles"))

	mockService.On("ListByReview", mock.Anything, int64(5), int64(99), 1, 20).
		Return(nil, service.ErrReviewNotFound)

	req, _ := http.NewRequest("GET", "/api/v1/titles/5/reviews/99/comments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentDelete_Forbidden(t *testing.T) {
	mockService := new(MockCommentService)
	handler := NewCommentHandler(mockService)
	router := setupRouter()

	actor := &models.User{ID: 99, Username: "stranger", Role: models.RoleUser}
	handler.RegisterRoutes(router.Group("/api/v1/titles"), asUser(actor))

	mockService.On("Delete", mock.Anything, actor, int64(5), int64(2), int64(3)).
		Return(service.ErrForbidden)

	req, _ := http.NewRequest("DELETE", "/api/v1/titles/5/reviews/2/comments/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
