package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"titlehub/internal/http-api/dto"
	"titlehub/internal/http-api/middleware"
	"titlehub/internal/http-api/models"
	"titlehub/internal/http-api/service"
)

func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCurrentUser(c, user)
		c.Next()
	}
}

func TestReviewList_Public(t *testing.T) {
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/api/v1/titles"))

	paginated := dto.NewPaginated([]dto.ReviewResponse{
		{ID: 1, Text: "great", Author: "critic", Score: 9},
	}, 1, 1, 20)
	mockService.On("ListByTitle", mock.Anything, int64(5), 1, 20).Return(paginated, nil)

	req, _ := http.NewRequest("GET", "/api/v1/titles/5/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.Paginated[dto.ReviewResponse]
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response.Data, 1)
	assert.Equal(t, "critic", response.Data[0].Author)
}

func TestReviewList_UnknownTitle(t *testing.T) {
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/api/v1/titles"))

	mockService.On("ListByTitle", mock.Anything, int64(404), 1, 20).
		Return(nil, service.ErrTitleNotFound)

	req, _ := http.NewRequest("GET", "/api/v1/titles/404/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewCreate_AuthorFromCaller(t *testing.T) {
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService)
	router := setupRouter()

	actor := &models.User{ID: 11, Username: "critic", Role: models.RoleUser}
	handler.RegisterRoutes(router.Group("/api/v1/titles"), asUser(actor))

	in := dto.CreateReviewDTO{Text: "great", Score: 9}
	mockService.On("Create", mock.Anything, actor, int64(5), in).
		Return(&dto.ReviewResponse{ID: 1, Text: "great", Author: "critic", Score: 9}, nil)

	w := postJSON(router, "/api/v1/titles/5/reviews", in)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestReviewCreate_ScoreOutOfRange(t *testing.T) {
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService)
	router := setupRouter()

	actor := &models.User{ID: 11, Username: "critic"}
	handler.RegisterRoutes(router.Group("/api/v1/titles"), asUser(actor))

	w := postJSON(router, "/api/v1/titles/5/reviews", map[string]any{"text": "meh", "score": 11})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewCreate_DuplicateIs400(t *testing.T) {
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService)
	router := setupRouter()

	actor := &models.User{ID: 11, Username: "critic"}
	handler.RegisterRoutes(router.Group("/api/v1/titles"), asUser(actor))

	mockService.On("Create", mock.Anything, actor, int64(5), mock.Anything).
		Return(nil, &service.ValidationError{Field: "title", Message: "you have already reviewed this title"})

	w := postJSON(router, "/api/v1/titles/5/reviews", dto.CreateReviewDTO{Text: "again", Score: 8})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "title", response["field"])
}

func TestReviewDelete_Forbidden(t *testing.T) {
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService)
	router := setupRouter()

	actor := &models.User{ID: 99, Username: "stranger", Role: models.RoleUser}
	handler.RegisterRoutes(router.Group("/api/v1/titles"), asUser(actor))

	mockService.On("Delete", mock.Anything, actor, int64(5), int64(2)).
		Return(service.ErrForbidden)

	req, _ := http.NewRequest("DELETE", "/api/v1/titles/5/reviews/2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReviewCreate_AnonymousIs401(t *testing.T) {
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService)
	router := setupRouter()
	// No auth middleware attaches a user.
	handler.RegisterRoutes(router.Group("/api/v1/titles"))

	w := postJSON(router, "/api/v1/titles/5/reviews", dto.CreateReviewDTO{Text: "x", Score: 5})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewGet_InvalidID(t *testing.T) {
	mockService := new(MockReviewService)
	handler := NewReviewHandler(mockService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/api/v1/titles"))

	req, _ := http.NewRequest("GET", "/api/v1/titles/5/reviews/notanumber", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
