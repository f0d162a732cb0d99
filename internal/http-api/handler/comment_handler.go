package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"titlehub/internal/http-api/dto"
	"titlehub/internal/http-api/middleware"
	"titlehub/internal/http-api/service"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes registers comment routes nested under a title's review.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup, authenticated ...gin.HandlerFunc) {
	comments := rg.Group("/:title_id/reviews/:review_id/comments")
	{
		comments.GET("", h.List)
		comments.GET("/:comment_id", h.Get)
		comments.POST("", append(authenticated, h.Create)...)
		comments.PATCH("/:comment_id", append(authenticated, h.Update)...)
		comments.DELETE("/:comment_id", append(authenticated, h.Delete)...)
	}
}

func commentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return 0, false
	}
	return id, true
}

// List retrieves all comments for a review
// GET /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	resp, err := h.commentService.ListByReview(c.Request.Context(), tid, rid, page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get retrieves a single comment
// GET /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Get(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}

	resp, err := h.commentService.Get(c.Request.Context(), tid, rid, cid)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create creates a comment; the author is the authenticated caller
// POST /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.commentService.Create(c.Request.Context(), user, tid, rid, in)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Update updates a comment
// PATCH /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var in dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.commentService.Update(c.Request.Context(), user, tid, rid, cid, in)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Delete removes a comment
// DELETE /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := reviewID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), user, tid, rid, cid); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
