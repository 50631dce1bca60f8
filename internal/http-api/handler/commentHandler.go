package handler

import (
	"net/http"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// RegisterRoutes registers comment routes nested under a review.
func (h *CommentHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.GET("/:review_id/comments", h.List)
	public.GET("/:review_id/comments/:comment_id", h.Get)
	authed.POST("/:review_id/comments", h.Create)
	authed.PATCH("/:review_id/comments/:comment_id", h.Update)
	authed.PUT("/:review_id/comments/:comment_id", methodNotAllowed)
	authed.DELETE("/:review_id/comments/:comment_id", h.Delete)
}

// List returns comments for a review
// GET /api/v1/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	page, pageSize := pagination(c)
	comments, err := h.svc.ListByReview(c.Request.Context(), reviewID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Get returns one comment
// GET /api/v1/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Get(c *gin.Context) {
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	comment, err := h.svc.Get(c.Request.Context(), reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Create adds a comment under a review
// POST /api/v1/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := h.svc.Create(c.Request.Context(), middleware.Actor(c), reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Update patches a comment's text
// PATCH /api/v1/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := h.svc.Update(c.Request.Context(), middleware.Actor(c), reviewID, commentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete removes a comment
// DELETE /api/v1/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.Actor(c), reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
