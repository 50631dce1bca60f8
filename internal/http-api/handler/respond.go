package handler

import (
	"errors"
	"net/http"
	"strconv"

	"reviewhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// respondError translates service errors into the HTTP error shape.
// Anything unrecognized is a server error; the body never leaks
// internals for those.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, service.ErrDuplicateReview):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "duplicate_review"})
	case errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrNameInUse),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// pagination reads ?page= and ?page_size= with the usual clamping.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// methodNotAllowed rejects full-replace semantics outright.
func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
}
