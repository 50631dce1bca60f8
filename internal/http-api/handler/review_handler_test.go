package handler

import (
	"fmt"
	"net/http"
	"testing"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTitle(t *testing.T, f *apiFixture) *models.Title {
	t.Helper()
	category := models.Category{Name: "Movies", Slug: "movies"}
	require.NoError(t, f.db.Create(&category).Error)
	title := models.Title{Name: "Some Film", Year: 1999, CategoryID: category.ID}
	require.NoError(t, f.db.Create(&title).Error)
	return &title
}

func TestReviewEndpoints(t *testing.T) {
	f := setupAPI(t)
	title := seedTitle(t, f)
	aliceToken := f.tokenFor(t, "alice", models.RoleUser)
	bobToken := f.tokenFor(t, "bob", models.RoleUser)

	base := fmt.Sprintf("/api/v1/titles/%d/reviews", title.ID)

	t.Run("CreateAnonymous", func(t *testing.T) {
		w := f.do(t, http.MethodPost, base, "", gin.H{"text": "x", "score": 5})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var review dto.ReviewResponse
	t.Run("Create", func(t *testing.T) {
		w := f.do(t, http.MethodPost, base, aliceToken, gin.H{"text": "great", "score": 8})
		require.Equal(t, http.StatusCreated, w.Code)
		decode(t, w, &review)
		assert.Equal(t, "alice", review.Author)
		assert.Equal(t, 8, review.Score)
	})

	t.Run("DuplicateFlagged", func(t *testing.T) {
		w := f.do(t, http.MethodPost, base, aliceToken, gin.H{"text": "again", "score": 3})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]interface{}
		decode(t, w, &body)
		assert.Equal(t, "duplicate_review", body["code"])
	})

	t.Run("ScoreOutOfRange", func(t *testing.T) {
		w := f.do(t, http.MethodPost, base, bobToken, gin.H{"text": "x", "score": 11})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RatingShowsOnTitle", func(t *testing.T) {
		w := f.do(t, http.MethodPost, base, bobToken, gin.H{"text": "meh", "score": 4})
		require.Equal(t, http.StatusCreated, w.Code)

		tw := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/titles/%d", title.ID), "", nil)
		require.Equal(t, http.StatusOK, tw.Code)

		var resp dto.TitleResponse
		decode(t, tw, &resp)
		require.NotNil(t, resp.Rating)
		assert.Equal(t, 6.0, *resp.Rating)
	})

	t.Run("ListPublic", func(t *testing.T) {
		w := f.do(t, http.MethodGet, base, "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page dto.PaginatedReviewResponse
		decode(t, w, &page)
		assert.Equal(t, 2, page.Total)
	})

	reviewPath := fmt.Sprintf("%s/%d", base, review.ID)

	t.Run("PutRejected", func(t *testing.T) {
		w := f.do(t, http.MethodPut, reviewPath, aliceToken, gin.H{"text": "x", "score": 5})
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("PatchByStranger", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, reviewPath, bobToken, gin.H{"text": "hijack"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("PatchByAuthor", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, reviewPath, aliceToken, gin.H{"score": 10})
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ReviewResponse
		decode(t, w, &resp)
		assert.Equal(t, 10, resp.Score)
	})

	t.Run("DeleteByStranger", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, reviewPath, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("DeleteByAuthor", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, reviewPath, aliceToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = f.do(t, http.MethodGet, reviewPath, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCommentEndpoints(t *testing.T) {
	f := setupAPI(t)
	title := seedTitle(t, f)
	aliceToken := f.tokenFor(t, "alice", models.RoleUser)
	modToken := f.tokenFor(t, "trent", models.RoleModerator)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/titles/%d/reviews", title.ID), aliceToken, gin.H{
		"text": "great", "score": 8,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var review dto.ReviewResponse
	decode(t, w, &review)

	base := fmt.Sprintf("/api/v1/reviews/%d/comments", review.ID)

	t.Run("CreateAnonymous", func(t *testing.T) {
		w := f.do(t, http.MethodPost, base, "", gin.H{"text": "hi"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var comment dto.CommentResponse
	t.Run("Create", func(t *testing.T) {
		w := f.do(t, http.MethodPost, base, aliceToken, gin.H{"text": "well said"})
		require.Equal(t, http.StatusCreated, w.Code)
		decode(t, w, &comment)
		assert.Equal(t, "alice", comment.Author)
	})

	t.Run("UnknownReview", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/reviews/9999/comments", aliceToken, gin.H{"text": "hi"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	commentPath := fmt.Sprintf("%s/%d", base, comment.ID)

	t.Run("PutRejected", func(t *testing.T) {
		w := f.do(t, http.MethodPut, commentPath, aliceToken, gin.H{"text": "x"})
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("ModeratorDeletes", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, commentPath, modToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("ListPublic", func(t *testing.T) {
		w := f.do(t, http.MethodGet, base, "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page dto.PaginatedCommentResponse
		decode(t, w, &page)
		assert.Equal(t, 0, page.Total)
	})
}
