package service

import (
	"context"
	"testing"

	"reviewhub/internal/http-api/cache"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedReview(t *testing.T, db *gorm.DB, title *models.Title, username string, score int) *models.Review {
	t.Helper()
	user := createTestUser(t, db, username, models.RoleUser)
	review := &models.Review{TitleID: title.ID, AuthorID: user.ID, Text: "t", Score: score}
	require.NoError(t, db.Create(review).Error)
	return review
}

func TestTitleRatingComputedFromReviews(t *testing.T) {
	db := setupTestDB(t)
	category := createTestCategory(t, db, "Movies", "movies")
	title := createTestTitle(t, db, "Film", 2000, category)
	ratings := NewRatingService(repository.NewReviewRepository(db), nil)

	rating, err := ratings.TitleRating(context.Background(), title.ID)
	require.NoError(t, err)
	assert.Nil(t, rating)

	seedReview(t, db, title, "u1", 7)
	seedReview(t, db, title, "u2", 8)

	rating, err = ratings.TitleRating(context.Background(), title.ID)
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 7.5, *rating)
}

func TestTitleRatingMemoized(t *testing.T) {
	db := setupTestDB(t)
	category := createTestCategory(t, db, "Movies", "movies")
	title := createTestTitle(t, db, "Film", 2000, category)
	ratingCache := cache.NewMemoryRatingCache()
	ratings := NewRatingService(repository.NewReviewRepository(db), ratingCache)
	ctx := context.Background()

	seedReview(t, db, title, "u1", 6)

	rating, err := ratings.TitleRating(ctx, title.ID)
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 6.0, *rating)

	// Without a Recompute the cached value is served even though the
	// underlying rows changed.
	seedReview(t, db, title, "u2", 10)
	rating, err = ratings.TitleRating(ctx, title.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, *rating)

	require.NoError(t, ratings.Recompute(ctx, title.ID))
	rating, err = ratings.TitleRating(ctx, title.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, *rating)
}

func TestRecomputeDropsStaleValueWhenNoReviewsRemain(t *testing.T) {
	db := setupTestDB(t)
	category := createTestCategory(t, db, "Movies", "movies")
	title := createTestTitle(t, db, "Film", 2000, category)
	ratingCache := cache.NewMemoryRatingCache()
	ratings := NewRatingService(repository.NewReviewRepository(db), ratingCache)
	ctx := context.Background()

	review := seedReview(t, db, title, "u1", 9)
	_, err := ratings.TitleRating(ctx, title.ID)
	require.NoError(t, err)

	require.NoError(t, db.Delete(review).Error)
	require.NoError(t, ratings.Recompute(ctx, title.ID))

	rating, err := ratings.TitleRating(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, rating)
}

func TestTitleRatingsBatch(t *testing.T) {
	db := setupTestDB(t)
	category := createTestCategory(t, db, "Movies", "movies")
	rated := createTestTitle(t, db, "Rated", 2000, category)
	unrated := createTestTitle(t, db, "Unrated", 2001, category)
	ratings := NewRatingService(repository.NewReviewRepository(db), nil)

	seedReview(t, db, rated, "u1", 4)
	seedReview(t, db, rated, "u2", 6)

	byTitle, err := ratings.TitleRatings(context.Background(), []int64{rated.ID, unrated.ID})
	require.NoError(t, err)
	assert.Equal(t, 5.0, byTitle[rated.ID])
	_, ok := byTitle[unrated.ID]
	assert.False(t, ok)
}
