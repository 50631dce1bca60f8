package service

import (
	"context"
	"testing"
	"time"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type titleFixture struct {
	db     *gorm.DB
	titles TitleService
	admin  permissions.Actor
	user   permissions.Actor
}

func newTitleFixture(t *testing.T) *titleFixture {
	db := setupTestDB(t)
	titleRepo := repository.NewTitleRepo(db)
	ratings := NewRatingService(repository.NewReviewRepository(db), nil)

	return &titleFixture{
		db:     db,
		titles: NewTitleService(titleRepo, repository.NewCategoryRepo(db), repository.NewGenreRepo(db), ratings),
		admin:  actorFor(createTestUser(t, db, "root", models.RoleAdmin)),
		user:   actorFor(createTestUser(t, db, "plain", models.RoleUser)),
	}
}

func TestCreateTitle(t *testing.T) {
	f := newTitleFixture(t)
	ctx := context.Background()
	createTestCategory(t, f.db, "Movies", "movies")
	createTestGenre(t, f.db, "Drama", "drama")
	createTestGenre(t, f.db, "Comedy", "comedy")

	t.Run("AdminCreatesWithGenres", func(t *testing.T) {
		created, err := f.titles.Create(ctx, f.admin, dto.CreateTitleDTO{
			Name:     "The Film",
			Year:     1994,
			Category: "movies",
			Genres:   []string{"drama", "comedy"},
		})
		require.NoError(t, err)
		assert.Equal(t, "The Film", created.Name)
		assert.Equal(t, "movies", created.Category.Slug)
		assert.Len(t, created.Genres, 2)
		// A fresh title has no reviews and therefore no rating.
		assert.Nil(t, created.Rating)
	})

	t.Run("NonAdminDenied", func(t *testing.T) {
		_, err := f.titles.Create(ctx, f.user, dto.CreateTitleDTO{Name: "X", Year: 2000, Category: "movies"})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("UnknownCategorySlug", func(t *testing.T) {
		var validationErr *ValidationError
		_, err := f.titles.Create(ctx, f.admin, dto.CreateTitleDTO{Name: "X", Year: 2000, Category: "nope"})
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "category", validationErr.Field)
	})

	t.Run("UnknownGenreSlug", func(t *testing.T) {
		var validationErr *ValidationError
		_, err := f.titles.Create(ctx, f.admin, dto.CreateTitleDTO{
			Name: "X", Year: 2000, Category: "movies", Genres: []string{"drama", "nope"},
		})
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "genre", validationErr.Field)
	})

	t.Run("FutureYearRejected", func(t *testing.T) {
		var validationErr *ValidationError
		_, err := f.titles.Create(ctx, f.admin, dto.CreateTitleDTO{
			Name: "X", Year: time.Now().Year() + 1, Category: "movies",
		})
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestListTitlesFilters(t *testing.T) {
	f := newTitleFixture(t)
	ctx := context.Background()

	movies := createTestCategory(t, f.db, "Movies", "movies")
	books := createTestCategory(t, f.db, "Books", "books")
	drama := createTestGenre(t, f.db, "Drama", "drama")
	scifi := createTestGenre(t, f.db, "Sci-Fi", "sci-fi")

	createTestTitle(t, f.db, "Alpha Station", 2019, movies, *drama, *scifi)
	createTestTitle(t, f.db, "Beta Ranch", 2019, movies, *drama)
	createTestTitle(t, f.db, "Quiet Alpha", 1987, books, *drama)

	list := func(filter repository.TitleFilter) []string {
		t.Helper()
		page, err := f.titles.List(ctx, filter, 1, 20)
		require.NoError(t, err)
		names := make([]string, 0, len(page.Data))
		for _, item := range page.Data {
			names = append(names, item.Name)
		}
		return names
	}

	t.Run("NoFilterOrderedByName", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha Station", "Beta Ranch", "Quiet Alpha"}, list(repository.TitleFilter{}))
	})

	t.Run("ByCategory", func(t *testing.T) {
		assert.Equal(t, []string{"Quiet Alpha"}, list(repository.TitleFilter{CategorySlug: "books"}))
	})

	t.Run("ByGenre", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha Station"}, list(repository.TitleFilter{GenreSlug: "sci-fi"}))
	})

	t.Run("ByNameSubstringCaseInsensitive", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha Station", "Quiet Alpha"}, list(repository.TitleFilter{Name: "ALPHA"}))
	})

	t.Run("ByYear", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha Station", "Beta Ranch"}, list(repository.TitleFilter{Year: 2019}))
	})

	t.Run("Combined", func(t *testing.T) {
		assert.Equal(t, []string{"Alpha Station"}, list(repository.TitleFilter{CategorySlug: "movies", Name: "alpha"}))
	})

	// Counting and fetching share one builder; a polluted select list
	// would return rows with nothing but the ID populated.
	t.Run("FilteredRowsFullyHydrated", func(t *testing.T) {
		page, err := f.titles.List(ctx, repository.TitleFilter{GenreSlug: "sci-fi"}, 1, 20)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, 1, page.Total)

		got := page.Data[0]
		assert.Equal(t, "Alpha Station", got.Name)
		assert.Equal(t, 2019, got.Year)
		assert.Equal(t, "movies", got.Category.Slug)
		assert.Len(t, got.Genres, 2)
	})
}

func TestListTitlesCarriesRatings(t *testing.T) {
	f := newTitleFixture(t)
	ctx := context.Background()

	movies := createTestCategory(t, f.db, "Movies", "movies")
	rated := createTestTitle(t, f.db, "Rated", 2000, movies)
	createTestTitle(t, f.db, "Unrated", 2001, movies)
	seedReview(t, f.db, rated, "reviewer", 9)

	page, err := f.titles.List(ctx, repository.TitleFilter{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)

	require.NotNil(t, page.Data[0].Rating)
	assert.Equal(t, 9.0, *page.Data[0].Rating)
	assert.Nil(t, page.Data[1].Rating)
}

func TestUpdateTitlePartial(t *testing.T) {
	f := newTitleFixture(t)
	ctx := context.Background()

	movies := createTestCategory(t, f.db, "Movies", "movies")
	createTestCategory(t, f.db, "Books", "books")
	drama := createTestGenre(t, f.db, "Drama", "drama")
	scifi := createTestGenre(t, f.db, "Sci-Fi", "sci-fi")
	title := createTestTitle(t, f.db, "Old Name", 1990, movies, *drama)

	t.Run("NonAdminDenied", func(t *testing.T) {
		_, err := f.titles.Update(ctx, f.user, title.ID, dto.UpdateTitleDTO{Name: strptr("Hacked")})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("RenameOnly", func(t *testing.T) {
		updated, err := f.titles.Update(ctx, f.admin, title.ID, dto.UpdateTitleDTO{Name: strptr("New Name")})
		require.NoError(t, err)
		assert.Equal(t, "New Name", updated.Name)
		assert.Equal(t, 1990, updated.Year)
		assert.Equal(t, "movies", updated.Category.Slug)
	})

	t.Run("ReplaceCategoryAndGenres", func(t *testing.T) {
		genres := []string{"sci-fi"}
		updated, err := f.titles.Update(ctx, f.admin, title.ID, dto.UpdateTitleDTO{
			Category: strptr("books"),
			Genres:   &genres,
		})
		require.NoError(t, err)
		assert.Equal(t, "books", updated.Category.Slug)
		require.Len(t, updated.Genres, 1)
		assert.Equal(t, scifi.Slug, updated.Genres[0].Slug)
	})

	t.Run("UnknownID", func(t *testing.T) {
		_, err := f.titles.Update(ctx, f.admin, 9999, dto.UpdateTitleDTO{Name: strptr("X")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteTitle(t *testing.T) {
	f := newTitleFixture(t)
	ctx := context.Background()

	movies := createTestCategory(t, f.db, "Movies", "movies")
	title := createTestTitle(t, f.db, "Doomed", 2005, movies)

	assert.ErrorIs(t, f.titles.Delete(ctx, f.user, title.ID), ErrPermissionDenied)
	require.NoError(t, f.titles.Delete(ctx, f.admin, title.ID))

	_, err := f.titles.Get(ctx, title.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.titles.Delete(ctx, f.admin, title.ID), ErrNotFound)
}
