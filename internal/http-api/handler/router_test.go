package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"reviewhub/internal/http-api/cache"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
	"reviewhub/internal/middleware/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

// recordingSender captures confirmation codes instead of sending mail.
type recordingSender struct {
	codes chan string
}

func (s *recordingSender) SendConfirmationCode(to, username, code string) error {
	s.codes <- code
	return nil
}

func (s *recordingSender) waitForCode(t *testing.T) string {
	t.Helper()
	select {
	case code := <-s.codes:
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation code was sent")
		return ""
	}
}

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
	auth   service.AuthService
	sender *recordingSender
}

// setupAPI wires the full route table against an in-memory store, the
// same shape the server binary builds.
func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.Review{},
		&models.Comment{},
	))

	sender := &recordingSender{codes: make(chan string, 4)}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(userRepo, sender, testJWTSecret, time.Hour)
	ratingService := service.NewRatingService(reviewRepo, cache.NewMemoryRatingCache())

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(service.NewUserService(userRepo, reviewRepo, ratingService))
	categoryHandler := NewCategoryHandler(service.NewCategoryService(categoryRepo))
	genreHandler := NewGenreHandler(service.NewGenreService(genreRepo))
	titleHandler := NewTitleHandler(service.NewTitleService(titleRepo, categoryRepo, genreRepo, ratingService))
	reviewHandler := NewReviewHandler(service.NewReviewService(reviewRepo, titleRepo, ratingService))
	commentHandler := NewCommentHandler(service.NewCommentService(commentRepo, db))

	r := gin.New()
	v1 := r.Group("/api/v1")
	requireAuth := middleware.AuthRequired(authService, userRepo)

	authHandler.RegisterRoutes(v1.Group("/auth"))

	users := v1.Group("/users")
	users.Use(requireAuth)
	userHandler.RegisterRoutes(users)

	categories := v1.Group("/categories")
	categoriesAuthed := v1.Group("/categories")
	categoriesAuthed.Use(requireAuth)
	categoryHandler.RegisterRoutes(categories, categoriesAuthed)

	genres := v1.Group("/genres")
	genresAuthed := v1.Group("/genres")
	genresAuthed.Use(requireAuth)
	genreHandler.RegisterRoutes(genres, genresAuthed)

	titles := v1.Group("/titles")
	titlesAuthed := v1.Group("/titles")
	titlesAuthed.Use(requireAuth)
	titleHandler.RegisterRoutes(titles, titlesAuthed)
	reviewHandler.RegisterRoutes(titles, titlesAuthed)

	reviews := v1.Group("/reviews")
	reviewsAuthed := v1.Group("/reviews")
	reviewsAuthed.Use(requireAuth)
	commentHandler.RegisterRoutes(reviews, reviewsAuthed)

	return &apiFixture{router: r, db: db, auth: authService, sender: sender}
}

// tokenFor creates an account with the given role and runs the real
// code-for-token exchange for it.
func (f *apiFixture) tokenFor(t *testing.T, username, role string) string {
	t.Helper()

	code := auth.GenerateConfirmationCode()
	hash, err := auth.HashCode(code)
	require.NoError(t, err)

	user := &models.User{
		Username:         username,
		Email:            username + "@example.com",
		Role:             role,
		ConfirmationCode: hash,
	}
	require.NoError(t, f.db.Create(user).Error)

	token, err := f.auth.IssueToken(context.Background(), username, code)
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
