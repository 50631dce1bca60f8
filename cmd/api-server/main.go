package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/email"
	"reviewhub/internal/http-api/cache"
	"reviewhub/internal/http-api/handler"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// Rating cache is optional; without redis every read recomputes
	// the mean from the reviews table.
	var ratingCache cache.RatingCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		if cfg.RedisPassword != "" {
			opts.Password = cfg.RedisPassword
		}
		ratingCache = cache.NewRedisRatingCache(redis.NewClient(opts), cfg.CacheTTL)
		log.Println("rating cache enabled")
	}

	var sender email.Sender
	if cfg.SMTPHost != "" {
		sender = email.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Println("SMTP_HOST not set, confirmation emails disabled")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, sender, cfg.JWTSecret, cfg.AccessTokenTTL)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	ratingService := service.NewRatingService(reviewRepo, ratingCache)
	userService := service.NewUserService(userRepo, reviewRepo, ratingService)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, ratingService)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, ratingService)
	commentService := service.NewCommentService(commentRepo, db)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	genreHandler := handler.NewGenreHandler(genreService)
	titleHandler := handler.NewTitleHandler(titleService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(commentService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	v1 := r.Group("/api/v1")
	requireAuth := middleware.AuthRequired(authService, userRepo)

	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst))
	authHandler.RegisterRoutes(auth)

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

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	log.Printf("api-server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
