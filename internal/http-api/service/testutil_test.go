package service

import (
	"testing"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.Review{},
		&models.Comment{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return user
}

func actorFor(user *models.User) permissions.Actor {
	return permissions.ActorFromUser(user)
}

func createTestCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: slug}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category %s: %v", slug, err)
	}
	return category
}

func createTestGenre(t *testing.T, db *gorm.DB, name, slug string) *models.Genre {
	t.Helper()
	genre := &models.Genre{Name: name, Slug: slug}
	if err := db.Create(genre).Error; err != nil {
		t.Fatalf("failed to create test genre %s: %v", slug, err)
	}
	return genre
}

func createTestTitle(t *testing.T, db *gorm.DB, name string, year int, category *models.Category, genres ...models.Genre) *models.Title {
	t.Helper()
	title := &models.Title{
		Name:       name,
		Year:       year,
		CategoryID: category.ID,
		Genres:     genres,
	}
	if err := db.Create(title).Error; err != nil {
		t.Fatalf("failed to create test title %s: %v", name, err)
	}
	return title
}
