package database

import (
	"fmt"
	"log"
	"time"

	"reviewhub/internal/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const maxConnectRetries = 10

// Connect opens the postgres database and migrates the schema. The
// connection is retried because in container setups the database often
// comes up after the API.
func Connect(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxConnectRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.Printf("database connection attempt %d/%d failed: %v", i+1, maxConnectRetries, err)
		if i < maxConnectRetries-1 {
			time.Sleep(5 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}

	log.Println("database connected successfully")
	return db, nil
}

// Migrate creates or updates the schema, including the composite
// unique index on (title_id, author_id) that backs the one-review-per-
// author rule.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.Review{},
		&models.Comment{},
	); err != nil {
		return fmt.Errorf("database migration: %w", err)
	}
	return nil
}
