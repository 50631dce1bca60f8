package repository

import (
	"context"
	"database/sql"

	"reviewhub/internal/http-api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	GetByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	TitleIDsByAuthor(ctx context.Context, authorID string) ([]int64, error)
	AverageScore(ctx context.Context, titleID int64) (*float64, error)
	AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

// Delete removes the review and, through the foreign key, every comment
// attached to it.
func (r *reviewRepository) Delete(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// sqlite test databases run without FK enforcement; delete
		// children explicitly so the cascade holds everywhere.
		if err := tx.Where("review_id = ?", review.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Review{}, review.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *reviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("created_at asc, id asc").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// TitleIDsByAuthor returns the distinct titles the author has reviewed.
func (r *reviewRepository) TitleIDsByAuthor(ctx context.Context, authorID string) ([]int64, error) {
	var titleIDs []int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Distinct().
		Where("author_id = ?", authorID).
		Pluck("title_id", &titleIDs).Error
	if err != nil {
		return nil, err
	}
	return titleIDs, nil
}

// AverageScore returns the mean review score for a title, or nil when
// the title has no reviews. A single aggregate query keeps the read on
// one consistent snapshot.
func (r *reviewRepository) AverageScore(ctx context.Context, titleID int64) (*float64, error) {
	var row struct {
		Average sql.NullFloat64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(score) as average").
		Where("title_id = ?", titleID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if !row.Average.Valid {
		return nil, nil
	}
	return &row.Average.Float64, nil
}

// AverageScores returns the mean score per title for the given IDs.
// Titles without reviews are simply absent from the map.
func (r *reviewRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	ratings := make(map[int64]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return ratings, nil
	}

	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, AVG(score) as average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ratings[row.TitleID] = row.Average
	}
	return ratings, nil
}
