package service

import (
	"context"
	"log"

	"reviewhub/internal/http-api/cache"
	"reviewhub/internal/http-api/repository"
)

// RatingService derives a title's rating from its review rows. The
// value is never stored on the title: it is computed from the reviews
// table and optionally memoized in the cache. Every review-mutating
// operation calls Recompute, so a cache hit always reflects a
// committed review set.
type RatingService interface {
	TitleRating(ctx context.Context, titleID int64) (*float64, error)
	TitleRatings(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
	Recompute(ctx context.Context, titleID int64) error
}

type ratingService struct {
	reviewRepo repository.ReviewRepository
	cache      cache.RatingCache
}

// NewRatingService builds a RatingService. ratingCache may be nil, in
// which case every read recomputes from the store.
func NewRatingService(reviewRepo repository.ReviewRepository, ratingCache cache.RatingCache) RatingService {
	return &ratingService{reviewRepo: reviewRepo, cache: ratingCache}
}

// TitleRating returns the mean review score for a title, nil when the
// title has no reviews.
func (s *ratingService) TitleRating(ctx context.Context, titleID int64) (*float64, error) {
	if s.cache != nil {
		if rating, ok, err := s.cache.Get(ctx, titleID); err != nil {
			log.Printf("rating cache read failed for title %d: %v", titleID, err)
		} else if ok {
			return &rating, nil
		}
	}

	avg, err := s.reviewRepo.AverageScore(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if avg != nil && s.cache != nil {
		if err := s.cache.Set(ctx, titleID, *avg); err != nil {
			log.Printf("rating cache write failed for title %d: %v", titleID, err)
		}
	}
	return avg, nil
}

// TitleRatings batch-computes ratings for a listing page with one
// aggregate query; titles without reviews are absent from the map.
func (s *ratingService) TitleRatings(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	return s.reviewRepo.AverageScores(ctx, titleIDs)
}

// Recompute invalidates the memoized value and eagerly refreshes it
// from the committed review set. The invalidation must succeed: a
// stale cached mean must never outlive a review mutation.
func (s *ratingService) Recompute(ctx context.Context, titleID int64) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, titleID); err != nil {
		return err
	}
	avg, err := s.reviewRepo.AverageScore(ctx, titleID)
	if err != nil {
		return err
	}
	if avg != nil {
		if err := s.cache.Set(ctx, titleID, *avg); err != nil {
			// A failed refresh is harmless: the key is gone and the
			// next read recomputes.
			log.Printf("rating cache refresh failed for title %d: %v", titleID, err)
		}
	}
	return nil
}
