package service

import (
	"context"
	"errors"
	"log"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

// ReviewService owns the one-review-per-(title, author) rule and keeps
// the title rating in step with every mutation. The composite unique
// index is the authority for the duplicate rule; the lookup below only
// gives a friendlier error on the common path.
type ReviewService interface {
	Create(ctx context.Context, actor permissions.Actor, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor permissions.Actor, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, titleID, reviewID int64) error
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  *repository.TitleRepo
	ratings    RatingService
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo *repository.TitleRepo, ratings RatingService) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		ratings:    ratings,
	}
}

func (s *reviewService) Create(ctx context.Context, actor permissions.Actor, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if !actor.Authenticated {
		return nil, ErrPermissionDenied
	}
	if err := validateScore(in.Score); err != nil {
		return nil, err
	}

	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Fast path; the unique index still decides under concurrency.
	if _, err := s.reviewRepo.GetByAuthorAndTitle(ctx, actor.ID, titleID); err == nil {
		return nil, ErrDuplicateReview
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     in.Text,
		Score:    in.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	s.recompute(ctx, titleID)

	review, err := s.reviewRepo.GetByID(ctx, titleID, review.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Update(ctx context.Context, actor permissions.Actor, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !permissions.CanMutateOwnedContent(actor, review.AuthorID) {
		return nil, ErrPermissionDenied
	}

	// Only text and score are patchable; author and title stay as
	// created no matter who edits.
	scoreChanged := false
	if in.Score != nil && *in.Score != review.Score {
		if err := validateScore(*in.Score); err != nil {
			return nil, err
		}
		review.Score = *in.Score
		scoreChanged = true
	}
	if in.Text != nil {
		review.Text = *in.Text
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	if scoreChanged {
		s.recompute(ctx, titleID)
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, actor permissions.Actor, titleID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !permissions.CanMutateOwnedContent(actor, review.AuthorID) {
		return ErrPermissionDenied
	}

	// Deleting the review takes its comments with it.
	if err := s.reviewRepo.Delete(ctx, review); err != nil {
		return err
	}
	s.recompute(ctx, titleID)
	return nil
}

// recompute refreshes a title's cached rating after a committed write.
// A cache failure must not fail the request at this point; the TTL
// bounds how long a stale mean can be served.
func (s *reviewService) recompute(ctx context.Context, titleID int64) {
	if err := s.ratings.Recompute(ctx, titleID); err != nil {
		log.Printf("rating recompute for title %d: %v", titleID, err)
	}
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	reviews, total, err := s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return dto.NewPaginatedReviewResponse(responses, int(total), page, pageSize), nil
}
