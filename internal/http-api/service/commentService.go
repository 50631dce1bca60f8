package service

import (
	"context"
	"errors"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

// CommentService mirrors the review ownership rules for comments under
// a review. Comments have no rating side effect.
type CommentService interface {
	Create(ctx context.Context, actor permissions.Actor, reviewID int64, in dto.CreateCommentDTO) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor permissions.Actor, reviewID, commentID int64, in dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, reviewID, commentID int64) error
	Get(ctx context.Context, reviewID, commentID int64) (*dto.CommentResponse, error)
	ListByReview(ctx context.Context, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	db          *gorm.DB
}

func NewCommentService(commentRepo repository.CommentRepository, db *gorm.DB) CommentService {
	return &commentService{commentRepo: commentRepo, db: db}
}

// reviewExists checks the parent review without caring which title it
// belongs to.
func (s *commentService) reviewExists(ctx context.Context, reviewID int64) error {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *commentService) Create(ctx context.Context, actor permissions.Actor, reviewID int64, in dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if !actor.Authenticated {
		return nil, ErrPermissionDenied
	}
	if err := s.reviewExists(ctx, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     in.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, reviewID, comment.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Update(ctx context.Context, actor permissions.Actor, reviewID, commentID int64, in dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !permissions.CanMutateOwnedContent(actor, comment.AuthorID) {
		return nil, ErrPermissionDenied
	}

	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Delete(ctx context.Context, actor permissions.Actor, reviewID, commentID int64) error {
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !permissions.CanMutateOwnedContent(actor, comment.AuthorID) {
		return ErrPermissionDenied
	}
	return s.commentRepo.Delete(ctx, commentID)
}

func (s *commentService) Get(ctx context.Context, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error) {
	if err := s.reviewExists(ctx, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i]))
	}
	return dto.NewPaginatedCommentResponse(responses, int(total), page, pageSize), nil
}
