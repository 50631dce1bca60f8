package service

import (
	"context"
	"errors"
	"strings"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error)
	Create(ctx context.Context, actor permissions.Actor, in dto.CreateGenreDTO) (*dto.GenreResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, slug string) error
}

type genreService struct {
	repo *repository.GenreRepo
}

func NewGenreService(repo *repository.GenreRepo) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error) {
	genres, total, err := s.repo.GetAll(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.GenreResponse, 0, len(genres))
	for _, g := range genres {
		responses = append(responses, dto.GenreFromModel(g))
	}
	return dto.NewPaginatedGenreResponse(responses, int(total), page, pageSize), nil
}

func (s *genreService) Create(ctx context.Context, actor permissions.Actor, in dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	if !permissions.CanWriteCatalogReference(actor) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationErrorf("name", "must not be empty")
	}
	if err := validateSlug(in.Slug); err != nil {
		return nil, err
	}

	genre := &models.Genre{Name: strings.TrimSpace(in.Name), Slug: in.Slug}
	if err := s.repo.Create(ctx, genre); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, actor permissions.Actor, slug string) error {
	if !permissions.CanWriteCatalogReference(actor) {
		return ErrPermissionDenied
	}
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
