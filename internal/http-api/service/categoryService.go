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

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedCategoryResponse, error)
	Create(ctx context.Context, actor permissions.Actor, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, slug string) error
}

type categoryService struct {
	repo *repository.CategoryRepo
}

func NewCategoryService(repo *repository.CategoryRepo) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedCategoryResponse, error) {
	categories, total, err := s.repo.GetAll(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, dto.CategoryFromModel(c))
	}
	return dto.NewPaginatedCategoryResponse(responses, int(total), page, pageSize), nil
}

func (s *categoryService) Create(ctx context.Context, actor permissions.Actor, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	if !permissions.CanWriteCatalogReference(actor) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationErrorf("name", "must not be empty")
	}
	if err := validateSlug(in.Slug); err != nil {
		return nil, err
	}

	category := &models.Category{Name: strings.TrimSpace(in.Name), Slug: in.Slug}
	if err := s.repo.Create(ctx, category); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	resp := dto.CategoryFromModel(*category)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, actor permissions.Actor, slug string) error {
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
