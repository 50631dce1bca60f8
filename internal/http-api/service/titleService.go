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

// TitleService is the catalog query layer plus admin-gated title
// writes. Every returned representation carries the current rating.
type TitleService interface {
	List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, actor permissions.Actor, in dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, actor permissions.Actor, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, id int64) error
}

type titleService struct {
	titleRepo    *repository.TitleRepo
	categoryRepo *repository.CategoryRepo
	genreRepo    *repository.GenreRepo
	ratings      RatingService
}

func NewTitleService(titleRepo *repository.TitleRepo, categoryRepo *repository.CategoryRepo, genreRepo *repository.GenreRepo, ratings RatingService) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		ratings:      ratings,
	}
}

func (s *titleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error) {
	titles, total, err := s.titleRepo.List(ctx, f, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(titles))
	for i := range titles {
		ids = append(ids, titles[i].ID)
	}
	ratings, err := s.ratings.TitleRatings(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		var rating *float64
		if avg, ok := ratings[titles[i].ID]; ok {
			avg := avg
			rating = &avg
		}
		responses = append(responses, *dto.TitleFromModel(&titles[i], rating))
	}
	return dto.NewPaginatedTitleResponse(responses, int(total), page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rating, err := s.ratings.TitleRating(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.TitleFromModel(title, rating), nil
}

// resolveGenres maps genre slugs to rows; a single unresolvable slug
// fails the whole operation.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	genres, err := s.genreRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(uniqueStrings(slugs)) {
		return nil, validationErrorf("genre", "contains an unknown slug")
	}
	return genres, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *titleService) Create(ctx context.Context, actor permissions.Actor, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if !permissions.CanWriteCatalogReference(actor) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationErrorf("name", "must not be empty")
	}
	if err := validateYear(in.Year); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetBySlug(ctx, in.Category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationErrorf("category", "unknown slug %q", in.Category)
		}
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, in.Genres)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Year:        in.Year,
		CategoryID:  category.ID,
		Genres:      genres,
	}
	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	created, err := s.titleRepo.GetByID(ctx, title.ID)
	if err != nil {
		return nil, err
	}
	return dto.TitleFromModel(created, nil), nil
}

func (s *titleService) Update(ctx context.Context, actor permissions.Actor, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	if !permissions.CanWriteCatalogReference(actor) {
		return nil, ErrPermissionDenied
	}

	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, validationErrorf("name", "must not be empty")
		}
		title.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		title.Description = in.Description
	}
	if in.Year != nil {
		if err := validateYear(*in.Year); err != nil {
			return nil, err
		}
		title.Year = *in.Year
	}
	if in.Category != nil {
		category, err := s.categoryRepo.GetBySlug(ctx, *in.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationErrorf("category", "unknown slug %q", *in.Category)
			}
			return nil, err
		}
		title.CategoryID = category.ID
		title.Category = *category
	}
	if in.Genres != nil {
		genres, err := s.resolveGenres(ctx, *in.Genres)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titleRepo.Save(ctx, title); err != nil {
		return nil, err
	}

	updated, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rating, err := s.ratings.TitleRating(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.TitleFromModel(updated, rating), nil
}

func (s *titleService) Delete(ctx context.Context, actor permissions.Actor, id int64) error {
	if !permissions.CanWriteCatalogReference(actor) {
		return ErrPermissionDenied
	}
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
