package dto

import "reviewhub/internal/http-api/models"

// CreateTitleDTO for creating a title; category and genres are slugs
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Description *string  `json:"description"`
	Year        int      `json:"year" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Genres      []string `json:"genre"`
}

// UpdateTitleDTO for partial title updates; nil means "leave as is"
type UpdateTitleDTO struct {
	Name        *string   `json:"name" binding:"omitempty,max=256"`
	Description *string   `json:"description"`
	Year        *int      `json:"year"`
	Category    *string   `json:"category"`
	Genres      *[]string `json:"genre"`
}

// TitleResponse for returning title information with the current rating.
// Rating is null when the title has no reviews.
type TitleResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Year        int              `json:"year"`
	Rating      *float64         `json:"rating"`
	Category    CategoryResponse `json:"category"`
	Genres      []GenreResponse  `json:"genre"`
}

// TitleFromModel converts a Title model plus its computed rating to a
// TitleResponse DTO.
func TitleFromModel(t *models.Title, rating *float64) *TitleResponse {
	genres := make([]GenreResponse, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, GenreFromModel(g))
	}
	return &TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Year:        t.Year,
		Rating:      rating,
		Category:    CategoryFromModel(t.Category),
		Genres:      genres,
	}
}

// PaginatedTitleResponse for returning paginated titles
type PaginatedTitleResponse struct {
	Data       []TitleResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

func NewPaginatedTitleResponse(data []TitleResponse, total, page, pageSize int) *PaginatedTitleResponse {
	return &PaginatedTitleResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
