package dto

import "reviewhub/internal/httpapi/models"

// CreateTitleRequest references category and genres by slug; reads expand
// them into full objects. The asymmetry is part of the API contract.
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description" binding:"max=1000"`
	Category    string   `json:"category" binding:"required,max=50"`
	Genre       []string `json:"genre" binding:"required,min=1,dive,max=50"`
}

// UpdateTitleRequest is a partial update; nil fields stay untouched.
type UpdateTitleRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=256"`
	Year        *int     `json:"year"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Category    *string  `json:"category" binding:"omitempty,max=50"`
	Genre       []string `json:"genre" binding:"omitempty,min=1,dive,max=50"`
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description string            `json:"description"`
	Category    *CategoryResponse `json:"category"`
	Genre       []GenreResponse   `json:"genre"`
}

func FromModelToCategoryResponse(category *models.Category) *CategoryResponse {
	return &CategoryResponse{Name: category.Name, Slug: category.Slug}
}

func FromModelToGenreResponse(genre *models.Genre) *GenreResponse {
	return &GenreResponse{Name: genre.Name, Slug: genre.Slug}
}

func FromModelToTitleResponse(title *models.Title) *TitleResponse {
	resp := &TitleResponse{
		ID:          title.ID,
		Name:        title.Name,
		Year:        title.Year,
		Rating:      title.Rating,
		Description: title.Description,
		Genre:       make([]GenreResponse, 0, len(title.Genres)),
	}
	if title.Category != nil {
		resp.Category = FromModelToCategoryResponse(title.Category)
	}
	for i := range title.Genres {
		resp.Genre = append(resp.Genre, *FromModelToGenreResponse(&title.Genres[i]))
	}
	return resp
}

type PaginatedTitleResponse struct {
	Data []TitleResponse `json:"data"`
	Pagination
}

type PaginatedCategoryResponse struct {
	Data []CategoryResponse `json:"data"`
	Pagination
}

type PaginatedGenreResponse struct {
	Data []GenreResponse `json:"data"`
	Pagination
}

// CreateCategoryRequest doubles for genres; both are {name, slug} records.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}
