// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/estifie/Expense-Tracker-API/internal/tag/domain"
)

// CreateTagRequest contains the parameters for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

// Validate checks if the create tag request is valid.
func (r *CreateTagRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, 255),
		),
	)
}

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MapTagToResponse converts a domain tag to a response DTO.
func MapTagToResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID.String(),
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt,
	}
}

// ListTagsResponse represents a paginated list of tags in API responses.
type ListTagsResponse struct {
	Data []TagResponse `json:"data"`
}

// MapTagsToListResponse converts a slice of domain tags to a list response.
func MapTagsToListResponse(tags []*domain.Tag) ListTagsResponse {
	data := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		data = append(data, MapTagToResponse(tag))
	}

	return ListTagsResponse{
		Data: data,
	}
}
