package models

import "anime-tracker-backend/internal/common/validation"

// SendRequest is the body of POST /recommendations/:userId.
type SendRequest struct {
	AnimeTitle string `json:"animeTitle" binding:"required,max=200" example:"Bleach"`
	Comment    string `json:"comment" binding:"max=1000" example:"You will love it"`

	// SenderHandle is filled from verified init-data, never from the body.
	SenderHandle string `json:"-"`
}

// ResolveRequest is the body of PATCH /recommendations/:id.
type ResolveRequest struct {
	Status string `json:"status" binding:"required,resolution_status" example:"accepted" enums:"accepted,rejected"`
}

// RecommendationResponse wraps a single recommendation.
type RecommendationResponse struct {
	Success bool            `json:"success" example:"true"`
	Message string          `json:"message" example:"Recommendation sent successfully"`
	Data    *Recommendation `json:"data"`
}

// ListResponse wraps the pending page.
type ListResponse struct {
	Success bool              `json:"success" example:"true"`
	Data    []*Recommendation `json:"data"`
}

// RegisterValidators registers the resolution_status binding tag.
func RegisterValidators() error {
	return validation.RegisterOneOf("resolution_status", ResolutionStatuses...)
}
