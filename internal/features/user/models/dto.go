package models

import "anime-tracker-backend/internal/common/validation"

// ResolveUserRequest is the body of POST /user.
type ResolveUserRequest struct {
	TelegramID string `json:"telegramId" binding:"required,max=64" example:"123456789"`
	Username   string `json:"username" binding:"required,max=64" example:"johndoe"`
}

// UpsertAnimeRequest is the body of POST /user/anime/:telegramId.
// Missing status means planned.
type UpsertAnimeRequest struct {
	Title    string   `json:"title" binding:"required,max=200" example:"Naruto"`
	Status   string   `json:"status" binding:"omitempty,anime_status" example:"watching" enums:"planned,watching,completed"`
	Image    string   `json:"image" binding:"omitempty,max=2048"`
	Episodes *int     `json:"episodes" binding:"omitempty,min=0"`
	Score    *float64 `json:"score" binding:"omitempty,min=0,max=10"`
	Synopsis string   `json:"synopsis" binding:"omitempty,max=10000"`
}

// ToEntry converts the request into a list entry. AddedAt is set on insert.
func (r UpsertAnimeRequest) ToEntry() AnimeEntry {
	return AnimeEntry{
		Title:    r.Title,
		Status:   AnimeStatus(r.Status),
		Image:    r.Image,
		Episodes: r.Episodes,
		Score:    r.Score,
		Synopsis: r.Synopsis,
	}
}

// RegisterValidators registers the anime_status binding tag on gin's validator.
func RegisterValidators() error {
	return validation.RegisterOneOf("anime_status", AnimeStatuses...)
}
