package models

import (
	"errors"
	"time"
)

// Status of a recommendation. Only pending may change, and only once.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ResolutionStatuses are the values a recipient may resolve to.
var ResolutionStatuses = []string{
	string(StatusAccepted),
	string(StatusRejected),
}

var ErrAlreadyResolved = errors.New("recommendation already resolved")

// Recommendation представляет рекомендацию от одного пользователя другому
// @Description Рекомендация тайтла
type Recommendation struct {
	ID         string     `json:"id" example:"6f1c1f0e-8b4e-4c55-9a43-3f7f2a4c1d2e"`
	FromUserID string     `json:"fromUserId" example:"123456789"`
	ToUserID   string     `json:"toUserId" example:"987654321"`
	AnimeTitle string     `json:"animeTitle" example:"Bleach"`
	Comment    string     `json:"comment" example:"You will love it"`
	Status     Status     `json:"status" example:"pending" enums:"pending,accepted,rejected"`
	CreatedAt  time.Time  `json:"createdAt" example:"2024-03-15T14:30:00Z"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// Resolve moves a pending recommendation to status.
func (r *Recommendation) Resolve(status Status, now time.Time) error {
	if r.Status != StatusPending {
		return ErrAlreadyResolved
	}
	r.Status = status
	r.ResolvedAt = &now
	return nil
}

// Event is published after a recommendation has been stored.
type Event struct {
	RecommendationID string    `json:"recommendationId"`
	FromUserID       string    `json:"fromUserId"`
	FromUsername     string    `json:"fromUsername"`
	// Telegram @username from init-data, без "@"
	FromHandle       string    `json:"fromHandle,omitempty"`
	ToUserID         string    `json:"toUserId"`
	AnimeTitle       string    `json:"animeTitle"`
	Comment          string    `json:"comment"`
	CreatedAt        time.Time `json:"createdAt"`
}

func NewEvent(rec *Recommendation, fromUsername string) Event {
	return Event{
		RecommendationID: rec.ID,
		FromUserID:       rec.FromUserID,
		FromUsername:     fromUsername,
		ToUserID:         rec.ToUserID,
		AnimeTitle:       rec.AnimeTitle,
		Comment:          rec.Comment,
		CreatedAt:        rec.CreatedAt,
	}
}
