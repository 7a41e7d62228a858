package models

import "time"

// AnimeStatus is the position of a title in a watch list.
type AnimeStatus string

const (
	StatusPlanned   AnimeStatus = "planned"
	StatusWatching  AnimeStatus = "watching"
	StatusCompleted AnimeStatus = "completed"
)

// AnimeStatuses lists the accepted values, in display order.
var AnimeStatuses = []string{
	string(StatusPlanned),
	string(StatusWatching),
	string(StatusCompleted),
}

func (s AnimeStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusWatching, StatusCompleted:
		return true
	}
	return false
}

// AnimeEntry представляет тайтл в списке пользователя
// @Description Элемент списка просмотра
type AnimeEntry struct {
	Title   string      `json:"title" example:"Naruto"`
	Status  AnimeStatus `json:"status" example:"planned" enums:"planned,watching,completed"`
	AddedAt time.Time   `json:"addedAt" example:"2024-03-15T14:30:00Z"`

	// Копия данных каталога на момент добавления, не обновляется
	Image    string   `json:"image,omitempty" example:"https://cdn.myanimelist.net/images/anime/13/17405.jpg"`
	Episodes *int     `json:"episodes,omitempty" example:"220"`
	Score    *float64 `json:"score,omitempty" example:"8"`
	Synopsis string   `json:"synopsis,omitempty"`
}

// ReceivedRecommendation is the recipient-side copy of a recommendation.
type ReceivedRecommendation struct {
	AnimeTitle string    `json:"animeTitle" example:"Bleach"`
	Comment    string    `json:"comment" example:"You will love it"`
	ReceivedAt time.Time `json:"receivedAt" example:"2024-03-15T14:30:00Z"`
}

// User представляет документ пользователя
// @Description Пользователь и его список просмотра
type User struct {
	TelegramID string  `json:"telegramId" example:"123456789"`
	ProfileID  string  `json:"profileId" example:"1a2b3c4d"`
	Username   string  `json:"username" example:"johndoe"`
	AvatarURL  *string `json:"avatarUrl" example:"/uploads/5f0c8f9e-avatar.png"`

	AnimeList    []AnimeEntry `json:"animeList"`
	WatchedCount int          `json:"watchedCount" example:"2"`
	PlannedCount int          `json:"plannedCount" example:"1"`

	Recommendations []ReceivedRecommendation `json:"recommendations"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser returns a fresh user with empty lists.
func NewUser(telegramID, profileID, username string, now time.Time) *User {
	return &User{
		TelegramID:      telegramID,
		ProfileID:       profileID,
		Username:        username,
		AnimeList:       []AnimeEntry{},
		Recommendations: []ReceivedRecommendation{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// EnsureLists replaces nil slices so the JSON form always carries arrays.
func (u *User) EnsureLists() {
	if u.AnimeList == nil {
		u.AnimeList = []AnimeEntry{}
	}
	if u.Recommendations == nil {
		u.Recommendations = []ReceivedRecommendation{}
	}
}

// UpsertAnime applies the watch-list rule: an existing title (exact match)
// only changes status, a new title is appended with addedAt = now.
// Counters are recomputed afterwards.
func (u *User) UpsertAnime(entry AnimeEntry, now time.Time) {
	if entry.Status == "" {
		entry.Status = StatusPlanned
	}

	found := false
	for i := range u.AnimeList {
		if u.AnimeList[i].Title == entry.Title {
			u.AnimeList[i].Status = entry.Status
			found = true
			break
		}
	}

	if !found {
		entry.AddedAt = now
		u.AnimeList = append(u.AnimeList, entry)
	}

	u.RecountStats()
	u.UpdatedAt = now
}

// RecountStats overwrites the derived counters from the list.
func (u *User) RecountStats() {
	watched, planned := 0, 0
	for _, e := range u.AnimeList {
		switch e.Status {
		case StatusCompleted:
			watched++
		case StatusPlanned:
			planned++
		}
	}
	u.WatchedCount = watched
	u.PlannedCount = planned
}

func (u *User) AppendReceived(r ReceivedRecommendation, now time.Time) {
	u.Recommendations = append(u.Recommendations, r)
	u.UpdatedAt = now
}

func (u *User) SetAvatar(url string, now time.Time) {
	u.AvatarURL = &url
	u.UpdatedAt = now
}
