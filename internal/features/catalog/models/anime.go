package models

import "anime-tracker-backend/internal/platform/jikan"

// AnimeSummary is one catalog search hit.
// @Description Результат поиска в каталоге
type AnimeSummary struct {
	ID       int      `json:"id" example:"20"`
	Title    string   `json:"title" example:"Naruto"`
	Image    string   `json:"image" example:"https://cdn.myanimelist.net/images/anime/13/17405.jpg"`
	Year     *int     `json:"year" example:"2002"`
	Score    *float64 `json:"score" example:"8"`
	Synopsis string   `json:"synopsis"`
}

// AnimeDetails is the catalog card of one title.
// @Description Карточка тайтла
type AnimeDetails struct {
	AnimeSummary
	Episodes *int     `json:"episodes" example:"220"`
	Status   string   `json:"status" example:"Finished Airing"`
	Genres   []string `json:"genres"`
	Rating   string   `json:"rating" example:"PG-13 - Teens 13 or older"`
	Duration string   `json:"duration" example:"23 min per ep"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Success bool           `json:"success" example:"true"`
	Data    []AnimeSummary `json:"data"`
}

// DetailsResponse wraps one title.
type DetailsResponse struct {
	Success bool          `json:"success" example:"true"`
	Data    *AnimeDetails `json:"data"`
}

func FromJikanSummary(a jikan.Anime) AnimeSummary {
	return AnimeSummary{
		ID:       a.MalID,
		Title:    a.Title,
		Image:    a.Images.JPG.ImageURL,
		Year:     a.Year,
		Score:    a.Score,
		Synopsis: a.Synopsis,
	}
}

// FromJikanDetails prefers the English title when there is one.
func FromJikanDetails(a jikan.Anime) AnimeDetails {
	d := AnimeDetails{
		AnimeSummary: FromJikanSummary(a),
		Episodes:     a.Episodes,
		Status:       a.Status,
		Genres:       make([]string, 0, len(a.Genres)),
		Rating:       a.Rating,
		Duration:     a.Duration,
	}
	if a.TitleEnglish != "" {
		d.Title = a.TitleEnglish
	}
	for _, g := range a.Genres {
		d.Genres = append(d.Genres, g.Name)
	}
	return d
}
