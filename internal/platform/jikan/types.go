package jikan

// Anime is the subset of the Jikan anime resource the service reads.
type Anime struct {
	MalID        int      `json:"mal_id"`
	Title        string   `json:"title"`
	TitleEnglish string   `json:"title_english"`
	Images       Images   `json:"images"`
	Year         *int     `json:"year"`
	Score        *float64 `json:"score"`
	Synopsis     string   `json:"synopsis"`
	Episodes     *int     `json:"episodes"`
	Status       string   `json:"status"`
	Genres       []Named  `json:"genres"`
	Rating       string   `json:"rating"`
	Duration     string   `json:"duration"`
}

type Images struct {
	JPG struct {
		ImageURL      string `json:"image_url"`
		LargeImageURL string `json:"large_image_url"`
	} `json:"jpg"`
}

type Named struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
}

type searchResponse struct {
	Data []Anime `json:"data"`
}

type detailsResponse struct {
	Data *Anime `json:"data"`
}
