package models

import "time"

// Movie is a library entry imported from the external catalog.
// TMDBID is unique across the library; duplicate imports are rejected upstream.
type Movie struct {
	ID            int64     `json:"id"`
	TMDBID        int64     `json:"tmdb_id"`
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title,omitempty"`
	Year          int       `json:"year,omitempty"`
	PosterPath    string    `json:"poster_path,omitempty"`
	BackdropPath  string    `json:"backdrop_path,omitempty"`
	Overview      string    `json:"overview,omitempty"`
	Runtime       int       `json:"runtime,omitempty"`
	TMDBRating    float64   `json:"tmdb_rating,omitempty"`
	Genres        []string  `json:"genres,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
	AddedBy       int64     `json:"addedBy,omitempty"`
}

// ListItem is a single entry of the paginated library listing, enriched with
// the full poster URL and every user's rating.
type ListItem struct {
	ID        int64              `json:"id"`
	TMDBID    int64              `json:"tmdb_id"`
	Title     string             `json:"title"`
	Year      int                `json:"year,omitempty"`
	PosterURL string             `json:"poster_url,omitempty"`
	Genres    []string           `json:"genres"`
	Ratings   map[string]float64 `json:"ratings"`
}

// Page is one window of the filtered library listing.
type Page struct {
	Items      []ListItem `json:"items"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// ListFilters is the conjunction of listing predicates. Zero values mean
// "filter not applied"; Tags and Genres use OR semantics across their members.
type ListFilters struct {
	YearFrom  int
	YearTo    int
	Tags      []string
	MinRating float64
	Genres    []string
}
