package models

// SearchResult is a ranked external-catalog candidate, simplified for the UI.
type SearchResult struct {
	TMDBID     int64    `json:"tmdb_id"`
	Title      string   `json:"title"`
	Year       int      `json:"year,omitempty"`
	PosterPath string   `json:"poster_path,omitempty"`
	PosterURL  string   `json:"poster_url,omitempty"`
	Overview   string   `json:"overview,omitempty"`
	Directors  []string `json:"directors"`
	InLibrary  bool     `json:"in_library,omitempty"`
}

// MovieDetails carries the catalog fields persisted when a movie is added to
// the library.
type MovieDetails struct {
	TMDBID        int64    `json:"tmdb_id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	Year          int      `json:"year"`
	PosterPath    string   `json:"poster_path"`
	PosterURL     string   `json:"poster_url"`
	BackdropPath  string   `json:"backdrop_path"`
	Overview      string   `json:"overview"`
	Runtime       int      `json:"runtime"`
	TMDBRating    float64  `json:"tmdb_rating"`
	Genres        []string `json:"genres"`
}
