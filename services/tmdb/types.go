package tmdb

// searchMovieResponse is the payload of /search/movie.
type searchMovieResponse struct {
	Page    int `json:"page"`
	Results []struct {
		ID            int64  `json:"id"`
		Title         string `json:"title"`
		OriginalTitle string `json:"original_title"`
		ReleaseDate   string `json:"release_date"`
		PosterPath    string `json:"poster_path"`
		Overview      string `json:"overview"`
	} `json:"results"`
	TotalPages int `json:"total_pages"`
}

// searchPersonResponse is the payload of /search/person.
type searchPersonResponse struct {
	Results []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}

// crewEntry is one crew credit; directors are identified by job/department.
type crewEntry struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// creditsResponse is the payload of /movie/{id}/credits.
type creditsResponse struct {
	Crew []crewEntry `json:"crew"`
}

// personCreditsResponse is the payload of /person/{id}/movie_credits. For
// crew entries the id field is the movie id, not the person id.
type personCreditsResponse struct {
	Crew []crewEntry `json:"crew"`
}

// movieDetailsResponse is the payload of /movie/{id}.
type movieDetailsResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	Overview      string  `json:"overview"`
	Runtime       int     `json:"runtime"`
	VoteAverage   float64 `json:"vote_average"`
	Genres        []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}
