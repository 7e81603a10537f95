package tmdb

import (
	"context"
	"fmt"
	"net/url"

	"cinelog/models"
)

//go:generate mockgen -source=client.go -destination=mocks/doer.go -package=mocks HTTPDoer

// Details fetches the catalog fields needed to create a library entry.
// Unlike Search, a failure here propagates: the add operation cannot proceed
// without this data.
func (c *Client) Details(ctx context.Context, tmdbID int64) (*models.MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "release_dates")
	for k, v := range c.authParams() {
		params.Set(k, v)
	}

	var resp movieDetailsResponse
	endpoint := fmt.Sprintf("%s/movie/%d?%s", c.baseURL, tmdbID, params.Encode())
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch movie details for %d: %w", tmdbID, err)
	}

	title := resp.Title
	if title == "" {
		title = resp.OriginalTitle
	}

	genres := make([]string, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		if g.Name != "" {
			genres = append(genres, g.Name)
		}
	}

	return &models.MovieDetails{
		TMDBID:        resp.ID,
		Title:         title,
		OriginalTitle: resp.OriginalTitle,
		Year:          extractYear(resp.ReleaseDate),
		PosterPath:    resp.PosterPath,
		PosterURL:     c.ImageURL(resp.PosterPath, PosterSizeDetail),
		BackdropPath:  resp.BackdropPath,
		Overview:      resp.Overview,
		Runtime:       resp.Runtime,
		TMDBRating:    resp.VoteAverage,
		Genres:        genres,
	}, nil
}
