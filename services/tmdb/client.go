// Package tmdb talks to The Movie Database API: text search, person lookup,
// credits and movie details. Search results are scored and ranked locally;
// see search.go.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p"

	// Poster sizes used by the UI
	PosterSizeSearch = "w185"
	PosterSizeDetail = "w342"
)

// HTTPDoer is the outbound HTTP capability; production wires the cached
// fetcher from services/httpcache here.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a TMDB API client. Bearer-token auth is preferred when a token is
// configured; otherwise the api_key query parameter is sent.
type Client struct {
	apiKey       string
	bearerToken  string
	baseURL      string
	imageBaseURL string
	httpClient   HTTPDoer
}

// NewClient creates a TMDB client authenticated with apiKey and/or
// bearerToken.
func NewClient(apiKey, bearerToken string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		bearerToken:  bearerToken,
		baseURL:      defaultBaseURL,
		imageBaseURL: defaultImageBaseURL,
		// Bounded timeout per call; failures degrade, so no retries
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (the cached fetcher, or a test
// double).
func WithHTTPClient(d HTTPDoer) Option {
	return func(c *Client) {
		if d != nil {
			c.httpClient = d
		}
	}
}

// WithBaseURL sets a custom base URL for the TMDB API.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// ImageURL builds a full image URL from a stored poster path, or "" when the
// path is empty.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.imageBaseURL, size, path)
}

// authParams returns the api_key query parameter unless bearer auth is in use.
func (c *Client) authParams() map[string]string {
	if c.bearerToken != "" {
		return nil
	}
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"api_key": c.apiKey}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tmdb: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(target)
}
