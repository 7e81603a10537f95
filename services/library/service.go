// Package library implements the shared movie collection: adding titles from
// the external catalog, the filtered and paginated listing, ratings and tags.
package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"cinelog/internal/database"
	"cinelog/models"
	"cinelog/services/tmdb"
	"cinelog/utils/similarity"
)

var (
	// ErrMovieNotFound is returned when an operation targets a movie that
	// is not in the library.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrTagNotFound is returned when removing a tag association that does
	// not exist.
	ErrTagNotFound = errors.New("tag not found")
	// ErrInvalidRating is returned for ratings outside [0.0, 5.0].
	ErrInvalidRating = errors.New("rating must be between 0.0 and 5.0")
	// ErrCatalogUnavailable is returned when the catalog details needed to
	// create a library entry cannot be fetched.
	ErrCatalogUnavailable = errors.New("failed to fetch movie details")
	// ErrStorage is the generic storage failure reported to callers; the
	// in-flight transaction has been rolled back.
	ErrStorage = errors.New("storage error")
)

const (
	defaultPage = 1
	minPerPage  = 1
	maxPerPage  = 50

	// Minimum similarity for the local fuzzy title search
	librarySearchThreshold = 0.4
)

// Catalog is the slice of the TMDB client the library needs.
type Catalog interface {
	Details(ctx context.Context, tmdbID int64) (*models.MovieDetails, error)
	ImageURL(path, size string) string
}

// Service owns library operations on top of the repositories.
type Service struct {
	db      *database.DB
	catalog Catalog
}

var _ Catalog = (*tmdb.Client)(nil)

func NewService(db *database.DB, catalog Catalog) *Service {
	return &Service{db: db, catalog: catalog}
}

// List applies the filter conjunction and returns one page of the library,
// most recently added first. The genre predicate is evaluated here in
// application logic; the rest is pushed down to storage.
func (s *Service) List(ctx context.Context, f models.ListFilters, page, perPage int) (*models.Page, error) {
	if page < 1 {
		page = defaultPage
	}
	if perPage < minPerPage {
		perPage = minPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	movies, err := s.db.Movies.Filtered(ctx, f)
	if err != nil {
		log.Printf("[library] list query failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if len(f.Genres) > 0 {
		movies = filterByGenre(movies, f.Genres)
	}

	total := len(movies)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	items := make([]models.ListItem, 0, end-start)
	for _, m := range movies[start:end] {
		item, err := s.listItem(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		items = append(items, item)
	}

	return &models.Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) listItem(ctx context.Context, m *models.Movie) (models.ListItem, error) {
	ratings, err := s.db.Reviews.RatingsByMovie(ctx, m.ID)
	if err != nil {
		return models.ListItem{}, err
	}
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return models.ListItem{
		ID:        m.ID,
		TMDBID:    m.TMDBID,
		Title:     m.Title,
		Year:      m.Year,
		PosterURL: s.catalog.ImageURL(m.PosterPath, tmdb.PosterSizeSearch),
		Genres:    genres,
		Ratings:   ratings,
	}, nil
}

// filterByGenre keeps movies whose genre list intersects the requested set.
func filterByGenre(movies []*models.Movie, genres []string) []*models.Movie {
	want := make(map[string]bool, len(genres))
	for _, g := range genres {
		want[g] = true
	}
	kept := movies[:0]
	for _, m := range movies {
		for _, g := range m.Genres {
			if want[g] {
				kept = append(kept, m)
				break
			}
		}
	}
	return kept
}

// SearchLibrary ranks library movies by fuzzy title similarity to q.
func (s *Service) SearchLibrary(ctx context.Context, q string) ([]models.SearchResult, error) {
	movies, err := s.db.Movies.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	type scored struct {
		result models.SearchResult
		score  float64
	}
	var matches []scored
	for _, m := range movies {
		score := similarity.Ratio(m.Title, q)
		if score < librarySearchThreshold {
			continue
		}
		matches = append(matches, scored{
			result: models.SearchResult{
				TMDBID:     m.TMDBID,
				Title:      m.Title,
				Year:       m.Year,
				PosterPath: m.PosterPath,
				PosterURL:  s.catalog.ImageURL(m.PosterPath, tmdb.PosterSizeSearch),
				Overview:   m.Overview,
				Directors:  []string{},
				InLibrary:  true,
			},
			score: score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	results := make([]models.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = m.result
	}
	return results, nil
}

// Add imports a movie from the external catalog. The operation is idempotent
// by tmdb id: an already-imported movie reports existing=true with its id.
func (s *Service) Add(ctx context.Context, userID, tmdbID int64) (id int64, existing bool, err error) {
	current, err := s.db.Movies.GetByTMDBID(ctx, tmdbID)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if current != nil {
		return current.ID, true, nil
	}

	details, err := s.catalog.Details(ctx, tmdbID)
	if err != nil {
		log.Printf("[library] details fetch for %d failed: %v", tmdbID, err)
		return 0, false, ErrCatalogUnavailable
	}

	id, err = s.db.Movies.Insert(ctx, &models.Movie{
		TMDBID:        details.TMDBID,
		Title:         details.Title,
		OriginalTitle: details.OriginalTitle,
		Year:          details.Year,
		PosterPath:    details.PosterPath,
		BackdropPath:  details.BackdropPath,
		Overview:      details.Overview,
		Runtime:       details.Runtime,
		TMDBRating:    details.TMDBRating,
		Genres:        details.Genres,
		AddedBy:       userID,
	})
	if err != nil {
		log.Printf("[library] insert for tmdb id %d failed: %v", tmdbID, err)
		return 0, false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return id, false, nil
}

// Delete removes a movie; its reviews and tag associations cascade.
func (s *Service) Delete(ctx context.Context, movieID int64) error {
	deleted, err := s.db.Movies.Delete(ctx, movieID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !deleted {
		return ErrMovieNotFound
	}
	return nil
}
