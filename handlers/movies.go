package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinelog/models"
	librarysvc "cinelog/services/library"
	"cinelog/services/tmdb"
)

type libraryService interface {
	List(ctx context.Context, f models.ListFilters, page, perPage int) (*models.Page, error)
	SearchLibrary(ctx context.Context, q string) ([]models.SearchResult, error)
	Add(ctx context.Context, userID, tmdbID int64) (int64, bool, error)
	Delete(ctx context.Context, movieID int64) error
}

type catalogSearcher interface {
	Search(ctx context.Context, query string, page, year int, director string) []models.SearchResult
}

var (
	_ libraryService  = (*librarysvc.Service)(nil)
	_ catalogSearcher = (*tmdb.Client)(nil)
)

// MovieHandler serves the library listing, catalog search and import/removal.
type MovieHandler struct {
	Library libraryService
	Catalog catalogSearcher
	Users   userDirectory
}

func NewMovieHandler(library libraryService, catalog catalogSearcher, users userDirectory) *MovieHandler {
	return &MovieHandler{Library: library, Catalog: catalog, Users: users}
}

// List returns one page of the library, filtered by the query parameters.
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := models.ListFilters{
		YearFrom:  queryInt(r, "year_from", 0),
		YearTo:    queryInt(r, "year_to", 0),
		Tags:      queryCSV(r, "tags"),
		MinRating: queryFloat(r, "min_rating", 0),
		Genres:    queryCSV(r, "genre"),
	}

	page, err := h.Library.List(r.Context(), filters, queryInt(r, "page", 1), queryInt(r, "per_page", 20))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Search queries the external catalog, or the library itself when
// library_only is set.
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var results []models.SearchResult
	if libraryOnly, _ := strconv.ParseBool(r.URL.Query().Get("library_only")); libraryOnly {
		var err error
		results, err = h.Library.SearchLibrary(r.Context(), q)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	} else {
		page := queryInt(r, "page", 1)
		year := queryInt(r, "year", 0)
		director := r.URL.Query().Get("director")
		results = h.Catalog.Search(r.Context(), q, page, year, director)
	}

	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Add imports a movie by its catalog id for the authenticated user.
func (h *MovieHandler) Add(w http.ResponseWriter, r *http.Request) {
	var request struct {
		TMDBID int64 `json:"tmdb_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.TMDBID <= 0 {
		writeError(w, http.StatusBadRequest, "tmdb_id required")
		return
	}

	user, err := requestUser(r, h.Users)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, existing, err := h.Library.Add(r.Context(), user.ID, request.TMDBID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id, "existing": existing})
}

// Delete removes a movie and everything attached to it.
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(mux.Vars(r)["movieID"], 10, 64)
	if err != nil || movieID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	if err := h.Library.Delete(r.Context(), movieID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
