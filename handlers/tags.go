package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinelog/models"
	librarysvc "cinelog/services/library"
)

type tagService interface {
	AddTag(ctx context.Context, movieID, userID int64, name string) (*models.Tag, bool, error)
	RemoveTag(ctx context.Context, movieID, tagID int64) error
	MovieTags(ctx context.Context, movieID int64) ([]models.Tag, error)
}

var _ tagService = (*librarysvc.Service)(nil)

// TagHandler manages the tags attached to a movie.
type TagHandler struct {
	Library tagService
	Users   userDirectory
}

func NewTagHandler(library tagService, users userDirectory) *TagHandler {
	return &TagHandler{Library: library, Users: users}
}

// Add attaches a tag by name, creating it on first use.
func (h *TagHandler) Add(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(mux.Vars(r)["movieID"], 10, 64)
	if err != nil || movieID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	var request struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Name == "" {
		writeError(w, http.StatusBadRequest, "tag name required")
		return
	}

	user, err := requestUser(r, h.Users)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	tag, already, err := h.Library.AddTag(r.Context(), movieID, user.ID, request.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	tag.Color = tag.DisplayColor()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tag": tag, "already_tagged": already})
}

// List returns the tags on a movie.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(mux.Vars(r)["movieID"], 10, 64)
	if err != nil || movieID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	tags, err := h.Library.MovieTags(r.Context(), movieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	for i := range tags {
		tags[i].Color = tags[i].DisplayColor()
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// Remove detaches a tag from a movie.
func (h *TagHandler) Remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	movieID, err := strconv.ParseInt(vars["movieID"], 10, 64)
	if err != nil || movieID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	tagID, err := strconv.ParseInt(vars["tagID"], 10, 64)
	if err != nil || tagID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := h.Library.RemoveTag(r.Context(), movieID, tagID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Predefined returns the built-in tag palette for the tag picker.
func (h *TagHandler) Predefined(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tags": models.PredefinedTags})
}
