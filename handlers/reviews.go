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

type reviewService interface {
	Rate(ctx context.Context, movieID, userID int64, rating *float64, comment string) error
	UserReview(ctx context.Context, movieID, userID int64) (*models.Review, error)
}

var _ reviewService = (*librarysvc.Service)(nil)

// ReviewHandler stores and returns the caller's review of a movie.
type ReviewHandler struct {
	Library reviewService
	Users   userDirectory
}

func NewReviewHandler(library reviewService, users userDirectory) *ReviewHandler {
	return &ReviewHandler{Library: library, Users: users}
}

// Upsert stores the caller's rating and comment, overwriting any earlier one.
func (h *ReviewHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(mux.Vars(r)["movieID"], 10, 64)
	if err != nil || movieID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	var request struct {
		Rating  *float64 `json:"rating"`
		Comment string   `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := requestUser(r, h.Users)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Library.Rate(r.Context(), movieID, user.ID, request.Rating, request.Comment); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Get returns the caller's review of a movie, or an empty object when they
// have not reviewed it.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(mux.Vars(r)["movieID"], 10, 64)
	if err != nil || movieID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	user, err := requestUser(r, h.Users)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	review, err := h.Library.UserReview(r.Context(), movieID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if review == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, review)
}
