package models

import "time"

// Review is a single user's take on a library movie. At most one review exists
// per (movie, user) pair; a second submission overwrites the first.
type Review struct {
	ID        int64     `json:"id"`
	MovieID   int64     `json:"movie_id"`
	UserID    int64     `json:"user_id"`
	Rating    *float64  `json:"rating,omitempty"` // 0.0 - 5.0 in 0.5 increments, nil when unrated
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
