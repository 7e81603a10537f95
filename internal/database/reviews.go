package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cinelog/models"
)

// ReviewRepository persists per-user movie reviews.
type ReviewRepository struct {
	conn *sql.DB
}

func NewReviewRepository(conn *sql.DB) *ReviewRepository {
	return &ReviewRepository{conn: conn}
}

// Upsert stores the user's review for a movie, overwriting any previous one.
// The (movie, user) pair is unique; a second submission never duplicates.
func (r *ReviewRepository) Upsert(ctx context.Context, movieID, userID int64, rating *float64, comment string) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews (movie_id, user_id, rating, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (movie_id, user_id) DO UPDATE SET
			rating = excluded.rating,
			comment = excluded.comment,
			updated_at = excluded.updated_at`,
		movieID, userID, nullRating(rating), nullString(comment), now, now)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns the user's review of a movie, or nil when there is none.
func (r *ReviewRepository) Get(ctx context.Context, movieID, userID int64) (*models.Review, error) {
	row := r.conn.QueryRowContext(ctx, `
		SELECT id, movie_id, user_id, rating, comment, created_at, updated_at
		FROM reviews WHERE movie_id = ? AND user_id = ?`, movieID, userID)

	var rev models.Review
	var rating sql.NullFloat64
	var comment sql.NullString
	err := row.Scan(&rev.ID, &rev.MovieID, &rev.UserID, &rating, &comment, &rev.CreatedAt, &rev.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		rev.Rating = &rating.Float64
	}
	rev.Comment = comment.String
	return &rev, nil
}

// RatingsByMovie maps reviewer username to rating for one movie. Reviews with
// no rating (or a zero rating) are omitted.
func (r *ReviewRepository) RatingsByMovie(ctx context.Context, movieID int64) (map[string]float64, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT u.username, rv.rating
		FROM reviews rv JOIN users u ON u.id = rv.user_id
		WHERE rv.movie_id = ?`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := map[string]float64{}
	for rows.Next() {
		var username string
		var rating sql.NullFloat64
		if err := rows.Scan(&username, &rating); err != nil {
			return nil, err
		}
		if rating.Valid && rating.Float64 > 0 {
			ratings[username] = rating.Float64
		}
	}
	return ratings, rows.Err()
}

func nullRating(rating *float64) sql.NullFloat64 {
	if rating == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *rating, Valid: true}
}
