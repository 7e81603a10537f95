package library

import (
	"context"
	"fmt"

	"cinelog/models"
)

// Rate stores (or overwrites) the user's review of a movie. A nil rating
// keeps the review but clears the score.
func (s *Service) Rate(ctx context.Context, movieID, userID int64, rating *float64, comment string) error {
	if rating != nil && (*rating < 0.0 || *rating > 5.0) {
		return ErrInvalidRating
	}

	movie, err := s.db.Movies.Get(ctx, movieID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if movie == nil {
		return ErrMovieNotFound
	}

	if err := s.db.Reviews.Upsert(ctx, movieID, userID, rating, comment); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// UserReview returns the user's review of a movie, or nil when there is none.
func (s *Service) UserReview(ctx context.Context, movieID, userID int64) (*models.Review, error) {
	review, err := s.db.Reviews.Get(ctx, movieID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return review, nil
}
