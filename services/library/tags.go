package library

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"cinelog/models"
)

// AddTag attaches a tag to a movie, creating the tag on first use. Returns
// the tag and whether the movie already carried it (the attach is idempotent).
func (s *Service) AddTag(ctx context.Context, movieID, userID int64, name string) (*models.Tag, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("tag name required")
	}

	movie, err := s.db.Movies.Get(ctx, movieID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if movie == nil {
		return nil, false, ErrMovieNotFound
	}

	tag, err := s.db.Tags.GetByName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if tag == nil {
		slug, err := s.uniqueSlug(ctx, name)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		tag, err = s.db.Tags.Create(ctx, &models.Tag{
			Name:  name,
			Slug:  slug,
			Color: models.PredefinedColor(name),
		})
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	created, err := s.db.Tags.Attach(ctx, movieID, tag.ID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return tag, !created, nil
}

// RemoveTag detaches a tag from a movie.
func (s *Service) RemoveTag(ctx context.Context, movieID, tagID int64) error {
	removed, err := s.db.Tags.Detach(ctx, movieID, tagID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !removed {
		return ErrTagNotFound
	}
	return nil
}

// MovieTags lists the tags attached to a movie.
func (s *Service) MovieTags(ctx context.Context, movieID int64) ([]models.Tag, error) {
	tags, err := s.db.Tags.ForMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return tags, nil
}

// uniqueSlug derives a URL-safe slug from the tag name, disambiguating
// collisions with a numeric suffix.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)

	slug := base
	for counter := 1; ; counter++ {
		exists, err := s.db.Tags.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// Slugify lowercases the name, drops everything but word characters, spaces
// and hyphens, and collapses separator runs into single hyphens. An empty
// result falls back to "tag".
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})
	slug := strings.Join(fields, "-")
	if slug == "" {
		return "tag"
	}
	return slug
}
