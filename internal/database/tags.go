package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cinelog/models"
)

// TagRepository persists tags and their movie associations.
type TagRepository struct {
	conn *sql.DB
}

func NewTagRepository(conn *sql.DB) *TagRepository {
	return &TagRepository{conn: conn}
}

// GetByName returns the tag with the given name, or nil when absent.
func (r *TagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	row := r.conn.QueryRowContext(ctx,
		"SELECT id, name, slug, color, created_at FROM tags WHERE name = ?", name)
	return scanTag(row)
}

// SlugExists reports whether any tag already uses the given slug.
func (r *TagRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := r.conn.QueryRowContext(ctx, "SELECT COUNT(1) FROM tags WHERE slug = ?", slug).Scan(&n)
	return n > 0, err
}

// Create stores a new tag and returns it with its id set.
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO tags (name, slug, color, created_at) VALUES (?, ?, ?, ?)",
		tag.Name, tag.Slug, nullString(tag.Color), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	tag.ID = id
	return tag, nil
}

// Attach associates a tag with a movie. Returns false when the association
// already existed (the attach is idempotent).
func (r *TagRepository) Attach(ctx context.Context, movieID, tagID, userID int64) (bool, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO movie_tags (movie_id, tag_id, added_by, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (movie_id, tag_id) DO NOTHING`,
		movieID, tagID, nullInt64(userID), time.Now().UTC())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Detach removes a (movie, tag) association. Returns false when there was
// nothing to remove.
func (r *TagRepository) Detach(ctx context.Context, movieID, tagID int64) (bool, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM movie_tags WHERE movie_id = ? AND tag_id = ?", movieID, tagID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ForMovie lists the tags attached to a movie.
func (r *TagRepository) ForMovie(ctx context.Context, movieID int64) ([]models.Tag, error) {
	rows, err := r.conn.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.color, t.created_at
		FROM tags t JOIN movie_tags mt ON mt.tag_id = t.id
		WHERE mt.movie_id = ?
		ORDER BY mt.added_at, t.id`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

func scanTag(row interface{ Scan(dest ...any) error }) (*models.Tag, error) {
	var t models.Tag
	var color sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &color, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Color = color.String
	return &t, nil
}
