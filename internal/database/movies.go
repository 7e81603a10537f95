package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cinelog/models"
)

// MovieRepository persists library movies.
type MovieRepository struct {
	conn *sql.DB
}

func NewMovieRepository(conn *sql.DB) *MovieRepository {
	return &MovieRepository{conn: conn}
}

const movieColumns = "id, tmdb_id, title, original_title, year, poster_path, backdrop_path, overview, runtime, tmdb_rating, genres, added_at, added_by"

func scanMovie(row interface{ Scan(dest ...any) error }) (*models.Movie, error) {
	var m models.Movie
	var originalTitle, posterPath, backdropPath, overview, genres sql.NullString
	var year, runtime, addedBy sql.NullInt64
	var rating sql.NullFloat64

	err := row.Scan(&m.ID, &m.TMDBID, &m.Title, &originalTitle, &year, &posterPath,
		&backdropPath, &overview, &runtime, &rating, &genres, &m.AddedAt, &addedBy)
	if err != nil {
		return nil, err
	}

	m.OriginalTitle = originalTitle.String
	m.PosterPath = posterPath.String
	m.BackdropPath = backdropPath.String
	m.Overview = overview.String
	m.Year = int(year.Int64)
	m.Runtime = int(runtime.Int64)
	m.TMDBRating = rating.Float64
	m.AddedBy = addedBy.Int64
	m.Genres = decodeGenres(genres.String)
	return &m, nil
}

func decodeGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	var genres []string
	if err := json.Unmarshal([]byte(raw), &genres); err != nil {
		// Bad rows degrade to "no genres" instead of failing the listing
		return nil
	}
	return genres
}

func encodeGenres(genres []string) string {
	if len(genres) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(genres)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// Insert stores a new movie inside a transaction and returns its id.
func (r *MovieRepository) Insert(ctx context.Context, m *models.Movie) (int64, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO movies (tmdb_id, title, original_title, year, poster_path, backdrop_path, overview, runtime, tmdb_rating, genres, added_at, added_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.TMDBID, m.Title, nullString(m.OriginalTitle), nullInt(m.Year),
		nullString(m.PosterPath), nullString(m.BackdropPath), nullString(m.Overview),
		nullInt(m.Runtime), m.TMDBRating, encodeGenres(m.Genres), time.Now().UTC(), nullInt64(m.AddedBy))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the movie with the given id, or nil when absent.
func (r *MovieRepository) Get(ctx context.Context, id int64) (*models.Movie, error) {
	row := r.conn.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id)
	m, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// GetByTMDBID returns the movie with the given external catalog id, or nil.
func (r *MovieRepository) GetByTMDBID(ctx context.Context, tmdbID int64) (*models.Movie, error) {
	row := r.conn.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE tmdb_id = ?", tmdbID)
	m, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// Delete removes a movie; reviews and tag associations cascade. Returns false
// when no movie with that id exists.
func (r *MovieRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
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

// Filtered returns all movies matching the storage-level predicates (year
// range, tag membership, minimum rating), most recently added first. The
// genre predicate is applied by the caller in application logic.
func (r *MovieRepository) Filtered(ctx context.Context, f models.ListFilters) ([]*models.Movie, error) {
	query := "SELECT " + movieColumns + " FROM movies"
	var conds []string
	var args []any

	if f.YearFrom > 0 {
		conds = append(conds, "year >= ?")
		args = append(args, f.YearFrom)
	}
	if f.YearTo > 0 {
		conds = append(conds, "year <= ?")
		args = append(args, f.YearTo)
	}
	if len(f.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Tags)), ",")
		conds = append(conds, `EXISTS (
			SELECT 1 FROM movie_tags mt JOIN tags t ON t.id = mt.tag_id
			WHERE mt.movie_id = movies.id AND t.name IN (`+placeholders+`))`)
		for _, name := range f.Tags {
			args = append(args, name)
		}
	}
	if f.MinRating > 0 {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM reviews rv
			WHERE rv.movie_id = movies.id AND rv.rating >= ?)`)
		args = append(args, f.MinRating)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY added_at DESC, id DESC"

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// All returns every library movie, most recently added first.
func (r *MovieRepository) All(ctx context.Context) ([]*models.Movie, error) {
	return r.Filtered(ctx, models.ListFilters{})
}

// UpdateGenres replaces the stored genre list for a movie.
func (r *MovieRepository) UpdateGenres(ctx context.Context, id int64, genres []string) error {
	_, err := r.conn.ExecContext(ctx, "UPDATE movies SET genres = ? WHERE id = ?", encodeGenres(genres), id)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(i), Valid: i != 0}
}

func nullInt64(i int64) sql.NullInt64 {
	return sql.NullInt64{Int64: i, Valid: i != 0}
}
