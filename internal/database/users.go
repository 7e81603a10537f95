package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cinelog/models"
)

// UserRepository persists user accounts.
type UserRepository struct {
	conn *sql.DB
}

func NewUserRepository(conn *sql.DB) *UserRepository {
	return &UserRepository{conn: conn}
}

// GetByUsername returns the user with the given username, or nil when absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.conn.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at, last_login FROM users WHERE username = ?", username)
	return scanUser(row)
}

// Get returns the user with the given id, or nil when absent.
func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at, last_login FROM users WHERE id = ?", id)
	return scanUser(row)
}

// Create stores a new user and returns it with its id set.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username, passwordHash, now)
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
	return &models.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.conn.ExecContext(ctx, "UPDATE users SET last_login = ? WHERE id = ?", time.Now().UTC(), id)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}
