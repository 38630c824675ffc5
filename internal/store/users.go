package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nordvik/vizdeck/internal/apperr"
)

// User is a registered account. Token is the API bearer token minted at
// registration; it is returned once on create and never listed afterwards.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUser registers a user and mints their API token.
func (db *DB) CreateUser(ctx context.Context, u *User) error {
	var existing string
	err := db.conn.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, u.Email).Scan(&existing)
	if err == nil {
		return fmt.Errorf("user %q: %w", u.Email, apperr.ErrAlreadyExists)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store: check user: %w", err)
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Token = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (id, name, email, token, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Token, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert user: %w", err)
	}
	return nil
}

// GetUser loads a user by id. The token is not included.
func (db *DB) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return &u, nil
}

// GetUserByToken resolves an API token to its user.
func (db *DB) GetUserByToken(ctx context.Context, token string) (*User, error) {
	var u User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE token = ?`, token).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user by token: %w", err)
	}
	return &u, nil
}
