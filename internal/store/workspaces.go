package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nordvik/vizdeck/internal/apperr"
	"github.com/nordvik/vizdeck/internal/diagram"
)

// Workspace is a container owning one flow diagram and many reports/folders.
type Workspace struct {
	ID          string               `json:"id"`
	UserID      string               `json:"userId"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Photo       string               `json:"photo,omitempty"`
	FlowDiagram *diagram.FlowDiagram `json:"flowDiagram"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// CreateWorkspace inserts a workspace. A missing ID is generated.
func (db *DB) CreateWorkspace(ctx context.Context, w *Workspace) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	fd, err := json.Marshal(w.FlowDiagram)
	if err != nil {
		return fmt.Errorf("store: marshal flow diagram: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO workspaces (id, user_id, name, description, photo, flow_diagram, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.Name, w.Description, w.Photo, string(fd), w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert workspace: %w", err)
	}
	return nil
}

// GetWorkspace loads a workspace by id, including its embedded flow diagram.
func (db *DB) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, photo, flow_diagram, created_at, updated_at
		FROM workspaces WHERE id = ?`, id)
	w, err := scanWorkspace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workspace %q: %w", id, apperr.ErrNotFound)
	}
	return w, err
}

// UpdateWorkspace persists the full workspace document, diagram included.
func (db *DB) UpdateWorkspace(ctx context.Context, w *Workspace) error {
	w.UpdatedAt = time.Now().UTC()
	fd, err := json.Marshal(w.FlowDiagram)
	if err != nil {
		return fmt.Errorf("store: marshal flow diagram: %w", err)
	}
	ct, err := db.conn.ExecContext(ctx, `
		UPDATE workspaces
		SET name = ?, description = ?, photo = ?, flow_diagram = ?, updated_at = ?
		WHERE id = ?`,
		w.Name, w.Description, w.Photo, string(fd), w.UpdatedAt, w.ID,
	)
	if err != nil {
		return fmt.Errorf("store: update workspace: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("workspace %q: %w", w.ID, apperr.ErrNotFound)
	}
	return nil
}

// DeleteWorkspace removes a workspace document.
func (db *DB) DeleteWorkspace(ctx context.Context, id string) error {
	ct, err := db.conn.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete workspace: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("workspace %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// ListWorkspaces returns all workspaces, or only those owned by userID when
// it is non-empty, newest first.
func (db *DB) ListWorkspaces(ctx context.Context, userID string) ([]Workspace, error) {
	q := `SELECT id, user_id, name, description, photo, flow_diagram, created_at, updated_at
		FROM workspaces`
	args := []any{}
	if userID != "" {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list workspaces: %w", err)
	}
	defer rows.Close()

	out := []Workspace{}
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkspace(r rowScanner) (*Workspace, error) {
	var w Workspace
	var fd string
	if err := r.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.Photo, &fd, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.FlowDiagram = &diagram.FlowDiagram{}
	if err := json.Unmarshal([]byte(fd), w.FlowDiagram); err != nil {
		return nil, fmt.Errorf("store: decode flow diagram: %w", err)
	}
	return &w, nil
}
