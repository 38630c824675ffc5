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
)

// Dataset records an uploaded spreadsheet: the bookkeeping row reports link
// to for their source data. Sheets holds client-parsed sheet metadata
// (names, columns) as an opaque JSON document.
type Dataset struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Filename  string          `json:"filename"`
	Size      int64           `json:"size"`
	Sheets    json.RawMessage `json:"sheets"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CreateDataset records an upload.
func (db *DB) CreateDataset(ctx context.Context, d *Dataset) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if len(d.Sheets) == 0 {
		d.Sheets = json.RawMessage(`[]`)
	}
	d.CreatedAt = time.Now().UTC()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO datasets (id, user_id, filename, size, sheets, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.Filename, d.Size, string(d.Sheets), d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert dataset: %w", err)
	}
	return nil
}

// GetDataset loads a dataset by id.
func (db *DB) GetDataset(ctx context.Context, id string) (*Dataset, error) {
	var d Dataset
	var sheets string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, filename, size, sheets, created_at FROM datasets WHERE id = ?`, id).
		Scan(&d.ID, &d.UserID, &d.Filename, &d.Size, &sheets, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %q: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get dataset: %w", err)
	}
	d.Sheets = json.RawMessage(sheets)
	return &d, nil
}

// ListDatasets returns a user's uploads, newest first.
func (db *DB) ListDatasets(ctx context.Context, userID string) ([]Dataset, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, filename, size, sheets, created_at FROM datasets
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list datasets: %w", err)
	}
	defer rows.Close()

	out := []Dataset{}
	for rows.Next() {
		var d Dataset
		var sheets string
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.Size, &sheets, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan dataset: %w", err)
		}
		d.Sheets = json.RawMessage(sheets)
		out = append(out, d)
	}
	return out, rows.Err()
}
