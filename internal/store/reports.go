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

// Report is an assignable item: a saved visual report. NodeID mirrors the
// owning flow-diagram node and is nil while the report sits outside the
// pipeline. Payload is the opaque chart/shape/text document authored by the
// client; the backend never interprets it.
type Report struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UserID      string          `json:"userId"`
	WorkspaceID string          `json:"workspaceId"`
	FolderID    *string         `json:"folderId"`
	DatasetID   *string         `json:"datasetId"`
	NodeID      *string         `json:"nodeId"`
	SavedType   string          `json:"savedType,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

const reportCols = `id, name, user_id, workspace_id, folder_id, dataset_id, node_id, saved_type, payload, created_at, updated_at`

// CreateReport inserts a report. A missing ID is generated.
func (db *DB) CreateReport(ctx context.Context, r *Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if len(r.Payload) == 0 {
		r.Payload = json.RawMessage(`{}`)
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO reports (`+reportCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.UserID, r.WorkspaceID, r.FolderID, r.DatasetID, r.NodeID,
		r.SavedType, string(r.Payload), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert report: %w", err)
	}
	return nil
}

// GetReport loads a single report by id.
func (db *DB) GetReport(ctx context.Context, id string) (*Report, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+reportCols+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %q: %w", id, apperr.ErrNotFound)
	}
	return r, err
}

// UpdateReport replaces a report's mutable fields.
func (db *DB) UpdateReport(ctx context.Context, r *Report) error {
	r.UpdatedAt = time.Now().UTC()
	if len(r.Payload) == 0 {
		r.Payload = json.RawMessage(`{}`)
	}
	ct, err := db.conn.ExecContext(ctx, `
		UPDATE reports
		SET name = ?, folder_id = ?, dataset_id = ?, saved_type = ?, payload = ?, updated_at = ?
		WHERE id = ?`,
		r.Name, r.FolderID, r.DatasetID, r.SavedType, string(r.Payload), r.UpdatedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("store: update report: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("report %q: %w", r.ID, apperr.ErrNotFound)
	}
	return nil
}

// DeleteReport removes a report.
func (db *DB) DeleteReport(ctx context.Context, id string) error {
	ct, err := db.conn.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete report: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("report %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// FindReportsByIDs fetches the reports whose ids appear in the given set.
// Ids with no matching row are silently absent from the result.
func (db *DB) FindReportsByIDs(ctx context.Context, ids []string) ([]Report, error) {
	if len(ids) == 0 {
		return []Report{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reportCols+` FROM reports WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: find reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

// SetReportNodeID bulk-updates the node back-reference for every report in
// ids. A nil nodeID marks the reports unassigned.
func (db *DB) SetReportNodeID(ctx context.Context, ids []string, nodeID *string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+2)
	args = append(args, nodeID, time.Now().UTC())
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := db.conn.ExecContext(ctx,
		`UPDATE reports SET node_id = ?, updated_at = ? WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return fmt.Errorf("store: set report node: %w", err)
	}
	return nil
}

// ListReportsByWorkspace returns a workspace's reports, newest first.
func (db *DB) ListReportsByWorkspace(ctx context.Context, workspaceID string) ([]Report, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reportCols+` FROM reports WHERE workspace_id = ? ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("store: list reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

// SearchReports matches report names against a substring query, optionally
// scoped to a workspace. Matching is case-insensitive.
func (db *DB) SearchReports(ctx context.Context, workspaceID, query string, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + reportCols + ` FROM reports WHERE name LIKE ? COLLATE NOCASE`
	args := []any{"%" + query + "%"}
	if workspaceID != "" {
		q += ` AND workspace_id = ?`
		args = append(args, workspaceID)
	}
	q += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

// ListReportsByFolder returns the reports filed under a folder.
func (db *DB) ListReportsByFolder(ctx context.Context, folderID string) ([]Report, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reportCols+` FROM reports WHERE folder_id = ? ORDER BY created_at DESC`, folderID)
	if err != nil {
		return nil, fmt.Errorf("store: list folder reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

func scanReport(r rowScanner) (*Report, error) {
	var rep Report
	var payload string
	if err := r.Scan(&rep.ID, &rep.Name, &rep.UserID, &rep.WorkspaceID, &rep.FolderID,
		&rep.DatasetID, &rep.NodeID, &rep.SavedType, &payload, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
		return nil, err
	}
	rep.Payload = json.RawMessage(payload)
	return &rep, nil
}

func collectReports(rows *sql.Rows) ([]Report, error) {
	out := []Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan report: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
