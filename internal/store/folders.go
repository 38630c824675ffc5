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

// Folder groups reports within a workspace. ReportIDs is derived from the
// reports' folder_id column on read; it is never written directly.
type Folder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	UserID      string    `json:"userId"`
	WorkspaceID string    `json:"workspaceId"`
	SavedType   string    `json:"savedType"`
	ReportIDs   []string  `json:"reportIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateFolder inserts a folder. Names are unique per user and workspace.
func (db *DB) CreateFolder(ctx context.Context, f *Folder) error {
	var existing string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM folders WHERE user_id = ? AND workspace_id = ? AND name = ?`,
		f.UserID, f.WorkspaceID, f.Name).Scan(&existing)
	if err == nil {
		return fmt.Errorf("folder %q: %w", f.Name, apperr.ErrAlreadyExists)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store: check folder: %w", err)
	}

	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.SavedType == "" {
		f.SavedType = "Folder"
	}
	f.CreatedAt = time.Now().UTC()
	f.ReportIDs = []string{}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO folders (id, user_id, workspace_id, name, saved_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.WorkspaceID, f.Name, f.SavedType, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: insert folder: %w", err)
	}
	return nil
}

// GetFolder loads a folder with its report ids.
func (db *DB) GetFolder(ctx context.Context, id string) (*Folder, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, workspace_id, name, saved_type, created_at FROM folders WHERE id = ?`, id)
	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %q: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := db.attachReportIDs(ctx, []*Folder{f}); err != nil {
		return nil, err
	}
	return f, nil
}

// UpdateFolder renames a folder.
func (db *DB) UpdateFolder(ctx context.Context, id, name string) error {
	ct, err := db.conn.ExecContext(ctx, `UPDATE folders SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("store: update folder: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("folder %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// DeleteFolder removes a folder and detaches its reports.
func (db *DB) DeleteFolder(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE reports SET folder_id = NULL WHERE folder_id = ?`, id); err != nil {
		return fmt.Errorf("store: detach folder reports: %w", err)
	}
	ct, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete folder: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("folder %q: %w", id, apperr.ErrNotFound)
	}
	return tx.Commit()
}

// ListFolders returns folders filtered by workspace and/or user. Empty
// filters match everything.
func (db *DB) ListFolders(ctx context.Context, workspaceID, userID string) ([]Folder, error) {
	q := `SELECT id, user_id, workspace_id, name, saved_type, created_at FROM folders WHERE 1=1`
	args := []any{}
	if workspaceID != "" {
		q += ` AND workspace_id = ?`
		args = append(args, workspaceID)
	}
	if userID != "" {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list folders: %w", err)
	}
	defer rows.Close()

	var refs []*Folder
	out := []Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
		refs = append(refs, &out[len(out)-1])
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := db.attachReportIDs(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

// SetReportFolder files a report under a folder, or detaches it when
// folderID is nil.
func (db *DB) SetReportFolder(ctx context.Context, reportID string, folderID *string) error {
	ct, err := db.conn.ExecContext(ctx,
		`UPDATE reports SET folder_id = ?, updated_at = ? WHERE id = ?`,
		folderID, time.Now().UTC(), reportID)
	if err != nil {
		return fmt.Errorf("store: set report folder: %w", err)
	}
	if n, _ := ct.RowsAffected(); n == 0 {
		return fmt.Errorf("report %q: %w", reportID, apperr.ErrNotFound)
	}
	return nil
}

func scanFolder(r rowScanner) (*Folder, error) {
	var f Folder
	if err := r.Scan(&f.ID, &f.UserID, &f.WorkspaceID, &f.Name, &f.SavedType, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.ReportIDs = []string{}
	return &f, nil
}

// attachReportIDs fills ReportIDs for the given folders with one query.
func (db *DB) attachReportIDs(ctx context.Context, folders []*Folder) error {
	if len(folders) == 0 {
		return nil
	}
	byID := make(map[string]*Folder, len(folders))
	args := make([]any, 0, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
		args = append(args, f.ID)
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, folder_id FROM reports WHERE folder_id IN (`+placeholders(len(args))+`) ORDER BY created_at`,
		args...)
	if err != nil {
		return fmt.Errorf("store: folder report ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var reportID, folderID string
		if err := rows.Scan(&reportID, &folderID); err != nil {
			return err
		}
		if f, ok := byID[folderID]; ok {
			f.ReportIDs = append(f.ReportIDs, reportID)
		}
	}
	return rows.Err()
}
