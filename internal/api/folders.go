package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nordvik/vizdeck/internal/store"
)

// FolderHandler holds the folder route handlers.
type FolderHandler struct {
	db *store.DB
}

// NewFolderHandler creates a FolderHandler.
func NewFolderHandler(db *store.DB) *FolderHandler {
	return &FolderHandler{db: db}
}

// Create handles POST /folders.
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		WorkspaceID string `json:"workspaceId"`
		SavedType   string `json:"savedType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" || req.WorkspaceID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name and workspaceId are required"))
		return
	}

	f := &store.Folder{
		Name:        req.Name,
		UserID:      currentUser(r),
		WorkspaceID: req.WorkspaceID,
		SavedType:   req.SavedType,
	}
	if err := h.db.CreateFolder(r.Context(), f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"folder": f})
}

// Get handles GET /folders/{id}.
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.db.GetFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folder": f})
}

// List handles GET /folders with workspace_id and user_id filters.
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	folders, err := h.db.ListFolders(r.Context(), q.Get("workspace_id"), q.Get("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// ListByWorkspace handles GET /workspaces/{id}/folders.
func (h *FolderHandler) ListByWorkspace(w http.ResponseWriter, r *http.Request) {
	folders, err := h.db.ListFolders(r.Context(), chi.URLParam(r, "id"), "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// Update handles PUT /folders/{id} (rename).
func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	if err := h.db.UpdateFolder(r.Context(), chi.URLParam(r, "id"), req.Name); err != nil {
		writeError(w, err)
		return
	}
	f, err := h.db.GetFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folder": f})
}

// Delete handles DELETE /folders/{id}. Reports inside are detached, not
// deleted.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteFolder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddReport handles POST /folders/{id}/reports.
func (h *FolderHandler) AddReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReportID string `json:"reportId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReportID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("reportId is required"))
		return
	}
	folderID := chi.URLParam(r, "id")
	if _, err := h.db.GetFolder(r.Context(), folderID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.db.SetReportFolder(r.Context(), req.ReportID, &folderID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveReport handles DELETE /folders/{id}/reports/{reportID}.
func (h *FolderHandler) RemoveReport(w http.ResponseWriter, r *http.Request) {
	if err := h.db.SetReportFolder(r.Context(), chi.URLParam(r, "reportID"), nil); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReports handles GET /folders/{id}/reports.
func (h *FolderHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.db.ListReportsByFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}
