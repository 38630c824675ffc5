package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nordvik/vizdeck/internal/store"
	"github.com/nordvik/vizdeck/internal/workspace"
)

// ReportHandler holds the report route handlers.
type ReportHandler struct {
	db     *store.DB
	notify workspace.NotifyFunc
}

// NewReportHandler creates a ReportHandler. notify may be nil.
func NewReportHandler(db *store.DB, notify workspace.NotifyFunc) *ReportHandler {
	if notify == nil {
		notify = func(string, string) {}
	}
	return &ReportHandler{db: db, notify: notify}
}

type reportRequest struct {
	Name        string          `json:"name"`
	WorkspaceID string          `json:"workspaceId"`
	FolderID    *string         `json:"folderId"`
	DatasetID   *string         `json:"datasetId"`
	SavedType   string          `json:"savedType"`
	Payload     json.RawMessage `json:"payload"`
}

// Create handles POST /reports.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" || req.WorkspaceID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name and workspaceId are required"))
		return
	}

	rep := &store.Report{
		Name:        req.Name,
		UserID:      currentUser(r),
		WorkspaceID: req.WorkspaceID,
		FolderID:    req.FolderID,
		DatasetID:   req.DatasetID,
		SavedType:   req.SavedType,
		Payload:     req.Payload,
	}
	if err := h.db.CreateReport(r.Context(), rep); err != nil {
		writeError(w, err)
		return
	}
	h.notify("report.saved", rep.WorkspaceID)
	writeJSON(w, http.StatusCreated, map[string]any{"report": rep})
}

// Get handles GET /reports/{id}.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.db.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": rep})
}

// Update handles PUT /reports/{id}.
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	rep, err := h.db.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Name != "" {
		rep.Name = req.Name
	}
	if req.FolderID != nil {
		rep.FolderID = req.FolderID
	}
	if req.DatasetID != nil {
		rep.DatasetID = req.DatasetID
	}
	if req.SavedType != "" {
		rep.SavedType = req.SavedType
	}
	if len(req.Payload) > 0 {
		rep.Payload = req.Payload
	}
	if err := h.db.UpdateReport(r.Context(), rep); err != nil {
		writeError(w, err)
		return
	}
	h.notify("report.saved", rep.WorkspaceID)
	writeJSON(w, http.StatusOK, map[string]any{"report": rep})
}

// Delete handles DELETE /reports/{id}.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteReport(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListByWorkspace handles GET /workspaces/{id}/reports.
func (h *ReportHandler) ListByWorkspace(w http.ResponseWriter, r *http.Request) {
	reports, err := h.db.ListReportsByWorkspace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}
