package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nordvik/vizdeck/internal/diagram"
	"github.com/nordvik/vizdeck/internal/workspace"
)

// WorkspaceHandler holds the workspace route handlers.
type WorkspaceHandler struct {
	svc     *workspace.Service
	uploads *UploadHandler
}

// NewWorkspaceHandler creates a WorkspaceHandler.
func NewWorkspaceHandler(svc *workspace.Service, uploads *UploadHandler) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, uploads: uploads}
}

// Create handles POST /workspaces (multipart: name, description, photo file).
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return
	}

	name := r.FormValue("name")
	description := r.FormValue("description")

	photoURL := ""
	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		photoURL, err = h.uploads.Save(header.Filename, file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
	}

	ws, err := h.svc.Create(r.Context(), currentUser(r), name, description, photoURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"workspace": ws})
}

// List handles GET /workspaces with an optional user_id filter.
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.svc.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspaces": workspaces})
}

// Get handles GET /workspaces/{id}. Nodes' assigned item ids come back
// resolved to full report records.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspace": ws})
}

// Update handles PUT /workspaces/{id}.
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req struct {
		Name        *string              `json:"name"`
		Description *string              `json:"description"`
		Photo       *string              `json:"photo"`
		FlowDiagram *diagram.FlowDiagram `json:"flowDiagram"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	ws, err := h.svc.Update(r.Context(), currentUser(r), chi.URLParam(r, "id"), workspace.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Photo:       req.Photo,
		FlowDiagram: req.FlowDiagram,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspace": ws})
}

// Delete handles DELETE /workspaces/{id}.
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignItems handles POST /workspaces/{id}/nodes/{nodeID}/assignments.
func (h *WorkspaceHandler) AssignItems(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		AssignedItems []diagram.ItemID `json:"assignedItems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	out, err := h.svc.AssignItems(r.Context(), currentUser(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "nodeID"), req.AssignedItems)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

// DeleteNode handles DELETE /workspaces/{id}/nodes/{nodeID}.
func (h *WorkspaceHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.DeleteNode(r.Context(), currentUser(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "nodeID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
