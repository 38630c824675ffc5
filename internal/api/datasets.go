package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nordvik/vizdeck/internal/store"
)

// DatasetHandler holds the dataset upload bookkeeping handlers.
type DatasetHandler struct {
	db      *store.DB
	uploads *UploadHandler
}

// NewDatasetHandler creates a DatasetHandler.
func NewDatasetHandler(db *store.DB, uploads *UploadHandler) *DatasetHandler {
	return &DatasetHandler{db: db, uploads: uploads}
}

// Upload handles POST /datasets (multipart/form-data, field "file",
// optional "sheets" field carrying client-parsed sheet metadata JSON).
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	if _, err := h.uploads.Save(header.Filename, file); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	var sheets json.RawMessage
	if raw := r.FormValue("sheets"); raw != "" {
		if !json.Valid([]byte(raw)) {
			writeJSON(w, http.StatusBadRequest, errorBody("sheets must be valid JSON"))
			return
		}
		sheets = json.RawMessage(raw)
	}

	d := &store.Dataset{
		UserID:   currentUser(r),
		Filename: header.Filename,
		Size:     header.Size,
		Sheets:   sheets,
	}
	if err := h.db.CreateDataset(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"dataset": d})
}

// Get handles GET /datasets/{id}.
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.db.GetDataset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dataset": d})
}

// List handles GET /datasets for the calling user.
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = currentUser(r)
	}
	datasets, err := h.db.ListDatasets(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": datasets})
}
