package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nordvik/vizdeck/internal/store"
)

// UserHandler holds the user route handlers.
type UserHandler struct {
	db *store.DB
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(db *store.DB) *UserHandler {
	return &UserHandler{db: db}
}

// Register handles POST /users. The response includes the freshly minted
// API token; it is not retrievable afterwards.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name and email are required"))
		return
	}

	u := &store.User{Name: req.Name, Email: req.Email}
	if err := h.db.CreateUser(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.db.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}
