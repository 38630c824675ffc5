package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 50 << 20 // 50 MB

// UploadHandler stores and serves uploaded files (workspace photos,
// dataset spreadsheets).
type UploadHandler struct {
	root string
}

// NewUploadHandler creates a handler rooted at the uploads directory.
func NewUploadHandler(root string) *UploadHandler {
	return &UploadHandler{root: root}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns the absolute path under the uploads dir.
func (h *UploadHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.root, cleaned)
	if !strings.HasPrefix(abs, h.root+string(os.PathSeparator)) && abs != h.root {
		return "", fmt.Errorf("path escapes uploads directory")
	}
	return abs, nil
}

// Save writes an uploaded file and returns its public URL path.
func (h *UploadHandler) Save(filename string, src io.Reader) (string, error) {
	abs, err := h.safeName(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(h.root, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	dst, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return "/uploads/" + filepath.Base(abs), nil
}

// ServeFile handles GET /uploads/{filename}.
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safeName(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
