package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ImagesHandler serves reference face images from the enrollment directory.
type ImagesHandler struct {
	dir string
}

// NewImagesHandler creates a new images handler serving files from dir.
func NewImagesHandler(dir string) *ImagesHandler {
	return &ImagesHandler{dir: dir}
}

// Get serves one image by file name. The name must be a bare file name;
// anything containing a path separator or a dot-dot segment is rejected.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		respondError(w, http.StatusBadRequest, "invalid image name")
		return
	}

	path := filepath.Join(h.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}

	http.ServeFile(w, r, path)
}
