package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gobarber/gobarber/internal/model"
	"github.com/gobarber/gobarber/internal/storage"
)

// maxUploadBytes caps a single avatar upload.
const maxUploadBytes = 2 << 20

type FileHandler struct {
	files      *storage.FileRepository
	logger     *slog.Logger
	storageDir string
	baseURL    string
}

func NewFileHandler(files *storage.FileRepository, logger *slog.Logger, storageDir, baseURL string) *FileHandler {
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		logger.Error("upload dir create failed", "err", err, "dir", storageDir)
	}
	return &FileHandler{
		files:      files,
		logger:     logger,
		storageDir: storageDir,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type fileJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Store accepts a multipart avatar upload. The file lands on disk under a
// random name; the original name is kept as metadata only.
func (h *FileHandler) Store(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	src, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	defer src.Close()

	if header.Size > maxUploadBytes {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(h.storageDir, storedName))
	if err != nil {
		h.logger.Error("avatar write failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, maxUploadBytes)); err != nil {
		h.logger.Error("avatar write failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	file := model.File{
		Name: header.Filename,
		Path: storedName,
	}
	if err := h.files.Create(r.Context(), &file); err != nil {
		h.logger.Error("file insert failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, fileJSON{
		ID:   file.ID,
		Name: file.Name,
		Path: file.Path,
		URL:  h.baseURL + "/files/" + file.Path,
	})
}

// Serve exposes stored avatars under /files/.
func (h *FileHandler) Serve() http.Handler {
	return http.StripPrefix("/files/", http.FileServer(http.Dir(h.storageDir)))
}
