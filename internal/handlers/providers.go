package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gobarber/gobarber/internal/storage"
)

type ProviderHandler struct {
	users   *storage.UserRepository
	logger  *slog.Logger
	baseURL string
}

func NewProviderHandler(users *storage.UserRepository, logger *slog.Logger, baseURL string) *ProviderHandler {
	return &ProviderHandler{
		users:   users,
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Index lists every account a client can book with.
func (h *ProviderHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	providers, err := h.users.ListProviders(r.Context())
	if err != nil {
		h.logger.Error("provider listing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	body := make([]providerJSON, 0, len(providers))
	for _, p := range providers {
		out := providerJSON{ID: p.ID, Name: p.Name}
		if p.Avatar != nil {
			out.Avatar = &avatarJSON{
				ID:   p.Avatar.ID,
				Path: p.Avatar.Path,
				URL:  h.baseURL + "/files/" + p.Avatar.Path,
			}
		}
		body = append(body, out)
	}
	writeJSON(w, http.StatusOK, body)
}
