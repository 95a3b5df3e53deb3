package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gobarber/gobarber/internal/storage"
	"github.com/gobarber/gobarber/libs/auth"
)

type SessionHandler struct {
	users     *storage.UserRepository
	logger    *slog.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewSessionHandler(users *storage.UserRepository, logger *slog.Logger, jwtSecret string, tokenTTL time.Duration) *SessionHandler {
	return &SessionHandler{
		users:     users,
		logger:    logger,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

type sessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  userJSON `json:"user"`
	Token string   `json:"token"`
}

// Store authenticates email/password and issues the access token.
func (h *SessionHandler) Store(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "User not found")
			return
		}
		h.logger.Error("user lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := verifyPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Password does not match")
		return
	}

	now := time.Now()
	token, err := auth.SignHS256(auth.Claims{
		Sub:  strconv.FormatInt(user.ID, 10),
		Name: user.Name,
		Iat:  now.Unix(),
		Exp:  now.Add(h.tokenTTL).Unix(),
	}, h.jwtSecret)
	if err != nil {
		h.logger.Error("token signing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:  userBody(user),
		Token: token,
	})
}
