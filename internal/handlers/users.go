package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/gobarber/gobarber/internal/model"
	"github.com/gobarber/gobarber/internal/storage"
)

const minPasswordLen = 6

type UserHandler struct {
	users  *storage.UserRepository
	files  *storage.FileRepository
	logger *slog.Logger
}

func NewUserHandler(users *storage.UserRepository, files *storage.FileRepository, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, files: files, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Provider bool   `json:"provider"`
}

type updateUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	OldPassword     string `json:"old_password"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AvatarID        *int64 `json:"avatar_id"`
}

type userJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Provider bool   `json:"provider"`
}

func userBody(u model.User) userJSON {
	return userJSON{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Provider: u.Provider,
	}
}

// Store registers an account. Open route.
func (h *UserHandler) Store(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || !validEmail(req.Email) || len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hashing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Provider:     req.Provider,
	}
	if err := h.users.Create(r.Context(), &user); err != nil {
		if storage.IsUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.logger.Error("user insert failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, userBody(user))
}

// Update edits the caller's profile. Email changes re-check uniqueness;
// password changes require the current password.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := CallerID(r.Context())

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Email != "" && !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLen || req.Password != req.ConfirmPassword || req.OldPassword == "" {
			writeError(w, http.StatusBadRequest, "Validation fails")
			return
		}
	}

	ctx := r.Context()
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.logger.Error("user load failed", "err", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if req.Email != "" && req.Email != user.Email {
		if _, err := h.users.GetByEmail(ctx, req.Email); err == nil {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		} else if !storage.IsNotFound(err) {
			h.logger.Error("email lookup failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		user.Email = req.Email
	}

	if req.Password != "" {
		if err := verifyPassword(user.PasswordHash, req.OldPassword); err != nil {
			writeError(w, http.StatusUnauthorized, "Password does not match")
			return
		}
		hash, err := hashPassword(req.Password)
		if err != nil {
			h.logger.Error("password hashing failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		user.PasswordHash = hash
	}

	if req.Name != "" {
		user.Name = req.Name
	}

	if req.AvatarID != nil {
		if _, err := h.files.GetByID(ctx, *req.AvatarID); err != nil {
			if storage.IsNotFound(err) {
				writeError(w, http.StatusBadRequest, "File not found")
				return
			}
			h.logger.Error("avatar lookup failed", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		user.AvatarID = req.AvatarID
	}

	if err := h.users.Update(ctx, &user); err != nil {
		if storage.IsUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.logger.Error("user update failed", "err", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, userBody(user))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
