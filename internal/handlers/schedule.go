package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gobarber/gobarber/internal/storage"
)

type ScheduleHandler struct {
	appointments *storage.AppointmentRepository
	users        *storage.UserRepository
	logger       *slog.Logger
}

func NewScheduleHandler(appointments *storage.AppointmentRepository, users *storage.UserRepository, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		appointments: appointments,
		users:        users,
		logger:       logger,
	}
}

type scheduleItem struct {
	ID   int64     `json:"id"`
	Date time.Time `json:"date"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

// Index shows a provider their own day: every active appointment booked
// against them for the requested date.
func (h *ScheduleHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := CallerID(r.Context())
	caller, err := h.users.GetProvider(r.Context(), userID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "User is not a provider")
			return
		}
		h.logger.Error("provider lookup failed", "err", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	day, err := parseScheduleDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	items, err := h.appointments.ListDayForProvider(r.Context(), caller.ID, day, day.AddDate(0, 0, 1))
	if err != nil {
		h.logger.Error("schedule listing failed", "err", err, "provider_id", caller.ID)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	body := make([]scheduleItem, 0, len(items))
	for _, item := range items {
		var out scheduleItem
		out.ID = item.ID
		out.Date = item.Date
		out.User.Name = item.UserName
		body = append(body, out)
	}
	writeJSON(w, http.StatusOK, body)
}

// parseScheduleDate accepts a plain date or a full timestamp and returns
// the start of that day in UTC.
func parseScheduleDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
