package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gobarber/gobarber/internal/datefmt"
	"github.com/gobarber/gobarber/internal/model"
	"github.com/gobarber/gobarber/internal/outbox"
	"github.com/gobarber/gobarber/internal/storage"
)

// pageSize is fixed for appointment listings.
const pageSize = 20

// cancelWindow is how long before the appointment cancellation closes.
const cancelWindow = 2 * time.Hour

const appointmentCanceledTopic = "gobarber.appointment.canceled.v1"

// slotUnavailableMessage keeps the API contract's exact wording, historical
// misspelling included.
const slotUnavailableMessage = "Appointment date is not avaliable"

type AppointmentHandler struct {
	appointments  *storage.AppointmentRepository
	users         *storage.UserRepository
	notifications *storage.NotificationRepository
	outbox        *outbox.Repository
	logger        *slog.Logger
	baseURL       string
}

func NewAppointmentHandler(
	appointments *storage.AppointmentRepository,
	users *storage.UserRepository,
	notifications *storage.NotificationRepository,
	outboxRepo *outbox.Repository,
	logger *slog.Logger,
	baseURL string,
) *AppointmentHandler {
	return &AppointmentHandler{
		appointments:  appointments,
		users:         users,
		notifications: notifications,
		outbox:        outboxRepo,
		logger:        logger,
		baseURL:       strings.TrimRight(baseURL, "/"),
	}
}

type createAppointmentRequest struct {
	ProviderID int64  `json:"provider_id"`
	Date       string `json:"date"`
}

type avatarJSON struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

type providerJSON struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Avatar *avatarJSON `json:"avatar"`
}

type appointmentListItem struct {
	ID       int64        `json:"id"`
	Date     time.Time    `json:"date"`
	Provider providerJSON `json:"provider"`
}

type appointmentJSON struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	ProviderID int64      `json:"provider_id"`
	Date       time.Time  `json:"date"`
	CanceledAt *time.Time `json:"canceled_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func appointmentBody(a model.Appointment) appointmentJSON {
	return appointmentJSON{
		ID:         a.ID,
		UserID:     a.UserID,
		ProviderID: a.ProviderID,
		Date:       a.Date,
		CanceledAt: a.CanceledAt,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// Collection serves the /appointments route.
func (h *AppointmentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Item serves /appointments/{id}; only cancellation is exposed.
func (h *AppointmentHandler) Item(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/appointments/"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	h.cancel(w, r, id)
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := CallerID(r.Context())
	page := parsePage(r.URL.Query().Get("page"))

	items, err := h.appointments.ListActiveByUser(r.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.logger.Error("appointment listing failed", "err", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	body := make([]appointmentListItem, 0, len(items))
	for _, item := range items {
		out := appointmentListItem{
			ID:   item.ID,
			Date: item.Date,
			Provider: providerJSON{
				ID:   item.Provider.ID,
				Name: item.Provider.Name,
			},
		}
		if item.Provider.Avatar != nil {
			out.Provider.Avatar = h.avatarBody(*item.Provider.Avatar)
		}
		body = append(body, out)
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *AppointmentHandler) create(w http.ResponseWriter, r *http.Request) {
	userID := CallerID(r.Context())

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProviderID <= 0 {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	date, err := parseBookingDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	ctx := r.Context()
	provider, err := h.users.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "User is not a provider")
			return
		}
		h.logger.Error("provider lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hourStart := datefmt.StartOfHour(date)
	if hourStart.Before(time.Now()) {
		writeError(w, http.StatusBadRequest, "Past dates are not permitted")
		return
	}

	tx, err := h.appointments.Begin(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	taken, err := h.appointments.SlotTaken(ctx, tx, provider.ID, hourStart)
	if err != nil {
		h.logger.Error("availability check failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if taken {
		writeError(w, http.StatusBadRequest, slotUnavailableMessage)
		return
	}

	appt := model.Appointment{
		UserID:     userID,
		ProviderID: provider.ID,
		Date:       hourStart,
	}
	if err := h.appointments.Create(ctx, tx, &appt); err != nil {
		// Two requests can pass SlotTaken concurrently; the partial unique
		// index decides the loser.
		if storage.IsUniqueViolation(err) {
			writeError(w, http.StatusBadRequest, slotUnavailableMessage)
			return
		}
		h.logger.Error("appointment insert failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("appointment commit failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.notifyProvider(r, appt)

	writeJSON(w, http.StatusOK, appointmentBody(appt))
}

// notifyProvider records the in-app booking notification. Best-effort: the
// appointment is already committed, so a failure here is logged and the
// request still succeeds.
func (h *AppointmentHandler) notifyProvider(r *http.Request, appt model.Appointment) {
	ctx := r.Context()
	client, err := h.users.GetByID(ctx, appt.UserID)
	if err != nil {
		h.logger.Warn("booking notification skipped", "err", err, "appointment_id", appt.ID)
		return
	}
	n := model.Notification{
		Content: fmt.Sprintf("Novo agendamento de %s para %s", client.Name, datefmt.Long(appt.Date)),
		UserID:  appt.ProviderID,
	}
	if err := h.notifications.Create(ctx, &n); err != nil {
		h.logger.Warn("booking notification failed", "err", err, "appointment_id", appt.ID)
	}
}

func (h *AppointmentHandler) cancel(w http.ResponseWriter, r *http.Request, id int64) {
	userID := CallerID(r.Context())
	ctx := r.Context()

	tx, err := h.appointments.Begin(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	detail, err := h.appointments.GetDetailForUpdate(ctx, tx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}
		h.logger.Error("appointment load failed", "err", err, "appointment_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if status, msg := cancelRejection(detail, userID, time.Now()); status != 0 {
		writeError(w, status, msg)
		return
	}

	canceledAt, err := h.appointments.Cancel(ctx, tx, id)
	if err != nil {
		h.logger.Error("appointment cancel failed", "err", err, "appointment_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	detail.CanceledAt = &canceledAt

	// Mail goes through the outbox inside the same transaction: the email
	// job exists if and only if the cancellation is durable.
	payload, err := json.Marshal(map[string]any{
		"appointment_id": detail.ID,
		"date":           detail.Date.UTC().Format(time.RFC3339),
		"canceled_at":    canceledAt.UTC().Format(time.RFC3339),
		"provider": map[string]string{
			"name":  detail.ProviderName,
			"email": detail.ProviderEmail,
		},
		"user": map[string]string{
			"name": detail.UserName,
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   strconv.FormatInt(detail.ID, 10),
		EventType:     appointmentCanceledTopic,
		Payload:       payload,
	}); err != nil {
		h.logger.Error("cancellation event enqueue failed", "err", err, "appointment_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("cancellation commit failed", "err", err, "appointment_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, appointmentBody(detail.Appointment))
}

func (h *AppointmentHandler) avatarBody(a model.Avatar) *avatarJSON {
	return &avatarJSON{
		ID:   a.ID,
		Path: a.Path,
		URL:  h.baseURL + "/files/" + a.Path,
	}
}

// parsePage clamps to 1 on absent or malformed input so the offset never
// goes negative.
func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parseBookingDate accepts ISO-8601 timestamps with or without a zone
// offset; offset-less input is read as server-local time.
func parseBookingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", raw, time.Local)
}

// cancelable reports whether more than cancelWindow remains before date.
func cancelable(date, now time.Time) bool {
	return now.Before(date.Add(-cancelWindow))
}

// cancelRejection applies the cancellation gates in order: ownership, then
// active state, then the time window. A zero status means the cancellation
// may proceed.
func cancelRejection(detail model.AppointmentDetail, callerID int64, now time.Time) (int, string) {
	if detail.UserID != callerID {
		return http.StatusUnauthorized, "You don't have permission to cancel this appointment"
	}
	if detail.Canceled() {
		return http.StatusBadRequest, "Appointment is already canceled"
	}
	if !cancelable(detail.Date, now) {
		return http.StatusUnauthorized, "You can only cancel appointments 2 hours in advance"
	}
	return 0, ""
}
