package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gobarber/gobarber/internal/model"
	"github.com/gobarber/gobarber/libs/db"
)

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// ListActiveByUser returns the caller's non-canceled appointments in
// ascending date order, with the provider identity and avatar joined.
func (r *AppointmentRepository) ListActiveByUser(ctx context.Context, userID int64, limit, offset int) ([]model.AppointmentSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.date, p.id, p.name, f.id, f.path
		FROM appointments a
		JOIN users p ON p.id = a.provider_id
		LEFT JOIN files f ON f.id = p.avatar_id
		WHERE a.user_id = $1 AND a.canceled_at IS NULL
		ORDER BY a.date ASC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.AppointmentSummary
	for rows.Next() {
		var item model.AppointmentSummary
		var avatarID *int64
		var avatarPath *string
		if err := rows.Scan(&item.ID, &item.Date, &item.Provider.ID, &item.Provider.Name, &avatarID, &avatarPath); err != nil {
			return nil, err
		}
		if avatarID != nil && avatarPath != nil {
			item.Provider.Avatar = &model.Avatar{ID: *avatarID, Path: *avatarPath}
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// SlotTaken reports whether an active appointment already occupies the
// provider's hour. It is an early exit only: the partial unique index on
// (provider_id, date) is what actually guarantees the invariant under
// concurrent bookings.
func (r *AppointmentRepository) SlotTaken(ctx context.Context, tx pgx.Tx, providerID int64, date time.Time) (bool, error) {
	var taken bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE provider_id = $1 AND date = $2 AND canceled_at IS NULL
		)
	`, providerID, date).Scan(&taken)
	return taken, err
}

func (r *AppointmentRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) error {
	return tx.QueryRow(ctx, `
		INSERT INTO appointments (user_id, provider_id, date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, appt.UserID, appt.ProviderID, appt.Date).
		Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
}

// GetDetailForUpdate loads an appointment with the joined provider
// (name, email) and owning user (name), locking the row for the
// cancellation transaction.
func (r *AppointmentRepository) GetDetailForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.AppointmentDetail, error) {
	var d model.AppointmentDetail
	err := tx.QueryRow(ctx, `
		SELECT a.id, a.user_id, a.provider_id, a.date, a.canceled_at, a.created_at, a.updated_at,
			p.name, p.email, u.name
		FROM appointments a
		JOIN users p ON p.id = a.provider_id
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
		FOR UPDATE OF a
	`, id).Scan(
		&d.ID,
		&d.UserID,
		&d.ProviderID,
		&d.Date,
		&d.CanceledAt,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.ProviderName,
		&d.ProviderEmail,
		&d.UserName,
	)
	if err != nil {
		return model.AppointmentDetail{}, err
	}
	return d, nil
}

// Cancel marks an active appointment canceled. Returns pgx.ErrNoRows when
// the appointment is already canceled, so the Active -> Canceled transition
// fires at most once.
func (r *AppointmentRepository) Cancel(ctx context.Context, tx pgx.Tx, id int64) (time.Time, error) {
	var canceledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET canceled_at = now(),
			updated_at = now()
		WHERE id = $1 AND canceled_at IS NULL
		RETURNING canceled_at
	`, id).Scan(&canceledAt)
	return canceledAt, err
}

// ListDayForProvider returns a provider's active appointments within
// [dayStart, dayEnd), oldest first, with the client name joined.
func (r *AppointmentRepository) ListDayForProvider(ctx context.Context, providerID int64, dayStart, dayEnd time.Time) ([]model.ScheduleItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.date, u.name
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		WHERE a.provider_id = $1
			AND a.canceled_at IS NULL
			AND a.date >= $2
			AND a.date < $3
		ORDER BY a.date ASC
	`, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ScheduleItem
	for rows.Next() {
		var item model.ScheduleItem
		if err := rows.Scan(&item.ID, &item.Date, &item.UserName); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
