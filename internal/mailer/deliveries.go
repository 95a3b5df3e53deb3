package mailer

import (
	"context"

	"github.com/gobarber/gobarber/libs/db"
)

// Delivery is the audit row kept per attempted cancellation email. The HTTP
// side never observes these; they exist for operators.
type Delivery struct {
	AppointmentID int64
	Recipient     string
	Status        string // sent | failed
	Reason        string
}

type DeliveryRepository struct {
	pool *db.Pool
}

func NewDeliveryRepository(pool *db.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

func (r *DeliveryRepository) Insert(ctx context.Context, d Delivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mail_deliveries (appointment_id, recipient, status, reason)
		VALUES ($1, $2, $3, $4)
	`, d.AppointmentID, d.Recipient, d.Status, d.Reason)
	return err
}
