package storage

import (
	"context"

	"github.com/gobarber/gobarber/internal/model"
	"github.com/gobarber/gobarber/libs/db"
)

// NotificationRepository appends provider-facing notifications. Nothing in
// this service reads them back; the mobile client does.
type NotificationRepository struct {
	pool *db.Pool
}

func NewNotificationRepository(pool *db.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO notifications (content, user_id)
		VALUES ($1, $2)
		RETURNING id, read, created_at
	`, n.Content, n.UserID).Scan(&n.ID, &n.Read, &n.CreatedAt)
}
