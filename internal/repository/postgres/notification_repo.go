package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faithadeola/TrustRail/internal/domain/notification"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, in notification.CreateInput) (*notification.Entity, error) {
	q := `
INSERT INTO notifications (business_id, type, title, message)
VALUES ($1, $2, $3, $4)
RETURNING id, business_id, type, title, message, read, created_at
`
	out := &notification.Entity{}
	err := r.pool.QueryRow(ctx, q, in.BusinessID, in.Type, in.Title, in.Message).Scan(
		&out.ID, &out.BusinessID, &out.Type, &out.Title, &out.Message, &out.Read, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NotificationRepository) ListByBusiness(ctx context.Context, businessID string, unreadOnly bool, limit, offset int32) ([]notification.Entity, error) {
	q := `
SELECT id, business_id, type, title, message, read, created_at
FROM notifications
WHERE business_id = $1 AND ($2 = false OR read = false)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`
	rows, err := r.pool.Query(ctx, q, businessID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notification.Entity, 0)
	for rows.Next() {
		var item notification.Entity
		if err := rows.Scan(&item.ID, &item.BusinessID, &item.Type, &item.Title, &item.Message, &item.Read, &item.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, businessID string, id int64) error {
	q := `UPDATE notifications SET read = true WHERE business_id = $1 AND id = $2`
	tag, err := r.pool.Exec(ctx, q, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, businessID string) error {
	q := `UPDATE notifications SET read = true WHERE business_id = $1 AND read = false`
	_, err := r.pool.Exec(ctx, q, businessID)
	return err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, businessID string) (int64, error) {
	q := `SELECT COUNT(*)::bigint FROM notifications WHERE business_id = $1 AND read = false`
	var count int64
	if err := r.pool.QueryRow(ctx, q, businessID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListSince feeds the websocket notifier with rows created after lastID.
func (r *NotificationRepository) ListSince(ctx context.Context, lastID int64, limit int32) ([]notification.Entity, error) {
	q := `
SELECT id, business_id, type, title, message, read, created_at
FROM notifications
WHERE id > $1
ORDER BY id ASC
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, lastID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notification.Entity, 0)
	for rows.Next() {
		var item notification.Entity
		if err := rows.Scan(&item.ID, &item.BusinessID, &item.Type, &item.Title, &item.Message, &item.Read, &item.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
