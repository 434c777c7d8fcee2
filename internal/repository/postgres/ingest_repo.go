package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faithadeola/TrustRail/internal/ingest"
)

// IngestRepository implements both the event queue and the transaction
// projection consumed by the ingest loop.
type IngestRepository struct {
	pool *pgxpool.Pool
}

func NewIngestRepository(pool *pgxpool.Pool) *IngestRepository {
	return &IngestRepository{pool: pool}
}

func (r *IngestRepository) Insert(ctx context.Context, ev ingest.PaymentEvent) error {
	q := `
INSERT INTO payment_events (event_name, application_id, amount, occurred_at, raw_data)
VALUES ($1, $2, $3, $4, $5::jsonb)
`
	raw := ev.RawData
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	_, err := r.pool.Exec(ctx, q, ev.EventName, ev.ApplicationID, ev.Amount, ev.OccurredAt, raw)
	return err
}

func (r *IngestRepository) ListUnprocessed(ctx context.Context, limit int32) ([]ingest.PaymentEvent, error) {
	q := `
SELECT id, event_name, application_id, amount, occurred_at, raw_data
FROM payment_events
WHERE processed = false
ORDER BY id ASC
LIMIT $1
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ingest.PaymentEvent, 0)
	for rows.Next() {
		var ev ingest.PaymentEvent
		if err := rows.Scan(&ev.ID, &ev.EventName, &ev.ApplicationID, &ev.Amount, &ev.OccurredAt, &ev.RawData); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *IngestRepository) MarkProcessed(ctx context.Context, eventID int64) error {
	q := `UPDATE payment_events SET processed = true WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, eventID)
	return err
}

// ProjectionStore combines the transaction projection with schedule
// settlement so the ingest loop can treat them as one dependency.
type ProjectionStore struct {
	*IngestRepository
	*ScheduleRepository
}

func NewProjectionStore(pool *pgxpool.Pool) *ProjectionStore {
	return &ProjectionStore{
		IngestRepository:   NewIngestRepository(pool),
		ScheduleRepository: NewScheduleRepository(pool),
	}
}

func (r *IngestRepository) InsertTransaction(ctx context.Context, tx ingest.TransactionRecord) error {
	q := `
INSERT INTO transactions (business_id, application_id, customer_hash, amount, status, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.pool.Exec(ctx, q, tx.BusinessID, tx.ApplicationID, tx.CustomerHash, tx.Amount, tx.Status, tx.OccurredAt)
	return err
}
