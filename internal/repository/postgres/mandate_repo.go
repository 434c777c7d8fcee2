package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MandateRepository struct {
	pool *pgxpool.Pool
}

func NewMandateRepository(pool *pgxpool.Pool) *MandateRepository {
	return &MandateRepository{pool: pool}
}

func (r *MandateRepository) Create(ctx context.Context, applicationID, providerRef, status string) error {
	q := `
INSERT INTO payment_mandates (application_id, provider_ref, status)
VALUES ($1, $2, $3)
ON CONFLICT (application_id)
DO UPDATE SET provider_ref = EXCLUDED.provider_ref, status = EXCLUDED.status, updated_at = NOW()
`
	_, err := r.pool.Exec(ctx, q, applicationID, providerRef, status)
	return err
}
