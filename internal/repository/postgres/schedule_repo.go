package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/faithadeola/TrustRail/internal/domain/application"
)

type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// CreatePlan writes the down payment marker (number 0) and all amortization
// rows for an approved installment application in one transaction.
func (r *ScheduleRepository) CreatePlan(ctx context.Context, applicationID string, downPayment decimal.Decimal, items []application.PlanInstallment) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		q := `
INSERT INTO payment_schedules (application_id, number, due_date, amount, status)
VALUES ($1, $2, $3, $4, 'pending')
`
		if downPayment.IsPositive() {
			if _, err := tx.Exec(ctx, q, applicationID, 0, time.Now().UTC(), downPayment); err != nil {
				return err
			}
		}
		for _, item := range items {
			if _, err := tx.Exec(ctx, q, applicationID, item.Number, item.DueDate, item.Amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// SettleNextInstallment marks the earliest pending row paid or missed.
func (r *ScheduleRepository) SettleNextInstallment(ctx context.Context, applicationID string, paid bool, at time.Time) error {
	status := "missed"
	if paid {
		status = "paid"
	}
	q := `
UPDATE payment_schedules
SET status = $2, settled_at = $3
WHERE id = (
  SELECT id FROM payment_schedules
  WHERE application_id = $1 AND status = 'pending'
  ORDER BY number ASC
  LIMIT 1
)
`
	_, err := r.pool.Exec(ctx, q, applicationID, status, at)
	return err
}
