package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/faithadeola/TrustRail/internal/domain/customer"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `
business_id, customer_hash, name, email, phone,
total_payments, successful_payments, consecutive_failures, application_count,
average_trust_score, running_score, tier, total_amount_paid, active_plans,
last_payment_date, created_at, updated_at`

// UpsertOnApplication folds a new application into the aggregate: the
// running mean of trust scores moves, the application count increments, and
// approved applications open a plan.
func (r *CustomerRepository) UpsertOnApplication(ctx context.Context, in customer.ApplicationUpsert) (*customer.Entity, error) {
	activeDelta := 0
	if in.Approved {
		activeDelta = 1
	}
	q := `
INSERT INTO customers (
  business_id, customer_hash, name, email, phone,
  application_count, average_trust_score, running_score, tier, active_plans
) VALUES ($1, $2, $3, $4, $5, 1, $6, $6, $7, $8)
ON CONFLICT (business_id, customer_hash)
DO UPDATE SET
  name = EXCLUDED.name,
  phone = EXCLUDED.phone,
  average_trust_score = (customers.average_trust_score * customers.application_count + $6)
                        / (customers.application_count + 1),
  application_count = customers.application_count + 1,
  active_plans = customers.active_plans + $8,
  updated_at = NOW()
RETURNING ` + customerColumns
	out := &customer.Entity{}
	err := r.pool.QueryRow(ctx, q,
		in.BusinessID, in.CustomerHash, in.Name, in.Email, in.Phone,
		in.TrustScore, in.Tier, activeDelta,
	).Scan(customerScanTargets(out)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CustomerRepository) ApplyPaymentOutcome(ctx context.Context, in customer.PaymentOutcome) error {
	succeededDelta := 0
	if in.Succeeded {
		succeededDelta = 1
	}
	q := `
UPDATE customers
SET total_payments = total_payments + 1,
    successful_payments = successful_payments + $3,
    consecutive_failures = $4,
    running_score = $5,
    tier = $6,
    total_amount_paid = total_amount_paid + $7,
    last_payment_date = $8,
    updated_at = NOW()
WHERE business_id = $1 AND customer_hash = $2
`
	amount := decimal.Zero
	if in.Succeeded {
		amount = in.Amount
	}
	tag, err := r.pool.Exec(ctx, q,
		in.BusinessID, in.CustomerHash, succeededDelta, in.Failures,
		in.RunningScore, in.Tier, amount, in.OccurredAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, businessID, customerHash string) (*customer.Entity, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE business_id = $1 AND customer_hash = $2`
	out := &customer.Entity{}
	err := r.pool.QueryRow(ctx, q, businessID, customerHash).Scan(customerScanTargets(out)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CustomerRepository) List(ctx context.Context, f customer.ListFilter) ([]customer.Entity, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + customerColumns + ` FROM customers WHERE business_id = $1`)
	args := []any{f.BusinessID}
	argPos := 2
	if string(f.Tier) != "" {
		builder.WriteString(" AND tier = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Tier)
		argPos++
	}
	builder.WriteString(" ORDER BY updated_at DESC")
	builder.WriteString(" LIMIT $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Limit)
	argPos++
	builder.WriteString(" OFFSET $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Offset)

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]customer.Entity, 0)
	for rows.Next() {
		var item customer.Entity
		if err := rows.Scan(customerScanTargets(&item)...); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func customerScanTargets(e *customer.Entity) []any {
	return []any{
		&e.BusinessID, &e.CustomerHash, &e.Name, &e.Email, &e.Phone,
		&e.TotalPayments, &e.SuccessfulPayments, &e.ConsecutiveFailures, &e.ApplicationCount,
		&e.AverageTrustScore, &e.RunningScore, &e.Tier, &e.TotalAmountPaid, &e.ActivePlans,
		&e.LastPaymentDate, &e.CreatedAt, &e.UpdatedAt,
	}
}
