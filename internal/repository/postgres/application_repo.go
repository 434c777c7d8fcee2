package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faithadeola/TrustRail/internal/domain/application"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `
id, business_id, customer_name, customer_email, customer_phone, customer_hash,
has_bvn, bvn_hash, payment_type, total_amount, recurring_amount, commitment_months,
payment_frequency, preferred_start_date, bank_name, account_number, account_name,
trust_score, status, tier, created_at, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, in application.CreateRecord) (*application.Entity, error) {
	q := `
INSERT INTO payment_applications (
  business_id, customer_name, customer_email, customer_phone, customer_hash,
  has_bvn, bvn_hash, payment_type, total_amount, recurring_amount, commitment_months,
  payment_frequency, preferred_start_date, bank_name, account_number, account_name,
  trust_score, status, tier
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
RETURNING ` + applicationColumns
	out := &application.Entity{}
	err := r.pool.QueryRow(ctx, q,
		in.BusinessID, in.CustomerName, in.CustomerEmail, in.CustomerPhone, in.CustomerHash,
		in.HasBVN, in.BVNHash, in.PaymentType, in.TotalAmount, in.RecurringAmount, in.CommitmentMonths,
		in.PaymentFrequency, in.PreferredStartDate, in.BankName, in.AccountNumber, in.AccountName,
		in.TrustScore, in.Status, in.Tier,
	).Scan(scanTargets(out)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*application.Entity, error) {
	q := `SELECT ` + applicationColumns + ` FROM payment_applications WHERE id = $1`
	out := &application.Entity{}
	err := r.pool.QueryRow(ctx, q, id).Scan(scanTargets(out)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, application.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) List(ctx context.Context, f application.ListFilter) ([]application.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + applicationColumns + ` FROM payment_applications WHERE 1=1`)

	args := []any{}
	argPos := 1
	if strings.TrimSpace(f.BusinessID) != "" {
		builder.WriteString(" AND business_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.BusinessID)
		argPos++
	}
	if string(f.Status) != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	builder.WriteString(" ORDER BY created_at DESC")
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

	out := make([]application.Entity, 0)
	for rows.Next() {
		var item application.Entity
		if err := rows.Scan(scanTargets(&item)...); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) SetAccountName(ctx context.Context, id, accountName string) error {
	q := `UPDATE payment_applications SET account_name = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, accountName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) GetDashboardAnalytics(ctx context.Context, businessID string) (*application.DashboardAnalytics, error) {
	q := `
SELECT
  COUNT(*)::bigint AS total_applications,
  COUNT(*) FILTER (WHERE status = 'approved')::bigint AS approved,
  COUNT(*) FILTER (WHERE status = 'under_review')::bigint AS under_review,
  COUNT(*) FILTER (WHERE status = 'declined')::bigint AS declined,
  COALESCE(AVG(trust_score), 0)::float8 AS average_trust_score,
  COALESCE(SUM(COALESCE(total_amount, recurring_amount * commitment_months, 0)), 0) AS total_volume
FROM payment_applications
WHERE business_id = $1
`
	out := &application.DashboardAnalytics{BusinessID: businessID}
	err := r.pool.QueryRow(ctx, q, businessID).Scan(
		&out.TotalApplications,
		&out.Approved,
		&out.UnderReview,
		&out.Declined,
		&out.AverageTrustScore,
		&out.TotalVolume,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanTargets(e *application.Entity) []any {
	return []any{
		&e.ID, &e.BusinessID, &e.CustomerName, &e.CustomerEmail, &e.CustomerPhone, &e.CustomerHash,
		&e.HasBVN, &e.BVNHash, &e.PaymentType, &e.TotalAmount, &e.RecurringAmount, &e.CommitmentMonths,
		&e.PaymentFrequency, &e.PreferredStartDate, &e.BankName, &e.AccountNumber, &e.AccountName,
		&e.TrustScore, &e.Status, &e.Tier, &e.CreatedAt, &e.UpdatedAt,
	}
}
