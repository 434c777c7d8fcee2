package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faithadeola/TrustRail/internal/domain/business"
)

type BusinessRepository struct {
	pool *pgxpool.Pool
}

func NewBusinessRepository(pool *pgxpool.Pool) *BusinessRepository {
	return &BusinessRepository{pool: pool}
}

const businessColumns = `id, name, email, phone, industry, payment_slug, created_at, updated_at`

func (r *BusinessRepository) Create(ctx context.Context, in business.CreateInput, slug string) (*business.Entity, error) {
	q := `
INSERT INTO businesses (name, email, phone, industry, payment_slug)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + businessColumns
	out := &business.Entity{}
	err := r.pool.QueryRow(ctx, q, in.Name, in.Email, in.Phone, in.Industry, slug).Scan(
		&out.ID, &out.Name, &out.Email, &out.Phone, &out.Industry, &out.PaymentSlug, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*business.Entity, error) {
	q := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	return r.scanOne(ctx, q, id)
}

func (r *BusinessRepository) GetBySlug(ctx context.Context, slug string) (*business.Entity, error) {
	q := `SELECT ` + businessColumns + ` FROM businesses WHERE payment_slug = $1`
	return r.scanOne(ctx, q, slug)
}

func (r *BusinessRepository) scanOne(ctx context.Context, q string, arg any) (*business.Entity, error) {
	out := &business.Entity{}
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&out.ID, &out.Name, &out.Email, &out.Phone, &out.Industry, &out.PaymentSlug, &out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, business.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BusinessRepository) Update(ctx context.Context, id string, in business.UpdateInput) (*business.Entity, error) {
	q := `
UPDATE businesses
SET name = $2, phone = $3, industry = $4, updated_at = NOW()
WHERE id = $1
RETURNING ` + businessColumns
	out := &business.Entity{}
	err := r.pool.QueryRow(ctx, q, id, in.Name, in.Phone, in.Industry).Scan(
		&out.ID, &out.Name, &out.Email, &out.Phone, &out.Industry, &out.PaymentSlug, &out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, business.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BusinessRepository) SetPaymentSlug(ctx context.Context, id, slug string) error {
	q := `UPDATE businesses SET payment_slug = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return business.ErrNotFound
	}
	return nil
}

const rulesColumns = `
business_id, down_payment_percentage, max_instalment_period, enable_fees, interest_rate,
trusted_min, verified_min, new_min, restricted_min,
auto_approve_threshold, auto_decline_threshold,
max_outstanding_balance, consecutive_failure_limit,
late_payment_penalty, on_time_bonus, min_history_for_trusted, updated_at`

func (r *BusinessRepository) GetRules(ctx context.Context, businessID string) (*business.PaymentRules, error) {
	q := `SELECT ` + rulesColumns + ` FROM payment_rules WHERE business_id = $1`
	out := &business.PaymentRules{}
	err := r.pool.QueryRow(ctx, q, businessID).Scan(
		&out.BusinessID, &out.DownPaymentPercent, &out.MaxInstallmentPeriod, &out.EnableFees, &out.InterestRate,
		&out.Trust.TrustedMin, &out.Trust.VerifiedMin, &out.Trust.NewMin, &out.Trust.RestrictedMin,
		&out.Trust.AutoApproveThreshold, &out.Trust.AutoDeclineThreshold,
		&out.Trust.MaxOutstandingBalance, &out.Trust.ConsecutiveFailureLimit,
		&out.Trust.LatePaymentPenalty, &out.Trust.OnTimeBonus, &out.Trust.MinHistoryForTrusted, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, business.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BusinessRepository) UpsertRules(ctx context.Context, rules business.PaymentRules) (*business.PaymentRules, error) {
	q := `
INSERT INTO payment_rules (
  business_id, down_payment_percentage, max_instalment_period, enable_fees, interest_rate,
  trusted_min, verified_min, new_min, restricted_min,
  auto_approve_threshold, auto_decline_threshold,
  max_outstanding_balance, consecutive_failure_limit,
  late_payment_penalty, on_time_bonus, min_history_for_trusted
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (business_id)
DO UPDATE SET
  down_payment_percentage = EXCLUDED.down_payment_percentage,
  max_instalment_period = EXCLUDED.max_instalment_period,
  enable_fees = EXCLUDED.enable_fees,
  interest_rate = EXCLUDED.interest_rate,
  trusted_min = EXCLUDED.trusted_min,
  verified_min = EXCLUDED.verified_min,
  new_min = EXCLUDED.new_min,
  restricted_min = EXCLUDED.restricted_min,
  auto_approve_threshold = EXCLUDED.auto_approve_threshold,
  auto_decline_threshold = EXCLUDED.auto_decline_threshold,
  max_outstanding_balance = EXCLUDED.max_outstanding_balance,
  consecutive_failure_limit = EXCLUDED.consecutive_failure_limit,
  late_payment_penalty = EXCLUDED.late_payment_penalty,
  on_time_bonus = EXCLUDED.on_time_bonus,
  min_history_for_trusted = EXCLUDED.min_history_for_trusted,
  updated_at = NOW()
RETURNING ` + rulesColumns
	out := &business.PaymentRules{}
	err := r.pool.QueryRow(ctx, q,
		rules.BusinessID, rules.DownPaymentPercent, rules.MaxInstallmentPeriod, rules.EnableFees, rules.InterestRate,
		rules.Trust.TrustedMin, rules.Trust.VerifiedMin, rules.Trust.NewMin, rules.Trust.RestrictedMin,
		rules.Trust.AutoApproveThreshold, rules.Trust.AutoDeclineThreshold,
		rules.Trust.MaxOutstandingBalance, rules.Trust.ConsecutiveFailureLimit,
		rules.Trust.LatePaymentPenalty, rules.Trust.OnTimeBonus, rules.Trust.MinHistoryForTrusted,
	).Scan(
		&out.BusinessID, &out.DownPaymentPercent, &out.MaxInstallmentPeriod, &out.EnableFees, &out.InterestRate,
		&out.Trust.TrustedMin, &out.Trust.VerifiedMin, &out.Trust.NewMin, &out.Trust.RestrictedMin,
		&out.Trust.AutoApproveThreshold, &out.Trust.AutoDeclineThreshold,
		&out.Trust.MaxOutstandingBalance, &out.Trust.ConsecutiveFailureLimit,
		&out.Trust.LatePaymentPenalty, &out.Trust.OnTimeBonus, &out.Trust.MinHistoryForTrusted, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
