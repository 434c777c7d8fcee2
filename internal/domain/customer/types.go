package customer

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faithadeola/TrustRail/internal/domain/trust"
)

var ErrNotFound = errors.New("customer_not_found")

// Entity is the per-business customer aggregate, keyed by the keccak hash of
// the customer's email within that business. It is maintained incrementally
// on application submission and on every ingested payment event, so reads
// never scan the application set.
type Entity struct {
	BusinessID          string          `json:"business_id"`
	CustomerHash        string          `json:"customer_hash"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	TotalPayments       int64           `json:"total_payments"`
	SuccessfulPayments  int64           `json:"successful_payments"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	ApplicationCount    int64           `json:"application_count"`
	AverageTrustScore   float64         `json:"average_trust_score"`
	RunningScore        int             `json:"running_score"`
	Tier                trust.Tier      `json:"tier"`
	TotalAmountPaid     decimal.Decimal `json:"total_amount_paid"`
	ActivePlans         int64           `json:"active_plans"`
	LastPaymentDate     *time.Time      `json:"last_payment_date"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ApplicationUpsert carries the aggregate deltas applied when a customer
// submits a new application.
type ApplicationUpsert struct {
	BusinessID   string
	CustomerHash string
	Name         string
	Email        string
	Phone        string
	TrustScore   int
	Tier         trust.Tier
	Approved     bool
}

// PaymentOutcome carries the aggregate deltas applied when a provider
// payment event is ingested.
type PaymentOutcome struct {
	BusinessID   string
	CustomerHash string
	Succeeded    bool
	Amount       decimal.Decimal
	OccurredAt   time.Time
	RunningScore int
	Failures     int
	Tier         trust.Tier
}

type ListFilter struct {
	BusinessID string
	Tier       trust.Tier
	Limit      int32
	Offset     int32
}

type Repository interface {
	UpsertOnApplication(ctx context.Context, in ApplicationUpsert) (*Entity, error)
	ApplyPaymentOutcome(ctx context.Context, in PaymentOutcome) error
	Get(ctx context.Context, businessID, customerHash string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
}
