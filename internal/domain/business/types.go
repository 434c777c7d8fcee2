package business

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faithadeola/TrustRail/internal/domain/trust"
)

var ErrNotFound = errors.New("business_not_found")

type Entity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Industry    string    `json:"industry"`
	PaymentSlug string    `json:"payment_slug"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateInput struct {
	Name     string
	Email    string
	Phone    string
	Industry string
}

type UpdateInput struct {
	Name     string
	Phone    string
	Industry string
}

// PaymentRules holds both the schedule policy a business offers at checkout
// and its trust-scoring configuration.
type PaymentRules struct {
	BusinessID           string          `json:"business_id"`
	DownPaymentPercent   decimal.Decimal `json:"down_payment_percentage"`
	MaxInstallmentPeriod int             `json:"max_instalment_period"`
	EnableFees           bool            `json:"enable_fees"`
	InterestRate         decimal.Decimal `json:"interest_rate"`
	Trust                trust.RuleConfig `json:"trust"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func DefaultPaymentRules(businessID string) PaymentRules {
	return PaymentRules{
		BusinessID:           businessID,
		DownPaymentPercent:   decimal.NewFromInt(30),
		MaxInstallmentPeriod: 6,
		EnableFees:           false,
		InterestRate:         decimal.Zero,
		Trust:                trust.DefaultRuleConfig(),
	}
}

type Repository interface {
	Create(ctx context.Context, in CreateInput, slug string) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	GetBySlug(ctx context.Context, slug string) (*Entity, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Entity, error)
	SetPaymentSlug(ctx context.Context, id, slug string) error

	GetRules(ctx context.Context, businessID string) (*PaymentRules, error)
	UpsertRules(ctx context.Context, rules PaymentRules) (*PaymentRules, error)
}
