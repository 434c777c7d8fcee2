package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faithadeola/TrustRail/internal/domain/trust"
)

var ErrNotFound = errors.New("application_not_found")

type PaymentType string

const (
	PaymentTypeInstallment  PaymentType = "INSTALMENT"
	PaymentTypeSubscription PaymentType = "SUBSCRIPTION"
)

type Entity struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	CustomerHash  string `json:"customer_hash"`
	HasBVN        bool   `json:"has_bvn"`
	BVNHash       string `json:"-"`

	PaymentType      PaymentType         `json:"payment_type"`
	TotalAmount      decimal.NullDecimal `json:"total_amount"`
	RecurringAmount  decimal.NullDecimal `json:"recurring_amount"`
	CommitmentMonths int                 `json:"commitment_months"`

	PaymentFrequency   trust.Frequency `json:"payment_frequency"`
	PreferredStartDate time.Time       `json:"preferred_start_date"`

	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`

	TrustScore int          `json:"trust_score"`
	Status     trust.Status `json:"status"`
	Tier       trust.Tier   `json:"tier"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SubmitInput struct {
	BusinessID string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	BVN           string

	PaymentType      PaymentType
	TotalAmount      decimal.NullDecimal
	RecurringAmount  decimal.NullDecimal
	CommitmentMonths int

	PaymentFrequency   string
	PreferredStartDate time.Time

	BankName      string
	AccountNumber string
	AccountName   string
}

type CreateRecord struct {
	BusinessID         string
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	CustomerHash       string
	HasBVN             bool
	BVNHash            string
	PaymentType        PaymentType
	TotalAmount        decimal.NullDecimal
	RecurringAmount    decimal.NullDecimal
	CommitmentMonths   int
	PaymentFrequency   trust.Frequency
	PreferredStartDate time.Time
	BankName           string
	AccountNumber      string
	AccountName        string
	TrustScore         int
	Status             trust.Status
	Tier               trust.Tier
}

type ListFilter struct {
	BusinessID string
	Status     trust.Status
	Limit      int32
	Offset     int32
}

// DashboardAnalytics is the per-business summary rendered on the dashboard,
// computed by a single SQL aggregate.
type DashboardAnalytics struct {
	BusinessID        string          `json:"business_id"`
	TotalApplications int64           `json:"total_applications"`
	Approved          int64           `json:"approved"`
	UnderReview       int64           `json:"under_review"`
	Declined          int64           `json:"declined"`
	AverageTrustScore float64         `json:"average_trust_score"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
}

type Repository interface {
	Create(ctx context.Context, in CreateRecord) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	SetAccountName(ctx context.Context, id, accountName string) error
	GetDashboardAnalytics(ctx context.Context, businessID string) (*DashboardAnalytics, error)
}

// PlanInstallment is one persisted row of an approved installment plan.
type PlanInstallment struct {
	Number  int
	DueDate time.Time
	Amount  decimal.Decimal
}

type ScheduleStore interface {
	CreatePlan(ctx context.Context, applicationID string, downPayment decimal.Decimal, items []PlanInstallment) error
}
