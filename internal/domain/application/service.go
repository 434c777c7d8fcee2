package application

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"

	"github.com/faithadeola/TrustRail/internal/domain/business"
	"github.com/faithadeola/TrustRail/internal/domain/customer"
	"github.com/faithadeola/TrustRail/internal/domain/notification"
	"github.com/faithadeola/TrustRail/internal/domain/schedule"
	"github.com/faithadeola/TrustRail/internal/domain/trust"
)

const (
	outboxTopicVerifyAccount   = "verify_bank_account"
	outboxTopicRegisterMandate = "register_mandate"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type BusinessDirectory interface {
	Get(ctx context.Context, id string) (*business.Entity, error)
	Rules(ctx context.Context, businessID string) (*business.PaymentRules, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, topic string, payload []byte) error
}

type Service struct {
	repo          Repository
	businesses    BusinessDirectory
	customers     customer.Repository
	notifications notification.Repository
	schedules     ScheduleStore
	outbox        OutboxRepository
	evaluator     *trust.Evaluator
	now           func() time.Time
}

func NewService(
	repo Repository,
	businesses BusinessDirectory,
	customers customer.Repository,
	notifications notification.Repository,
	schedules ScheduleStore,
	outbox OutboxRepository,
	evaluator *trust.Evaluator,
) *Service {
	if evaluator == nil {
		evaluator = trust.NewEvaluator()
	}
	return &Service{
		repo:          repo,
		businesses:    businesses,
		customers:     customers,
		notifications: notifications,
		schedules:     schedules,
		outbox:        outbox,
		evaluator:     evaluator,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates a customer application, scores it against the owning
// business's rule config, persists the decided record, and fans out the
// side effects: customer aggregate upsert, business notification, bank
// verification job, and a mandate registration job for approved
// subscriptions. The status written here is final; nothing recomputes it.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Entity, error) {
	freq, err := validateSubmit(&in)
	if err != nil {
		return nil, err
	}

	if _, err := s.businesses.Get(ctx, in.BusinessID); err != nil {
		return nil, err
	}
	rules, err := s.businesses.Rules(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	amount := decimal.Zero
	switch in.PaymentType {
	case PaymentTypeInstallment:
		amount = in.TotalAmount.Decimal
	case PaymentTypeSubscription:
		amount = in.RecurringAmount.Decimal
	}

	score := s.evaluator.Score(trust.ScoreInput{
		HasBVN:           in.BVN != "",
		Amount:           amount,
		PaymentFrequency: freq,
	})
	status := trust.Decide(score, rules.Trust)
	tier := trust.TierFor(score, rules.Trust)

	created, err := s.repo.Create(ctx, CreateRecord{
		BusinessID:         in.BusinessID,
		CustomerName:       in.CustomerName,
		CustomerEmail:      in.CustomerEmail,
		CustomerPhone:      in.CustomerPhone,
		CustomerHash:       customer.HashID(in.BusinessID, in.CustomerEmail),
		HasBVN:             in.BVN != "",
		BVNHash:            hashBVN(in.BVN),
		PaymentType:        in.PaymentType,
		TotalAmount:        in.TotalAmount,
		RecurringAmount:    in.RecurringAmount,
		CommitmentMonths:   in.CommitmentMonths,
		PaymentFrequency:   freq,
		PreferredStartDate: in.PreferredStartDate,
		BankName:           in.BankName,
		AccountNumber:      in.AccountNumber,
		AccountName:        in.AccountName,
		TrustScore:         score,
		Status:             status,
		Tier:               tier,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.customers.UpsertOnApplication(ctx, customer.ApplicationUpsert{
		BusinessID:   created.BusinessID,
		CustomerHash: created.CustomerHash,
		Name:         created.CustomerName,
		Email:        created.CustomerEmail,
		Phone:        created.CustomerPhone,
		TrustScore:   score,
		Tier:         tier,
		Approved:     status == trust.StatusApproved,
	}); err != nil {
		return nil, err
	}

	if _, err := s.notifications.Create(ctx, decisionNotification(created)); err != nil {
		return nil, err
	}

	if status == trust.StatusApproved && created.PaymentType == PaymentTypeInstallment {
		if err := s.persistPlan(ctx, created, rules); err != nil {
			return nil, err
		}
	}

	verifyPayload, _ := json.Marshal(map[string]any{
		"application_id": created.ID,
		"bank_name":      created.BankName,
		"account_number": created.AccountNumber,
	})
	if err := s.outbox.Enqueue(ctx, outboxTopicVerifyAccount, verifyPayload); err != nil {
		return nil, err
	}

	if status == trust.StatusApproved && created.PaymentType == PaymentTypeSubscription {
		mandatePayload, _ := json.Marshal(map[string]any{"application_id": created.ID})
		if err := s.outbox.Enqueue(ctx, outboxTopicRegisterMandate, mandatePayload); err != nil {
			return nil, err
		}
	}

	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Entity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *Service) DashboardAnalytics(ctx context.Context, businessID string) (*DashboardAnalytics, error) {
	if strings.TrimSpace(businessID) == "" {
		return nil, &ValidationError{Field: "business_id", Message: "required"}
	}
	return s.repo.GetDashboardAnalytics(ctx, businessID)
}

// persistPlan materializes the amortization rows for an approved installment
// application using the business's checkout policy.
func (s *Service) persistPlan(ctx context.Context, app *Entity, rules *business.PaymentRules) error {
	preview, err := schedule.GeneratePreview(schedule.PreviewInput{
		TotalAmount:        app.TotalAmount.Decimal,
		DownPaymentPercent: rules.DownPaymentPercent,
		NumInstallments:    rules.MaxInstallmentPeriod,
		EnableFees:         rules.EnableFees,
		InterestRate:       rules.InterestRate,
		StartDate:          app.PreferredStartDate,
		Frequency:          app.PaymentFrequency,
	})
	if err != nil {
		return err
	}
	items := make([]PlanInstallment, 0, len(preview.Schedule))
	for _, inst := range preview.Schedule {
		items = append(items, PlanInstallment{Number: inst.Number, DueDate: inst.DueDate, Amount: inst.Amount})
	}
	return s.schedules.CreatePlan(ctx, app.ID, preview.DownPayment, items)
}

func decisionNotification(app *Entity) notification.CreateInput {
	var (
		ntype notification.Type
		title string
	)
	switch app.Status {
	case trust.StatusApproved:
		ntype = notification.TypeApplicationApproved
		title = "Application approved"
	case trust.StatusDeclined:
		ntype = notification.TypeApplicationDeclined
		title = "Application declined"
	default:
		ntype = notification.TypeApplicationReview
		title = "Application needs review"
	}
	return notification.CreateInput{
		BusinessID: app.BusinessID,
		Type:       ntype,
		Title:      title,
		Message:    fmt.Sprintf("%s's application is %s (trust score %d)", app.CustomerName, app.Status, app.TrustScore),
	}
}

func validateSubmit(in *SubmitInput) (trust.Frequency, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.BVN = strings.TrimSpace(in.BVN)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)

	if strings.TrimSpace(in.BusinessID) == "" {
		return "", &ValidationError{Field: "business_id", Message: "required"}
	}
	if in.CustomerName == "" {
		return "", &ValidationError{Field: "customer_name", Message: "required"}
	}
	if in.CustomerEmail == "" || !strings.Contains(in.CustomerEmail, "@") {
		return "", &ValidationError{Field: "customer_email", Message: "valid email required"}
	}
	if in.BVN != "" && !allDigits(in.BVN, 11) {
		return "", &ValidationError{Field: "bvn", Message: "must be 11 digits"}
	}
	if !allDigits(in.AccountNumber, 10) {
		return "", &ValidationError{Field: "account_number", Message: "must be 10 digits"}
	}
	if strings.TrimSpace(in.BankName) == "" {
		return "", &ValidationError{Field: "bank_name", Message: "required"}
	}

	switch in.PaymentType {
	case PaymentTypeInstallment:
		if !in.TotalAmount.Valid || !in.TotalAmount.Decimal.IsPositive() {
			return "", &ValidationError{Field: "total_amount", Message: "required for INSTALMENT"}
		}
		if in.RecurringAmount.Valid {
			return "", &ValidationError{Field: "recurring_amount", Message: "not allowed for INSTALMENT"}
		}
	case PaymentTypeSubscription:
		if !in.RecurringAmount.Valid || !in.RecurringAmount.Decimal.IsPositive() {
			return "", &ValidationError{Field: "recurring_amount", Message: "required for SUBSCRIPTION"}
		}
		if in.TotalAmount.Valid {
			return "", &ValidationError{Field: "total_amount", Message: "not allowed for SUBSCRIPTION"}
		}
		if in.CommitmentMonths < 1 {
			return "", &ValidationError{Field: "commitment_months", Message: "must be at least 1"}
		}
	default:
		return "", &ValidationError{Field: "payment_type", Message: "must be INSTALMENT or SUBSCRIPTION"}
	}

	freq, err := trust.ParseFrequency(in.PaymentFrequency)
	if err != nil {
		return "", &ValidationError{Field: "payment_frequency", Message: err.Error()}
	}
	if in.PreferredStartDate.IsZero() {
		return "", &ValidationError{Field: "preferred_start_date", Message: "required"}
	}
	return freq, nil
}

func allDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// hashBVN stores only a keccak hash of the verification number; the raw
// value never persists.
func hashBVN(bvn string) string {
	if bvn == "" {
		return ""
	}
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(bvn))
	return hex.EncodeToString(h.Sum(nil))
}
