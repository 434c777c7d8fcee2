package unit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	appdomain "github.com/faithadeola/TrustRail/internal/domain/application"
	businessdomain "github.com/faithadeola/TrustRail/internal/domain/business"
	customerdomain "github.com/faithadeola/TrustRail/internal/domain/customer"
	notificationdomain "github.com/faithadeola/TrustRail/internal/domain/notification"
	"github.com/faithadeola/TrustRail/internal/domain/trust"
)

type businessDirectoryMock struct {
	entity *businessdomain.Entity
	rules  businessdomain.PaymentRules
}

func (m *businessDirectoryMock) Get(_ context.Context, id string) (*businessdomain.Entity, error) {
	if m.entity == nil || m.entity.ID != id {
		return nil, businessdomain.ErrNotFound
	}
	return m.entity, nil
}

func (m *businessDirectoryMock) Rules(_ context.Context, _ string) (*businessdomain.PaymentRules, error) {
	r := m.rules
	return &r, nil
}

type applicationRepoMock struct {
	items  []appdomain.Entity
	nextID int
}

func (m *applicationRepoMock) Create(_ context.Context, in appdomain.CreateRecord) (*appdomain.Entity, error) {
	m.nextID++
	e := appdomain.Entity{
		ID:                 fmt.Sprintf("app-%d", m.nextID),
		BusinessID:         in.BusinessID,
		CustomerName:       in.CustomerName,
		CustomerEmail:      in.CustomerEmail,
		CustomerPhone:      in.CustomerPhone,
		CustomerHash:       in.CustomerHash,
		HasBVN:             in.HasBVN,
		BVNHash:            in.BVNHash,
		PaymentType:        in.PaymentType,
		TotalAmount:        in.TotalAmount,
		RecurringAmount:    in.RecurringAmount,
		CommitmentMonths:   in.CommitmentMonths,
		PaymentFrequency:   in.PaymentFrequency,
		PreferredStartDate: in.PreferredStartDate,
		BankName:           in.BankName,
		AccountNumber:      in.AccountNumber,
		AccountName:        in.AccountName,
		TrustScore:         in.TrustScore,
		Status:             in.Status,
		Tier:               in.Tier,
		CreatedAt:          time.Now().UTC(),
	}
	m.items = append(m.items, e)
	return &e, nil
}

func (m *applicationRepoMock) GetByID(_ context.Context, id string) (*appdomain.Entity, error) {
	for _, item := range m.items {
		if item.ID == id {
			cp := item
			return &cp, nil
		}
	}
	return nil, appdomain.ErrNotFound
}

func (m *applicationRepoMock) List(_ context.Context, _ appdomain.ListFilter) ([]appdomain.Entity, error) {
	return m.items, nil
}

func (m *applicationRepoMock) SetAccountName(_ context.Context, id, accountName string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].AccountName = accountName
			return nil
		}
	}
	return appdomain.ErrNotFound
}

func (m *applicationRepoMock) GetDashboardAnalytics(_ context.Context, businessID string) (*appdomain.DashboardAnalytics, error) {
	return &appdomain.DashboardAnalytics{BusinessID: businessID}, nil
}

type customerRepoMock struct {
	upserts  []customerdomain.ApplicationUpsert
	outcomes []customerdomain.PaymentOutcome
	byHash   map[string]*customerdomain.Entity
}

func (m *customerRepoMock) UpsertOnApplication(_ context.Context, in customerdomain.ApplicationUpsert) (*customerdomain.Entity, error) {
	m.upserts = append(m.upserts, in)
	return &customerdomain.Entity{BusinessID: in.BusinessID, CustomerHash: in.CustomerHash}, nil
}

func (m *customerRepoMock) ApplyPaymentOutcome(_ context.Context, in customerdomain.PaymentOutcome) error {
	m.outcomes = append(m.outcomes, in)
	return nil
}

func (m *customerRepoMock) Get(_ context.Context, _, customerHash string) (*customerdomain.Entity, error) {
	if e, ok := m.byHash[customerHash]; ok {
		return e, nil
	}
	return nil, customerdomain.ErrNotFound
}

func (m *customerRepoMock) List(_ context.Context, _ customerdomain.ListFilter) ([]customerdomain.Entity, error) {
	return []customerdomain.Entity{}, nil
}

type notificationRepoMock struct {
	created []notificationdomain.CreateInput
}

func (m *notificationRepoMock) Create(_ context.Context, in notificationdomain.CreateInput) (*notificationdomain.Entity, error) {
	m.created = append(m.created, in)
	return &notificationdomain.Entity{ID: int64(len(m.created)), BusinessID: in.BusinessID, Type: in.Type}, nil
}

func (m *notificationRepoMock) ListByBusiness(_ context.Context, _ string, _ bool, _, _ int32) ([]notificationdomain.Entity, error) {
	return []notificationdomain.Entity{}, nil
}

func (m *notificationRepoMock) MarkRead(_ context.Context, _ string, _ int64) error { return nil }

func (m *notificationRepoMock) MarkAllRead(_ context.Context, _ string) error { return nil }

func (m *notificationRepoMock) CountUnread(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

type scheduleStoreMock struct {
	plans map[string][]appdomain.PlanInstallment
	downs map[string]decimal.Decimal
}

func (m *scheduleStoreMock) CreatePlan(_ context.Context, applicationID string, downPayment decimal.Decimal, items []appdomain.PlanInstallment) error {
	if m.plans == nil {
		m.plans = map[string][]appdomain.PlanInstallment{}
		m.downs = map[string]decimal.Decimal{}
	}
	m.plans[applicationID] = items
	m.downs[applicationID] = downPayment
	return nil
}

type outboxMock struct {
	topics   []string
	payloads [][]byte
}

func (m *outboxMock) Enqueue(_ context.Context, topic string, payload []byte) error {
	m.topics = append(m.topics, topic)
	m.payloads = append(m.payloads, payload)
	return nil
}

func newSubmitFixture() (*appdomain.Service, *applicationRepoMock, *customerRepoMock, *notificationRepoMock, *scheduleStoreMock, *outboxMock) {
	repo := &applicationRepoMock{}
	customers := &customerRepoMock{byHash: map[string]*customerdomain.Entity{}}
	notifications := &notificationRepoMock{}
	schedules := &scheduleStoreMock{}
	outbox := &outboxMock{}
	businesses := &businessDirectoryMock{
		entity: &businessdomain.Entity{ID: "biz-1", Name: "Acme Stores"},
		rules:  businessdomain.DefaultPaymentRules("biz-1"),
	}
	svc := appdomain.NewService(repo, businesses, customers, notifications, schedules, outbox, trust.NewEvaluator())
	return svc, repo, customers, notifications, schedules, outbox
}

func installmentInput() appdomain.SubmitInput {
	return appdomain.SubmitInput{
		BusinessID:         "biz-1",
		CustomerName:       "Ada Obi",
		CustomerEmail:      "ada@example.com",
		BVN:                "12345678901",
		PaymentType:        appdomain.PaymentTypeInstallment,
		TotalAmount:        decimal.NewNullDecimal(decimal.NewFromInt(150000)),
		PaymentFrequency:   "monthly",
		PreferredStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		BankName:           "GTBank",
		AccountNumber:      "0123456789",
	}
}

func TestSubmitApprovedInstallment(t *testing.T) {
	svc, _, customers, notifications, schedules, outbox := newSubmitFixture()

	created, err := svc.Submit(context.Background(), installmentInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// 50 base + 20 bvn + 10 band + 10 monthly
	if created.TrustScore != 90 {
		t.Fatalf("trust score = %d, want 90", created.TrustScore)
	}
	if created.Status != trust.StatusApproved {
		t.Fatalf("status = %s, want approved", created.Status)
	}
	if created.Tier != trust.TierTrusted {
		t.Fatalf("tier = %s, want TRUSTED", created.Tier)
	}
	if created.BVNHash == "" || created.BVNHash == "12345678901" {
		t.Fatalf("bvn must be stored hashed, got %q", created.BVNHash)
	}

	if len(customers.upserts) != 1 || !customers.upserts[0].Approved {
		t.Fatalf("expected one approved customer upsert, got %+v", customers.upserts)
	}
	if len(notifications.created) != 1 || notifications.created[0].Type != notificationdomain.TypeApplicationApproved {
		t.Fatalf("expected approval notification, got %+v", notifications.created)
	}

	plan, ok := schedules.plans[created.ID]
	if !ok {
		t.Fatalf("expected persisted plan for approved installment")
	}
	if len(plan) != 6 {
		t.Fatalf("plan rows = %d, want 6", len(plan))
	}
	if !schedules.downs[created.ID].Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("down payment = %s, want 45000", schedules.downs[created.ID])
	}

	if len(outbox.topics) != 1 || outbox.topics[0] != "verify_bank_account" {
		t.Fatalf("expected only a verification job, got %v", outbox.topics)
	}
}

func TestSubmitApprovedSubscriptionEnqueuesMandate(t *testing.T) {
	svc, _, _, _, schedules, outbox := newSubmitFixture()

	in := installmentInput()
	in.PaymentType = appdomain.PaymentTypeSubscription
	in.TotalAmount = decimal.NullDecimal{}
	in.RecurringAmount = decimal.NewNullDecimal(decimal.NewFromInt(20000))
	in.CommitmentMonths = 12

	created, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if created.Status != trust.StatusApproved {
		t.Fatalf("status = %s, want approved", created.Status)
	}

	if len(schedules.plans) != 0 {
		t.Fatalf("subscriptions must not write installment plans")
	}
	if len(outbox.topics) != 2 || outbox.topics[1] != "register_mandate" {
		t.Fatalf("expected verification and mandate jobs, got %v", outbox.topics)
	}
}

func TestSubmitUnderReviewSkipsPlanAndMandate(t *testing.T) {
	svc, _, _, notifications, schedules, outbox := newSubmitFixture()

	in := installmentInput()
	in.BVN = ""
	in.TotalAmount = decimal.NewNullDecimal(decimal.NewFromInt(900000))
	in.PaymentFrequency = "weekly"

	created, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// 50 base only: large amount, no bvn, non-monthly
	if created.TrustScore != 50 {
		t.Fatalf("trust score = %d, want 50", created.TrustScore)
	}
	if created.Status != trust.StatusUnderReview {
		t.Fatalf("status = %s, want under_review", created.Status)
	}
	if len(schedules.plans) != 0 {
		t.Fatalf("plans must only persist for approved installments")
	}
	if len(outbox.topics) != 1 {
		t.Fatalf("under-review applications still get account verification, got %v", outbox.topics)
	}
	if notifications.created[0].Type != notificationdomain.TypeApplicationReview {
		t.Fatalf("expected review notification, got %s", notifications.created[0].Type)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _, _, _, _ := newSubmitFixture()

	cases := []struct {
		name   string
		mutate func(*appdomain.SubmitInput)
		field  string
	}{
		{"missing name", func(in *appdomain.SubmitInput) { in.CustomerName = " " }, "customer_name"},
		{"bad email", func(in *appdomain.SubmitInput) { in.CustomerEmail = "nope" }, "customer_email"},
		{"short bvn", func(in *appdomain.SubmitInput) { in.BVN = "1234" }, "bvn"},
		{"non-numeric account", func(in *appdomain.SubmitInput) { in.AccountNumber = "01234abcde" }, "account_number"},
		{"missing bank", func(in *appdomain.SubmitInput) { in.BankName = "" }, "bank_name"},
		{"both amounts", func(in *appdomain.SubmitInput) {
			in.RecurringAmount = decimal.NewNullDecimal(decimal.NewFromInt(5000))
		}, "recurring_amount"},
		{"bad frequency", func(in *appdomain.SubmitInput) { in.PaymentFrequency = "hourly" }, "payment_frequency"},
		{"zero start date", func(in *appdomain.SubmitInput) { in.PreferredStartDate = time.Time{} }, "preferred_start_date"},
		{"bad payment type", func(in *appdomain.SubmitInput) { in.PaymentType = "LAYAWAY" }, "payment_type"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := installmentInput()
			tc.mutate(&in)
			_, err := svc.Submit(context.Background(), in)
			var vErr *appdomain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("field = %s, want %s", vErr.Field, tc.field)
			}
		})
	}
}

func TestSubmitSubscriptionRequiresCommitment(t *testing.T) {
	svc, _, _, _, _, _ := newSubmitFixture()

	in := installmentInput()
	in.PaymentType = appdomain.PaymentTypeSubscription
	in.TotalAmount = decimal.NullDecimal{}
	in.RecurringAmount = decimal.NewNullDecimal(decimal.NewFromInt(20000))
	in.CommitmentMonths = 0

	_, err := svc.Submit(context.Background(), in)
	var vErr *appdomain.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "commitment_months" {
		t.Fatalf("expected commitment_months validation error, got %v", err)
	}
}

func TestSubmitUnknownBusiness(t *testing.T) {
	svc, _, _, _, _, _ := newSubmitFixture()

	in := installmentInput()
	in.BusinessID = "biz-missing"
	if _, err := svc.Submit(context.Background(), in); !errors.Is(err, businessdomain.ErrNotFound) {
		t.Fatalf("expected business not found, got %v", err)
	}
}

func TestCustomerHashScopedPerBusiness(t *testing.T) {
	a := customerdomain.HashID("biz-1", "ada@example.com")
	b := customerdomain.HashID("biz-2", "ada@example.com")
	if a == b {
		t.Fatalf("same email must hash differently across businesses")
	}
	if a != customerdomain.HashID("biz-1", "ada@example.com") {
		t.Fatalf("hash must be deterministic")
	}
}
