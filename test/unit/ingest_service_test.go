package unit

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	appdomain "github.com/faithadeola/TrustRail/internal/domain/application"
	businessdomain "github.com/faithadeola/TrustRail/internal/domain/business"
	customerdomain "github.com/faithadeola/TrustRail/internal/domain/customer"
	notificationdomain "github.com/faithadeola/TrustRail/internal/domain/notification"
	"github.com/faithadeola/TrustRail/internal/domain/trust"
	"github.com/faithadeola/TrustRail/internal/ingest"
)

type eventRepoMock struct {
	events    []ingest.PaymentEvent
	processed []int64
}

func (m *eventRepoMock) Insert(_ context.Context, ev ingest.PaymentEvent) error {
	ev.ID = int64(len(m.events) + 1)
	m.events = append(m.events, ev)
	return nil
}

func (m *eventRepoMock) ListUnprocessed(_ context.Context, _ int32) ([]ingest.PaymentEvent, error) {
	out := m.events
	m.events = nil
	return out, nil
}

func (m *eventRepoMock) MarkProcessed(_ context.Context, eventID int64) error {
	m.processed = append(m.processed, eventID)
	return nil
}

type projectionRepoMock struct {
	transactions []ingest.TransactionRecord
	settled      []string
	settledPaid  []bool
}

func (m *projectionRepoMock) InsertTransaction(_ context.Context, tx ingest.TransactionRecord) error {
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *projectionRepoMock) SettleNextInstallment(_ context.Context, applicationID string, paid bool, _ time.Time) error {
	m.settled = append(m.settled, applicationID)
	m.settledPaid = append(m.settledPaid, paid)
	return nil
}

func newIngestFixture(installment bool) (*ingest.Service, *eventRepoMock, *projectionRepoMock, *customerRepoMock, *notificationRepoMock) {
	paymentType := appdomain.PaymentTypeSubscription
	if installment {
		paymentType = appdomain.PaymentTypeInstallment
	}
	apps := &applicationRepoMock{items: []appdomain.Entity{{
		ID:           "app-1",
		BusinessID:   "biz-1",
		CustomerName: "Ada Obi",
		CustomerHash: "hash-1",
		PaymentType:  paymentType,
	}}}
	businesses := &businessDirectoryMock{
		entity: &businessdomain.Entity{ID: "biz-1"},
		rules:  businessdomain.DefaultPaymentRules("biz-1"),
	}
	customers := &customerRepoMock{byHash: map[string]*customerdomain.Entity{
		"hash-1": {
			BusinessID:   "biz-1",
			CustomerHash: "hash-1",
			RunningScore: 60,
			Tier:         trust.TierVerified,
		},
	}}
	events := &eventRepoMock{}
	projections := &projectionRepoMock{}
	notifications := &notificationRepoMock{}
	svc := ingest.NewService(events, projections, apps, businesses, customers, notifications)
	return svc, events, projections, customers, notifications
}

func succeededEvent(amount int64) ingest.PaymentEvent {
	return ingest.PaymentEvent{
		ID:            1,
		EventName:     ingest.EventPaymentSucceeded,
		ApplicationID: "app-1",
		Amount:        decimal.NewFromInt(amount),
		OccurredAt:    time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordValidatesEvents(t *testing.T) {
	svc, events, _, _, _ := newIngestFixture(true)

	bad := succeededEvent(17500)
	bad.EventName = "payment.bounced"
	if err := svc.Record(context.Background(), bad); err == nil {
		t.Fatalf("expected rejection of unknown event name")
	}

	noApp := succeededEvent(17500)
	noApp.ApplicationID = ""
	if err := svc.Record(context.Background(), noApp); err == nil {
		t.Fatalf("expected rejection of missing application id")
	}

	zeroAmount := succeededEvent(0)
	if err := svc.Record(context.Background(), zeroAmount); err == nil {
		t.Fatalf("succeeded event requires positive amount")
	}

	ok := succeededEvent(17500)
	if err := svc.Record(context.Background(), ok); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected one stored event")
	}
}

func TestIngestSuccessfulInstallmentPayment(t *testing.T) {
	svc, events, projections, customers, notifications := newIngestFixture(true)
	events.events = []ingest.PaymentEvent{succeededEvent(17500)}

	if err := svc.RunOnce(context.Background(), 50); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(events.processed) != 1 {
		t.Fatalf("event not marked processed")
	}
	if len(projections.transactions) != 1 || projections.transactions[0].Status != "successful" {
		t.Fatalf("expected one successful transaction, got %+v", projections.transactions)
	}
	if len(projections.settled) != 1 || !projections.settledPaid[0] {
		t.Fatalf("expected installment settled paid, got %+v", projections)
	}

	if len(customers.outcomes) != 1 {
		t.Fatalf("expected one customer outcome")
	}
	out := customers.outcomes[0]
	// 60 + default on-time bonus 5
	if out.RunningScore != 65 {
		t.Fatalf("running score = %d, want 65", out.RunningScore)
	}
	if out.Failures != 0 {
		t.Fatalf("success must reset failures, got %d", out.Failures)
	}
	if out.Tier != trust.TierVerified {
		t.Fatalf("tier = %s, want VERIFIED", out.Tier)
	}

	if len(notifications.created) != 1 || notifications.created[0].Type != notificationdomain.TypePaymentReceived {
		t.Fatalf("expected payment_received notification, got %+v", notifications.created)
	}
}

func TestIngestSubscriptionSkipsScheduleSettlement(t *testing.T) {
	svc, events, projections, _, _ := newIngestFixture(false)
	events.events = []ingest.PaymentEvent{succeededEvent(20000)}

	if err := svc.RunOnce(context.Background(), 50); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(projections.settled) != 0 {
		t.Fatalf("subscriptions have no schedule rows to settle")
	}
	if len(projections.transactions) != 1 {
		t.Fatalf("transaction still recorded for subscriptions")
	}
}

func TestIngestFailedPaymentAppliesPenalty(t *testing.T) {
	svc, events, projections, customers, notifications := newIngestFixture(true)
	failed := succeededEvent(17500)
	failed.EventName = ingest.EventPaymentFailed
	events.events = []ingest.PaymentEvent{failed}

	if err := svc.RunOnce(context.Background(), 50); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if projections.transactions[0].Status != "failed" {
		t.Fatalf("transaction status = %s, want failed", projections.transactions[0].Status)
	}
	if projections.settledPaid[0] {
		t.Fatalf("failed payment must settle the installment as missed")
	}

	out := customers.outcomes[0]
	// 60 - default penalty 10
	if out.RunningScore != 50 {
		t.Fatalf("running score = %d, want 50", out.RunningScore)
	}
	if out.Failures != 1 {
		t.Fatalf("failures = %d, want 1", out.Failures)
	}
	if notifications.created[0].Type != notificationdomain.TypePaymentFailed {
		t.Fatalf("expected payment_failed notification, got %s", notifications.created[0].Type)
	}
}

func TestIngestConsecutiveFailuresRestrict(t *testing.T) {
	svc, events, _, customers, notifications := newIngestFixture(true)
	customers.byHash["hash-1"].ConsecutiveFailures = 2

	failed := succeededEvent(17500)
	failed.EventName = ingest.EventPaymentFailed
	events.events = []ingest.PaymentEvent{failed}

	if err := svc.RunOnce(context.Background(), 50); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	out := customers.outcomes[0]
	if out.Failures != 3 {
		t.Fatalf("failures = %d, want 3", out.Failures)
	}
	if out.Tier != trust.TierRestricted {
		t.Fatalf("tier = %s, want RESTRICTED after hitting the failure limit", out.Tier)
	}

	var restricted bool
	for _, n := range notifications.created {
		if n.Type == notificationdomain.TypeCustomerRestricted {
			restricted = true
		}
	}
	if !restricted {
		t.Fatalf("expected customer_restricted notification, got %+v", notifications.created)
	}
}

func TestIngestTrustedGateOnHistory(t *testing.T) {
	svc, events, _, customers, _ := newIngestFixture(true)
	customers.byHash["hash-1"].RunningScore = 78
	customers.byHash["hash-1"].SuccessfulPayments = 3

	events.events = []ingest.PaymentEvent{succeededEvent(17500)}
	if err := svc.RunOnce(context.Background(), 50); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	out := customers.outcomes[0]
	// score climbs to 83 but only 4 successes against a gate of 5
	if out.RunningScore != 83 {
		t.Fatalf("running score = %d, want 83", out.RunningScore)
	}
	if out.Tier != trust.TierVerified {
		t.Fatalf("tier = %s, want VERIFIED until history gate passes", out.Tier)
	}
}
