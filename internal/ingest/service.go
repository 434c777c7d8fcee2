package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faithadeola/TrustRail/internal/domain/application"
	"github.com/faithadeola/TrustRail/internal/domain/business"
	"github.com/faithadeola/TrustRail/internal/domain/customer"
	"github.com/faithadeola/TrustRail/internal/domain/notification"
	"github.com/faithadeola/TrustRail/internal/domain/trust"
)

const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// PaymentEvent is one provider webhook row awaiting projection.
type PaymentEvent struct {
	ID            int64
	EventName     string
	ApplicationID string
	Amount        decimal.Decimal
	OccurredAt    time.Time
	RawData       []byte
}

type EventRepository interface {
	Insert(ctx context.Context, ev PaymentEvent) error
	ListUnprocessed(ctx context.Context, limit int32) ([]PaymentEvent, error)
	MarkProcessed(ctx context.Context, eventID int64) error
}

type TransactionRecord struct {
	BusinessID    string
	ApplicationID string
	CustomerHash  string
	Amount        decimal.Decimal
	Status        string
	OccurredAt    time.Time
}

type ProjectionRepository interface {
	InsertTransaction(ctx context.Context, tx TransactionRecord) error
	SettleNextInstallment(ctx context.Context, applicationID string, paid bool, at time.Time) error
}

type ApplicationReader interface {
	GetByID(ctx context.Context, id string) (*application.Entity, error)
}

type RulesReader interface {
	Rules(ctx context.Context, businessID string) (*business.PaymentRules, error)
}

// Service projects provider payment events onto transactions, schedule rows,
// and the incrementally-maintained customer aggregates, applying the
// reputation policy from the business's rule config: on-time bonus, late
// penalty, consecutive-failure demotion, and the trusted-tier history gate.
type Service struct {
	events        EventRepository
	projections   ProjectionRepository
	applications  ApplicationReader
	rules         RulesReader
	customers     customer.Repository
	notifications notification.Repository
}

func NewService(
	events EventRepository,
	projections ProjectionRepository,
	applications ApplicationReader,
	rules RulesReader,
	customers customer.Repository,
	notifications notification.Repository,
) *Service {
	return &Service{
		events:        events,
		projections:   projections,
		applications:  applications,
		rules:         rules,
		customers:     customers,
		notifications: notifications,
	}
}

// Record validates and stores an incoming webhook event for the ingest loop.
func (s *Service) Record(ctx context.Context, ev PaymentEvent) error {
	name := strings.TrimSpace(ev.EventName)
	if name != EventPaymentSucceeded && name != EventPaymentFailed {
		return fmt.Errorf("unsupported event %q", ev.EventName)
	}
	if strings.TrimSpace(ev.ApplicationID) == "" {
		return errors.New("missing application_id")
	}
	if name == EventPaymentSucceeded && !ev.Amount.IsPositive() {
		return errors.New("succeeded event requires positive amount")
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return s.events.Insert(ctx, ev)
}

func (s *Service) RunOnce(ctx context.Context, batchSize int32) error {
	events, err := s.events.ListUnprocessed(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, ev := range events {
		if err := s.processEvent(ctx, ev); err != nil {
			return err
		}
		if err := s.events.MarkProcessed(ctx, ev.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) processEvent(ctx context.Context, ev PaymentEvent) error {
	app, err := s.applications.GetByID(ctx, ev.ApplicationID)
	if err != nil {
		return fmt.Errorf("event %d: %w", ev.ID, err)
	}
	rules, err := s.rules.Rules(ctx, app.BusinessID)
	if err != nil {
		return fmt.Errorf("event %d: %w", ev.ID, err)
	}

	succeeded := strings.TrimSpace(ev.EventName) == EventPaymentSucceeded

	txStatus := "failed"
	if succeeded {
		txStatus = "successful"
	}
	if err := s.projections.InsertTransaction(ctx, TransactionRecord{
		BusinessID:    app.BusinessID,
		ApplicationID: app.ID,
		CustomerHash:  app.CustomerHash,
		Amount:        ev.Amount,
		Status:        txStatus,
		OccurredAt:    ev.OccurredAt,
	}); err != nil {
		return err
	}

	if app.PaymentType == application.PaymentTypeInstallment {
		if err := s.projections.SettleNextInstallment(ctx, app.ID, succeeded, ev.OccurredAt); err != nil {
			return err
		}
	}

	outcome, demoted, err := s.customerOutcome(ctx, app, rules.Trust, succeeded, ev)
	if err != nil {
		return err
	}
	if err := s.customers.ApplyPaymentOutcome(ctx, outcome); err != nil {
		return err
	}

	return s.notifyOutcome(ctx, app, succeeded, demoted, ev.Amount)
}

// customerOutcome folds one payment result into the customer's running
// reputation: bonus on success, penalty on failure, restriction once the
// consecutive-failure limit is hit.
func (s *Service) customerOutcome(ctx context.Context, app *application.Entity, cfg trust.RuleConfig, succeeded bool, ev PaymentEvent) (customer.PaymentOutcome, bool, error) {
	cust, err := s.customers.Get(ctx, app.BusinessID, app.CustomerHash)
	if err != nil {
		return customer.PaymentOutcome{}, false, fmt.Errorf("event %d: %w", ev.ID, err)
	}

	score := cust.RunningScore
	failures := cust.ConsecutiveFailures
	successCount := int(cust.SuccessfulPayments)

	if succeeded {
		score += cfg.OnTimeBonus
		failures = 0
		successCount++
	} else {
		score -= cfg.LatePaymentPenalty
		failures++
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	tier := trust.TierWithHistory(score, successCount, cfg)
	demoted := false
	if failures >= cfg.ConsecutiveFailureLimit && tier != trust.TierDefaulted {
		if cust.Tier != trust.TierRestricted {
			demoted = true
		}
		tier = trust.TierRestricted
	}

	return customer.PaymentOutcome{
		BusinessID:   app.BusinessID,
		CustomerHash: app.CustomerHash,
		Succeeded:    succeeded,
		Amount:       ev.Amount,
		OccurredAt:   ev.OccurredAt,
		RunningScore: score,
		Failures:     failures,
		Tier:         tier,
	}, demoted, nil
}

func (s *Service) notifyOutcome(ctx context.Context, app *application.Entity, succeeded, demoted bool, amount decimal.Decimal) error {
	if succeeded {
		_, err := s.notifications.Create(ctx, notification.CreateInput{
			BusinessID: app.BusinessID,
			Type:       notification.TypePaymentReceived,
			Title:      "Payment received",
			Message:    fmt.Sprintf("%s paid %s", app.CustomerName, amount.StringFixed(2)),
		})
		return err
	}

	if _, err := s.notifications.Create(ctx, notification.CreateInput{
		BusinessID: app.BusinessID,
		Type:       notification.TypePaymentFailed,
		Title:      "Payment failed",
		Message:    fmt.Sprintf("A payment from %s failed", app.CustomerName),
	}); err != nil {
		return err
	}
	if demoted {
		_, err := s.notifications.Create(ctx, notification.CreateInput{
			BusinessID: app.BusinessID,
			Type:       notification.TypeCustomerRestricted,
			Title:      "Customer restricted",
			Message:    fmt.Sprintf("%s was restricted after repeated failed payments", app.CustomerName),
		})
		return err
	}
	return nil
}
