package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/faithadeola/TrustRail/internal/domain/application"
	"github.com/faithadeola/TrustRail/internal/provider"
)

const (
	verifyAccountTopic   = "verify_bank_account"
	registerMandateTopic = "register_mandate"
)

type OutboxJob struct {
	ID          int64
	Topic       string
	Payload     []byte
	Status      string
	Attempts    int32
	LastError   string
	AvailableAt time.Time
}

type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int32) ([]OutboxJob, error)
	MarkDone(ctx context.Context, jobID int64) error
	MarkRetry(ctx context.Context, jobID int64, nextAvailableAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, jobID int64, lastError string) error
}

type ApplicationRepository interface {
	GetByID(ctx context.Context, id string) (*application.Entity, error)
	SetAccountName(ctx context.Context, id, accountName string) error
}

type MandateRepository interface {
	Create(ctx context.Context, applicationID, providerRef, status string) error
}

type Worker struct {
	outboxRepo   OutboxRepository
	appRepo      ApplicationRepository
	mandateRepo  MandateRepository
	gateway      provider.Gateway
	maxAttempts  int32
	now          func() time.Time
	retryBackoff func(attempt int32) time.Duration
}

func NewWorker(outboxRepo OutboxRepository, appRepo ApplicationRepository, mandateRepo MandateRepository, gateway provider.Gateway) *Worker {
	return &Worker{
		outboxRepo:  outboxRepo,
		appRepo:     appRepo,
		mandateRepo: mandateRepo,
		gateway:     gateway,
		maxAttempts: 5,
		now:         func() time.Time { return time.Now().UTC() },
		retryBackoff: func(attempt int32) time.Duration {
			if attempt < 1 {
				attempt = 1
			}
			return time.Duration(attempt*15) * time.Second
		},
	}
}

func (w *Worker) RunOnce(ctx context.Context, batchSize int32) error {
	jobs, err := w.outboxRepo.ClaimPending(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			return err
		}
	}

	return nil
}

func (w *Worker) processJob(ctx context.Context, job OutboxJob) error {
	switch job.Topic {
	case verifyAccountTopic:
		return w.processVerifyAccount(ctx, job)
	case registerMandateTopic:
		return w.processRegisterMandate(ctx, job)
	default:
		if job.Attempts >= w.maxAttempts {
			return w.outboxRepo.MarkFailed(ctx, job.ID, "unsupported_topic")
		}
		next := w.now().Add(w.retryBackoff(job.Attempts))
		return w.outboxRepo.MarkRetry(ctx, job.ID, next, "unsupported_topic")
	}
}

type verifyAccountPayload struct {
	ApplicationID string `json:"application_id"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}

func (w *Worker) processVerifyAccount(ctx context.Context, job OutboxJob) error {
	var payload verifyAccountPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return w.handleJobError(ctx, job, fmt.Errorf("invalid_payload"))
	}
	if payload.ApplicationID == "" || payload.AccountNumber == "" {
		return w.handleJobError(ctx, job, errors.New("missing_verification_fields"))
	}

	accountName, err := w.gateway.VerifyAccount(ctx, payload.BankName, payload.AccountNumber)
	if err != nil {
		return w.handleJobError(ctx, job, err)
	}

	if err := w.appRepo.SetAccountName(ctx, payload.ApplicationID, accountName); err != nil {
		return w.handleJobError(ctx, job, err)
	}

	return w.outboxRepo.MarkDone(ctx, job.ID)
}

type registerMandatePayload struct {
	ApplicationID string `json:"application_id"`
}

func (w *Worker) processRegisterMandate(ctx context.Context, job OutboxJob) error {
	var payload registerMandatePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return w.handleJobError(ctx, job, fmt.Errorf("invalid_payload"))
	}
	if payload.ApplicationID == "" {
		return w.handleJobError(ctx, job, errors.New("missing_application_id"))
	}

	app, err := w.appRepo.GetByID(ctx, payload.ApplicationID)
	if err != nil {
		return w.handleJobError(ctx, job, err)
	}

	ref, err := w.gateway.RegisterMandate(ctx, provider.MandateInput{
		ApplicationID:   app.ID,
		AccountNumber:   app.AccountNumber,
		BankName:        app.BankName,
		RecurringAmount: app.RecurringAmount.Decimal,
		Frequency:       string(app.PaymentFrequency),
	})
	if err != nil {
		return w.handleJobError(ctx, job, err)
	}

	if err := w.mandateRepo.Create(ctx, app.ID, ref, "active"); err != nil {
		return w.handleJobError(ctx, job, err)
	}

	return w.outboxRepo.MarkDone(ctx, job.ID)
}

func (w *Worker) handleJobError(ctx context.Context, job OutboxJob, err error) error {
	msg := err.Error()
	if job.Attempts >= w.maxAttempts {
		return w.outboxRepo.MarkFailed(ctx, job.ID, msg)
	}
	next := w.now().Add(w.retryBackoff(job.Attempts))
	return w.outboxRepo.MarkRetry(ctx, job.ID, next, msg)
}
