package integration

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
	"github.com/faithadeola/TrustRail/internal/repository/postgres"
	"github.com/faithadeola/TrustRail/test/integration/testutil"
)

func seedBusiness(t *testing.T, repo *postgres.BusinessRepository) *businessdomain.Entity {
	t.Helper()
	biz, err := repo.Create(context.Background(), businessdomain.CreateInput{
		Name:  "Acme Stores",
		Email: "owner@acme.ng",
	}, businessdomain.PaymentSlug("Acme Stores"))
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	return biz
}

func seedApplication(t *testing.T, repo *postgres.ApplicationRepository, businessID string) *appdomain.Entity {
	t.Helper()
	app, err := repo.Create(context.Background(), appdomain.CreateRecord{
		BusinessID:         businessID,
		CustomerName:       "Ada Obi",
		CustomerEmail:      "ada@example.com",
		CustomerHash:       customerdomain.HashID(businessID, "ada@example.com"),
		HasBVN:             true,
		BVNHash:            "deadbeef",
		PaymentType:        appdomain.PaymentTypeInstallment,
		TotalAmount:        decimal.NewNullDecimal(decimal.NewFromInt(150000)),
		PaymentFrequency:   trust.FrequencyMonthly,
		PreferredStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		BankName:           "GTBank",
		AccountNumber:      "0123456789",
		TrustScore:         90,
		Status:             trust.StatusApproved,
		Tier:               trust.TierTrusted,
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	return app
}

func TestPostgresRepositoriesCoreDomainFlow(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	businessRepo := postgres.NewBusinessRepository(pool)
	applicationRepo := postgres.NewApplicationRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	scheduleRepo := postgres.NewScheduleRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	biz := seedBusiness(t, businessRepo)

	bySlug, err := businessRepo.GetBySlug(ctx, biz.PaymentSlug)
	if err != nil {
		t.Fatalf("get business by slug: %v", err)
	}
	if bySlug.ID != biz.ID {
		t.Fatalf("business mismatch: got %s want %s", bySlug.ID, biz.ID)
	}

	rules := businessdomain.DefaultPaymentRules(biz.ID)
	rules.Trust.AutoApproveThreshold = 75
	saved, err := businessRepo.UpsertRules(ctx, rules)
	if err != nil {
		t.Fatalf("upsert rules: %v", err)
	}
	if saved.Trust.AutoApproveThreshold != 75 {
		t.Fatalf("rules not persisted: %+v", saved.Trust)
	}

	saved.Trust.AutoApproveThreshold = 65
	updated, err := businessRepo.UpsertRules(ctx, *saved)
	if err != nil {
		t.Fatalf("update rules: %v", err)
	}
	if updated.Trust.AutoApproveThreshold != 65 {
		t.Fatalf("rules upsert did not update: %+v", updated.Trust)
	}

	app := seedApplication(t, applicationRepo, biz.ID)

	byID, err := applicationRepo.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if !byID.TotalAmount.Decimal.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("total amount round trip: %s", byID.TotalAmount.Decimal)
	}

	list, err := applicationRepo.List(ctx, appdomain.ListFilter{BusinessID: biz.ID, Status: trust.StatusApproved, Limit: 10})
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 application, got %d", len(list))
	}

	if err := applicationRepo.SetAccountName(ctx, app.ID, "ADA OBI"); err != nil {
		t.Fatalf("set account name: %v", err)
	}

	analytics, err := applicationRepo.GetDashboardAnalytics(ctx, biz.ID)
	if err != nil {
		t.Fatalf("dashboard analytics: %v", err)
	}
	if analytics.TotalApplications != 1 || analytics.Approved != 1 {
		t.Fatalf("unexpected analytics %+v", analytics)
	}
	if !analytics.TotalVolume.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("volume = %s, want 150000", analytics.TotalVolume)
	}

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	err = scheduleRepo.CreatePlan(ctx, app.ID, decimal.NewFromInt(45000), []appdomain.PlanInstallment{
		{Number: 1, DueDate: start, Amount: decimal.NewFromInt(17500)},
		{Number: 2, DueDate: start.AddDate(0, 1, 0), Amount: decimal.NewFromInt(17500)},
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	if err := scheduleRepo.SettleNextInstallment(ctx, app.ID, true, start); err != nil {
		t.Fatalf("settle installment: %v", err)
	}

	cust, err := customerRepo.UpsertOnApplication(ctx, customerdomain.ApplicationUpsert{
		BusinessID:   biz.ID,
		CustomerHash: app.CustomerHash,
		Name:         "Ada Obi",
		Email:        "ada@example.com",
		TrustScore:   90,
		Tier:         trust.TierTrusted,
		Approved:     true,
	})
	if err != nil {
		t.Fatalf("upsert customer: %v", err)
	}
	if cust.ApplicationCount != 1 || cust.AverageTrustScore != 90 {
		t.Fatalf("unexpected aggregate %+v", cust)
	}

	// second application moves the running mean
	cust, err = customerRepo.UpsertOnApplication(ctx, customerdomain.ApplicationUpsert{
		BusinessID:   biz.ID,
		CustomerHash: app.CustomerHash,
		Name:         "Ada Obi",
		Email:        "ada@example.com",
		TrustScore:   70,
		Tier:         trust.TierTrusted,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if cust.ApplicationCount != 2 || cust.AverageTrustScore != 80 {
		t.Fatalf("running mean wrong: %+v", cust)
	}

	err = customerRepo.ApplyPaymentOutcome(ctx, customerdomain.PaymentOutcome{
		BusinessID:   biz.ID,
		CustomerHash: app.CustomerHash,
		Succeeded:    true,
		Amount:       decimal.NewFromInt(17500),
		OccurredAt:   start,
		RunningScore: 95,
		Tier:         trust.TierVerified,
	})
	if err != nil {
		t.Fatalf("apply outcome: %v", err)
	}

	got, err := customerRepo.Get(ctx, biz.ID, app.CustomerHash)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.TotalPayments != 1 || got.SuccessfulPayments != 1 {
		t.Fatalf("payment counters wrong: %+v", got)
	}
	if !got.TotalAmountPaid.Equal(decimal.NewFromInt(17500)) {
		t.Fatalf("amount paid = %s", got.TotalAmountPaid)
	}

	customers, err := customerRepo.List(ctx, customerdomain.ListFilter{BusinessID: biz.ID, Limit: 10})
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(customers) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(customers))
	}

	created, err := notificationRepo.Create(ctx, notificationdomain.CreateInput{
		BusinessID: biz.ID,
		Type:       notificationdomain.TypeApplicationApproved,
		Title:      "Application approved",
		Message:    "Ada Obi's application is approved",
	})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}

	unread, err := notificationRepo.CountUnread(ctx, biz.ID)
	if err != nil || unread != 1 {
		t.Fatalf("unread = %d err = %v", unread, err)
	}
	if err := notificationRepo.MarkRead(ctx, biz.ID, created.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ = notificationRepo.CountUnread(ctx, biz.ID)
	if unread != 0 {
		t.Fatalf("unread after mark = %d", unread)
	}
}

func TestOutboxClaimLifecycle(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	outboxRepo := postgres.NewOutboxRepository(pool)

	if err := outboxRepo.Enqueue(ctx, "verify_bank_account", []byte(`{"application_id":"x"}`)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	claimed, err := outboxRepo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(claimed) != 1 || claimed[0].Attempts != 1 {
		t.Fatalf("unexpected claim %+v", claimed)
	}

	// a second claim must not see the processing row
	again, err := outboxRepo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("processing job claimed twice")
	}

	if err := outboxRepo.MarkRetry(ctx, claimed[0].ID, time.Now().UTC().Add(-time.Second), "boom"); err != nil {
		t.Fatalf("mark retry: %v", err)
	}
	retried, err := outboxRepo.ClaimPending(ctx, 10)
	if err != nil {
		t.Fatalf("claim retry: %v", err)
	}
	if len(retried) != 1 || retried[0].Attempts != 2 {
		t.Fatalf("retry not reclaimed: %+v", retried)
	}

	if err := outboxRepo.MarkDone(ctx, retried[0].ID); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	final, _ := outboxRepo.ClaimPending(ctx, 10)
	if len(final) != 0 {
		t.Fatalf("done job reclaimed")
	}
}

func TestIngestEventQueue(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	businessRepo := postgres.NewBusinessRepository(pool)
	applicationRepo := postgres.NewApplicationRepository(pool)
	ingestRepo := postgres.NewIngestRepository(pool)

	biz := seedBusiness(t, businessRepo)
	app := seedApplication(t, applicationRepo, biz.ID)

	err := ingestRepo.Insert(ctx, ingest.PaymentEvent{
		EventName:     ingest.EventPaymentSucceeded,
		ApplicationID: app.ID,
		Amount:        decimal.NewFromInt(17500),
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}

	events, err := ingestRepo.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	if err := ingestRepo.MarkProcessed(ctx, events[0].ID); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	events, _ = ingestRepo.ListUnprocessed(ctx, 10)
	if len(events) != 0 {
		t.Fatalf("processed event still listed")
	}

	mandateRepo := postgres.NewMandateRepository(pool)
	if err := mandateRepo.Create(ctx, app.ID, "mnd_1", "active"); err != nil {
		t.Fatalf("create mandate: %v", err)
	}
	// upsert on the same application must not error
	if err := mandateRepo.Create(ctx, app.ID, "mnd_2", "active"); err != nil {
		t.Fatalf("upsert mandate: %v", err)
	}
}
