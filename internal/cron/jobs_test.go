package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arcacommerce/arca-backend/internal/payouts"
	"github.com/arcacommerce/arca-backend/internal/points"
	"github.com/arcacommerce/arca-backend/pkg/logger"
)

type fakeGenerator struct {
	result *payouts.GenerateResult
	err    error
	calls  int
}

func (f *fakeGenerator) RunScheduled(context.Context) (*payouts.GenerateResult, error) {
	f.calls++
	return f.result, f.err
}

func TestPayoutJobRunsScheduledGeneration(t *testing.T) {
	gen := &fakeGenerator{result: &payouts.GenerateResult{
		PeriodStart:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		PayoutsCreated: 2,
	}}
	job, err := NewPayoutJob(PayoutJobParams{Logger: logger.Nop(), Generator: gen})
	if err != nil {
		t.Fatalf("NewPayoutJob: %v", err)
	}
	if job.Name() != "payout-generation" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
}

func TestPayoutJobReturnsPartialFailure(t *testing.T) {
	gen := &fakeGenerator{result: &payouts.GenerateResult{PayoutsCreated: 1}, err: errors.New("beneficiary failed")}
	job, err := NewPayoutJob(PayoutJobParams{Logger: logger.Nop(), Generator: gen})
	if err != nil {
		t.Fatalf("NewPayoutJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakePromoter struct {
	promoted int64
	err      error
}

func (f *fakePromoter) PromoteDue(context.Context) (int64, error) { return f.promoted, f.err }

func TestCommissionEligibilityJob(t *testing.T) {
	job, err := NewCommissionEligibilityJob(CommissionEligibilityJobParams{Logger: logger.Nop(), Promoter: &fakePromoter{promoted: 3}})
	if err != nil {
		t.Fatalf("NewCommissionEligibilityJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	failing, err := NewCommissionEligibilityJob(CommissionEligibilityJobParams{Logger: logger.Nop(), Promoter: &fakePromoter{err: errors.New("db down")}})
	if err != nil {
		t.Fatalf("NewCommissionEligibilityJob: %v", err)
	}
	if err := failing.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeDriftFinder struct {
	rows  []points.ReconcileResult
	limit int
}

func (f *fakeDriftFinder) FindDrift(_ context.Context, limit int) ([]points.ReconcileResult, error) {
	f.limit = limit
	return f.rows, nil
}

func TestPointsReconcileJobScansWithDefaultLimit(t *testing.T) {
	finder := &fakeDriftFinder{rows: []points.ReconcileResult{{UserID: uuid.New(), Cached: 10, LedgerSum: 8}}}
	job, err := NewPointsReconcileJob(PointsReconcileJobParams{Logger: logger.Nop(), Finder: finder})
	if err != nil {
		t.Fatalf("NewPointsReconcileJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if finder.limit != defaultDriftScanLimit {
		t.Fatalf("expected limit %d, got %d", defaultDriftScanLimit, finder.limit)
	}
}

func TestJobConstructorsRequireDependencies(t *testing.T) {
	if _, err := NewPayoutJob(PayoutJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected payout job error")
	}
	if _, err := NewCommissionEligibilityJob(CommissionEligibilityJobParams{Promoter: &fakePromoter{}}); err == nil {
		t.Fatal("expected eligibility job error")
	}
	if _, err := NewPointsReconcileJob(PointsReconcileJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected reconcile job error")
	}
	if _, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected retention job error")
	}
}
