package cron

import (
	"context"
	"fmt"

	"github.com/arcacommerce/arca-backend/internal/payouts"
	"github.com/arcacommerce/arca-backend/pkg/logger"
)

type payoutGenerator interface {
	RunScheduled(ctx context.Context) (*payouts.GenerateResult, error)
}

type PayoutJobParams struct {
	Logger    *logger.Logger
	Generator payoutGenerator
}

func NewPayoutJob(params PayoutJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("payout generator required")
	}
	return &payoutJob{logg: params.Logger, generator: params.Generator}, nil
}

// payoutJob sweeps the trailing window into payouts. Per-beneficiary failures are returned
// after the rest of the batch has been processed.
type payoutJob struct {
	logg      *logger.Logger
	generator payoutGenerator
}

func (j *payoutJob) Name() string { return "payout-generation" }

func (j *payoutJob) Run(ctx context.Context) error {
	result, err := j.generator.RunScheduled(ctx)
	if result != nil {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"period_start":       result.PeriodStart,
			"period_end":         result.PeriodEnd,
			"payouts_created":    result.PayoutsCreated,
			"commissions_linked": result.CommissionsLinked,
		}), "payout generation summary")
	}
	if err != nil {
		return fmt.Errorf("generate payouts: %w", err)
	}
	return nil
}
