package cron

import (
	"context"
	"fmt"

	"github.com/arcacommerce/arca-backend/pkg/logger"
)

type commissionPromoter interface {
	PromoteDue(ctx context.Context) (int64, error)
}

type CommissionEligibilityJobParams struct {
	Logger   *logger.Logger
	Promoter commissionPromoter
}

func NewCommissionEligibilityJob(params CommissionEligibilityJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Promoter == nil {
		return nil, fmt.Errorf("commission promoter required")
	}
	return &commissionEligibilityJob{logg: params.Logger, promoter: params.Promoter}, nil
}

type commissionEligibilityJob struct {
	logg     *logger.Logger
	promoter commissionPromoter
}

func (j *commissionEligibilityJob) Name() string { return "commission-eligibility" }

// Run must be registered ahead of payout generation so freshly due records join the same cycle.
func (j *commissionEligibilityJob) Run(ctx context.Context) error {
	promoted, err := j.promoter.PromoteDue(ctx)
	if err != nil {
		return fmt.Errorf("promote commissions: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "promoted", promoted), "pending commissions promoted")
	return nil
}
