package cron

import (
	"context"
	"fmt"

	"github.com/arcacommerce/arca-backend/internal/points"
	"github.com/arcacommerce/arca-backend/pkg/logger"
)

const defaultDriftScanLimit = 500

type driftFinder interface {
	FindDrift(ctx context.Context, limit int) ([]points.ReconcileResult, error)
}

type PointsReconcileJobParams struct {
	Logger *logger.Logger
	Finder driftFinder
	Limit  int
}

func NewPointsReconcileJob(params PointsReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Finder == nil {
		return nil, fmt.Errorf("drift finder required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultDriftScanLimit
	}
	return &pointsReconcileJob{logg: params.Logger, finder: params.Finder, limit: limit}, nil
}

// pointsReconcileJob reports users whose cached balance disagrees with their ledger.
// It never rewrites balances.
type pointsReconcileJob struct {
	logg   *logger.Logger
	finder driftFinder
	limit  int
}

func (j *pointsReconcileJob) Name() string { return "points-reconcile" }

func (j *pointsReconcileJob) Run(ctx context.Context) error {
	drift, err := j.finder.FindDrift(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("scan points drift: %w", err)
	}
	for _, row := range drift {
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"user_id":    row.UserID.String(),
			"cached":     row.Cached,
			"ledger_sum": row.LedgerSum,
		}), "points balance drifted from ledger")
	}
	j.logg.Info(j.logg.WithField(ctx, "drifted_users", len(drift)), "points reconcile complete")
	return nil
}
