package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/siegrin/basecamp-backend/pkg/logger"
)

type completedTotalsSource interface {
	CompletedTotals(ctx context.Context) (int64, decimal.Decimal, error)
}

// ReconcileJob recomputes the rental counters from the rentals table. The
// incremental counters drift when a completion's analytics write is missed;
// this job restores them to ground truth.
type ReconcileJob struct {
	rentals  completedTotalsSource
	snapshot snapshotReconciler
	logg     *logger.Logger
}

type snapshotReconciler interface {
	SetRentalTotals(ctx context.Context, count int64, revenue decimal.Decimal) error
}

// NewReconcileJob constructs the cron job.
func NewReconcileJob(rentals completedTotalsSource, snapshot snapshotReconciler, logg *logger.Logger) (*ReconcileJob, error) {
	if rentals == nil {
		return nil, fmt.Errorf("rental totals source required")
	}
	if snapshot == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &ReconcileJob{rentals: rentals, snapshot: snapshot, logg: logg}, nil
}

// Name implements cron.Job.
func (j *ReconcileJob) Name() string {
	return "analytics-reconcile"
}

// Run implements cron.Job.
func (j *ReconcileJob) Run(ctx context.Context) error {
	count, revenue, err := j.rentals.CompletedTotals(ctx)
	if err != nil {
		return multierr.Append(fmt.Errorf("computing completed rental totals"), err)
	}

	if err := j.snapshot.SetRentalTotals(ctx, count, revenue); err != nil {
		return multierr.Append(fmt.Errorf("writing reconciled totals"), err)
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"total_rentals": count,
		"total_revenue": revenue.String(),
	}), "analytics rental counters reconciled")
	return nil
}
