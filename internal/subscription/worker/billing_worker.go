// Package worker runs the scheduled billing job that turns due subscriptions
// into expenses.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

// BillingProcessor bills every subscription due on or before the given date.
type BillingProcessor interface {
	ProcessDue(ctx context.Context, date time.Time) (int, error)
}

// BillingWorker schedules recurring billing runs. Billing is idempotent per
// period because each run advances the next billing date past the charged
// period; an overlapping or repeated run finds nothing due.
type BillingWorker struct {
	processor BillingProcessor
	scheduler *cron.Cron
	spec      string
	logger    *slog.Logger
}

// NewBillingWorker creates a billing worker with the given cron spec, for
// example "0 0 * * *" for a daily midnight run.
func NewBillingWorker(processor BillingProcessor, spec string, logger *slog.Logger) *BillingWorker {
	return &BillingWorker{
		processor: processor,
		scheduler: cron.New(),
		spec:      spec,
		logger:    logger,
	}
}

// Start registers the billing job and starts the scheduler.
func (w *BillingWorker) Start() error {
	_, err := w.scheduler.AddFunc(w.spec, func() {
		w.RunOnce(context.Background())
	})
	if err != nil {
		return apperrors.Wrap(err, "invalid billing cron spec")
	}

	w.scheduler.Start()
	w.logger.Info("billing worker started", slog.String("spec", w.spec))
	return nil
}

// Stop stops the scheduler and waits for a running billing job to finish or
// the context to expire.
func (w *BillingWorker) Stop(ctx context.Context) error {
	stopCtx := w.scheduler.Stop()

	select {
	case <-stopCtx.Done():
		w.logger.Info("billing worker stopped")
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(ctx.Err(), "billing worker shutdown timed out")
	}
}

// RunOnce executes a single billing run for today. Exposed so a run can be
// triggered outside the schedule.
func (w *BillingWorker) RunOnce(ctx context.Context) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	processed, err := w.processor.ProcessDue(ctx, today)
	if err != nil {
		w.logger.Error("billing run finished with failures",
			slog.Int("processed", processed),
			slog.String("error", err.Error()))
		return
	}

	if processed > 0 {
		w.logger.Info("billing run finished", slog.Int("processed", processed))
	}
}
