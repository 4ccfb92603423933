package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ita-digital/backoffice/internal/billing"
	jobmetrics "github.com/ita-digital/backoffice/internal/jobs"
)

// NewOverdueScanHandler returns the handler for TaskTypeOverdueScan. Recorded
// pending payments past their due date become overdue; generated ledger
// entries are recomputed on read and are never touched here.
func NewOverdueScanHandler(logger *slog.Logger, svc *billing.Service, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("overdue_scan")
		updated, err := svc.MarkOverduePayments(ctx)
		if err != nil {
			logger.Error("overdue scan", slog.Any("error", err))
			return tracker.End(err)
		}
		if updated > 0 {
			logger.Info("overdue scan reclassified payments", slog.Int("count", updated))
		}
		return tracker.End(nil)
	}
}
