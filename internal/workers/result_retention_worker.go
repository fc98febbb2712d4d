package workers

import (
	"context"
	"time"

	"fluxcrm/metamorph/internal/db/repositories"
	"fluxcrm/metamorph/internal/logging"
)

// ResultRetentionWorker prunes conversion result rows older than the
// retention window. Results are append-only, so without pruning the audit
// table grows without bound.
type ResultRetentionWorker struct {
	resultRepo *repositories.ConversionResultRepository
	retention  time.Duration
}

// NewResultRetentionWorker creates a retention worker with the given window.
func NewResultRetentionWorker(resultRepo *repositories.ConversionResultRepository, retention time.Duration) *ResultRetentionWorker {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &ResultRetentionWorker{
		resultRepo: resultRepo,
		retention:  retention,
	}
}

// Start runs one sweep immediately and then on every tick until ctx is
// cancelled.
func (w *ResultRetentionWorker) Start(ctx context.Context, interval time.Duration) {
	w.sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ResultRetentionWorker) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.retention)

	removed, err := w.resultRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logging.Error("Result retention sweep failed", "error", err.Error())
		return
	}
	if removed > 0 {
		logging.Info("Result retention sweep completed",
			"removed", removed,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
}
