package workers

import (
	"context"
	"time"

	"fluxcrm/metamorph/internal/db/repositories"
	"fluxcrm/metamorph/internal/events"
)

type WorkersContainer struct {
	Dispatcher *events.Dispatcher
	Retention  *ResultRetentionWorker
}

// InitWorkers starts the audit event dispatcher and the result retention
// sweeper.
func InitWorkers(
	ctx context.Context,
	dispatcher *events.Dispatcher,
	resultRepo *repositories.ConversionResultRepository,
	retention time.Duration,
) *WorkersContainer {
	go dispatcher.Run()

	retentionWorker := NewResultRetentionWorker(resultRepo, retention)
	go retentionWorker.Start(ctx, 1*time.Hour)

	return &WorkersContainer{
		Dispatcher: dispatcher,
		Retention:  retentionWorker,
	}
}
