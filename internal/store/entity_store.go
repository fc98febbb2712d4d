package store

import (
	"context"

	"fluxcrm/metamorph/internal/models"
)

// EntityStore is the engine's view of per-tenant record storage. The engine
// never assumes a backend; conversions work against any implementation.
// GetRecord returns (nil, nil) when the record is absent.
type EntityStore interface {
	GetRecord(ctx context.Context, tenantID, entityTable, recordID string) (*models.Record, error)
	InsertRecord(ctx context.Context, tenantID, entityTable string, data, extensions map[string]interface{}) (string, error)
	UpdateRecord(ctx context.Context, tenantID, entityTable, recordID string, data, extensions map[string]interface{}) error
	QueryRecords(ctx context.Context, tenantID, entityTable string, limit int) ([]models.Record, error)
}
