package store

import (
	"context"
	"fmt"

	"fluxcrm/metamorph/internal/models"
	gormModels "fluxcrm/metamorph/internal/models/gorm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEntityStore is the default EntityStore over the entity_records table.
// Base field values live in one jsonb document, extension values in another.
type GormEntityStore struct {
	db *gorm.DB
}

// Ensure GormEntityStore implements EntityStore
var _ EntityStore = (*GormEntityStore)(nil)

// NewGormEntityStore creates a new GORM-backed entity store
func NewGormEntityStore(db *gorm.DB) *GormEntityStore {
	return &GormEntityStore{db: db}
}

// GetRecord retrieves one record, or (nil, nil) when absent
func (s *GormEntityStore) GetRecord(ctx context.Context, tenantID, entityTable, recordID string) (*models.Record, error) {
	var row gormModels.EntityRecord

	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND entity_table = ?", recordID, tenantID, entityTable).
		First(&row).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch record: %w", err)
	}

	return recordFromRow(&row), nil
}

// InsertRecord stores a new record and returns its generated id
func (s *GormEntityStore) InsertRecord(ctx context.Context, tenantID, entityTable string, data, extensions map[string]interface{}) (string, error) {
	row := gormModels.EntityRecord{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		EntityTable: entityTable,
		Data:        models.JSONB(data),
		Extensions:  models.JSONB(extensions),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}

	return row.ID, nil
}

// UpdateRecord replaces a record's data and extensions documents
func (s *GormEntityStore) UpdateRecord(ctx context.Context, tenantID, entityTable, recordID string, data, extensions map[string]interface{}) error {
	result := s.db.WithContext(ctx).
		Model(&gormModels.EntityRecord{}).
		Where("id = ? AND tenant_id = ? AND entity_table = ?", recordID, tenantID, entityTable).
		Updates(map[string]interface{}{
			"data":       models.JSONB(data),
			"extensions": models.JSONB(extensions),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// QueryRecords lists records of one entity table, newest first
func (s *GormEntityStore) QueryRecords(ctx context.Context, tenantID, entityTable string, limit int) ([]models.Record, error) {
	var rows []gormModels.EntityRecord

	q := s.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_table = ?", tenantID, entityTable).
		Order("created_at DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	records := make([]models.Record, 0, len(rows))
	for i := range rows {
		records = append(records, *recordFromRow(&rows[i]))
	}
	return records, nil
}

func recordFromRow(row *gormModels.EntityRecord) *models.Record {
	rec := &models.Record{
		ID:         row.ID,
		Fields:     map[string]interface{}(row.Data),
		Extensions: map[string]interface{}(row.Extensions),
	}
	if rec.Fields == nil {
		rec.Fields = map[string]interface{}{}
	}
	if rec.Extensions == nil {
		rec.Extensions = map[string]interface{}{}
	}
	return rec
}
