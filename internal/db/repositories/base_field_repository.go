package repositories

import (
	"context"
	"fmt"

	gormModels "fluxcrm/metamorph/internal/models/gorm"

	"gorm.io/gorm"
)

// BaseFieldRepository reads the platform-managed base schemas
type BaseFieldRepository struct {
	db *gorm.DB
}

// NewBaseFieldRepository creates a new GORM-based base field repository
func NewBaseFieldRepository(db *gorm.DB) *BaseFieldRepository {
	return &BaseFieldRepository{db: db}
}

// ListByEntityTable retrieves the fixed base fields of one entity table in
// declared sort order
func (r *BaseFieldRepository) ListByEntityTable(ctx context.Context, entityTable string) ([]gormModels.BaseField, error) {
	var fields []gormModels.BaseField

	err := r.db.WithContext(ctx).
		Where("entity_table = ?", entityTable).
		Order("sort_order ASC, created_at ASC").
		Find(&fields).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list base fields: %w", err)
	}

	return fields, nil
}

// Create inserts a base field row (used by seeding and tests)
func (r *BaseFieldRepository) Create(ctx context.Context, field *gormModels.BaseField) error {
	if err := r.db.WithContext(ctx).Create(field).Error; err != nil {
		return fmt.Errorf("failed to create base field: %w", err)
	}
	return nil
}
