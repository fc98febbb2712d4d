package repositories

import (
	"context"
	"fmt"

	gormModels "fluxcrm/metamorph/internal/models/gorm"

	"gorm.io/gorm"
)

// ExtensionFieldRepository handles extension field definition rows using GORM
type ExtensionFieldRepository struct {
	db *gorm.DB
}

// NewExtensionFieldRepository creates a new GORM-based extension field repository
func NewExtensionFieldRepository(db *gorm.DB) *ExtensionFieldRepository {
	return &ExtensionFieldRepository{db: db}
}

// GetByID retrieves a field definition by its ID
func (r *ExtensionFieldRepository) GetByID(ctx context.Context, tenantID, fieldID string) (*gormModels.ExtensionField, error) {
	var field gormModels.ExtensionField

	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", fieldID, tenantID).
		First(&field).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch extension field: %w", err)
	}

	return &field, nil
}

// GetActiveByName retrieves the active definition for (tenant, table, name)
func (r *ExtensionFieldRepository) GetActiveByName(ctx context.Context, tenantID, entityTable, fieldName string) (*gormModels.ExtensionField, error) {
	var field gormModels.ExtensionField

	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_table = ? AND field_name = ? AND is_active = ?",
			tenantID, entityTable, fieldName, true).
		First(&field).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch extension field: %w", err)
	}

	return &field, nil
}

// ListActive retrieves all active field definitions for a tenant, optionally
// scoped to one entity table, in creation order.
func (r *ExtensionFieldRepository) ListActive(ctx context.Context, tenantID, entityTable string) ([]gormModels.ExtensionField, error) {
	var fields []gormModels.ExtensionField

	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true)

	if entityTable != "" {
		q = q.Where("entity_table = ?", entityTable)
	}

	err := q.Order("created_at ASC").Find(&fields).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list extension fields: %w", err)
	}

	return fields, nil
}

// Create inserts a new field definition
func (r *ExtensionFieldRepository) Create(ctx context.Context, field *gormModels.ExtensionField) error {
	if err := r.db.WithContext(ctx).Create(field).Error; err != nil {
		return fmt.Errorf("failed to create extension field: %w", err)
	}
	return nil
}

// Update persists changes to an existing field definition
func (r *ExtensionFieldRepository) Update(ctx context.Context, field *gormModels.ExtensionField) error {
	if err := r.db.WithContext(ctx).Save(field).Error; err != nil {
		return fmt.Errorf("failed to update extension field: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a field definition. Rows are never hard-deleted
// because rules may still reference them.
func (r *ExtensionFieldRepository) Deactivate(ctx context.Context, tenantID, fieldID string) error {
	result := r.db.WithContext(ctx).
		Model(&gormModels.ExtensionField{}).
		Where("id = ? AND tenant_id = ?", fieldID, tenantID).
		Update("is_active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to deactivate extension field: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
