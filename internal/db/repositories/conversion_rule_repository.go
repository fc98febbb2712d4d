package repositories

import (
	"context"
	"fmt"

	gormModels "fluxcrm/metamorph/internal/models/gorm"

	"gorm.io/gorm"
)

// ConversionRuleRepository handles conversion rule rows using GORM
type ConversionRuleRepository struct {
	db *gorm.DB
}

// NewConversionRuleRepository creates a new GORM-based conversion rule repository
func NewConversionRuleRepository(db *gorm.DB) *ConversionRuleRepository {
	return &ConversionRuleRepository{db: db}
}

// GetByID retrieves a rule by its ID
func (r *ConversionRuleRepository) GetByID(ctx context.Context, tenantID, ruleID string) (*gormModels.ConversionRule, error) {
	var rule gormModels.ConversionRule

	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", ruleID, tenantID).
		First(&rule).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch conversion rule: %w", err)
	}

	return &rule, nil
}

// ListBySourceEntity is the executor's primary read path, served by the
// (tenant_id, source_entity, is_active) index. isActive nil means both.
func (r *ConversionRuleRepository) ListBySourceEntity(ctx context.Context, tenantID, sourceEntity string, isActive *bool) ([]gormModels.ConversionRule, error) {
	var rules []gormModels.ConversionRule

	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID)

	if sourceEntity != "" {
		q = q.Where("source_entity = ?", sourceEntity)
	}
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}

	err := q.Order("created_at ASC").Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversion rules: %w", err)
	}

	return rules, nil
}

// Create inserts a new rule
func (r *ConversionRuleRepository) Create(ctx context.Context, rule *gormModels.ConversionRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create conversion rule: %w", err)
	}
	return nil
}

// Update persists changes to an existing rule
func (r *ConversionRuleRepository) Update(ctx context.Context, rule *gormModels.ConversionRule) error {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to update conversion rule: %w", err)
	}
	return nil
}

// SoftDelete marks a rule inactive
func (r *ConversionRuleRepository) SoftDelete(ctx context.Context, tenantID, ruleID string) error {
	result := r.db.WithContext(ctx).
		Model(&gormModels.ConversionRule{}).
		Where("id = ? AND tenant_id = ?", ruleID, tenantID).
		Update("is_active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to soft-delete conversion rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HardDelete removes a rule row entirely
func (r *ConversionRuleRepository) HardDelete(ctx context.Context, tenantID, ruleID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", ruleID, tenantID).
		Delete(&gormModels.ConversionRule{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete conversion rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountMappingReferences reports how many rules of the tenant reference a
// field name in either mapping of the given entity.
func (r *ConversionRuleRepository) CountMappingReferences(ctx context.Context, tenantID, entityTable string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gormModels.ConversionRule{}).
		Where("tenant_id = ? AND (source_entity = ? OR target_entity = ?)", tenantID, entityTable, entityTable).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count rule references: %w", err)
	}
	return count, nil
}
