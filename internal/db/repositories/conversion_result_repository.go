package repositories

import (
	"context"
	"fmt"
	"time"

	gormModels "fluxcrm/metamorph/internal/models/gorm"

	"gorm.io/gorm"
)

// ConversionResultRepository persists immutable execution result rows.
// There is deliberately no Update method: retries append new rows.
type ConversionResultRepository struct {
	db *gorm.DB
}

// NewConversionResultRepository creates a new GORM-based result repository
func NewConversionResultRepository(db *gorm.DB) *ConversionResultRepository {
	return &ConversionResultRepository{db: db}
}

// Create inserts one execution result
func (r *ConversionResultRepository) Create(ctx context.Context, result *gormModels.ConversionResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create conversion result: %w", err)
	}
	return nil
}

// ListByRule retrieves results for one rule, newest first
func (r *ConversionResultRepository) ListByRule(ctx context.Context, tenantID, ruleID string, limit int) ([]gormModels.ConversionResult, error) {
	var results []gormModels.ConversionResult

	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID)

	if ruleID != "" {
		q = q.Where("rule_id = ?", ruleID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	err := q.Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversion results: %w", err)
	}

	return results, nil
}

// DeleteOlderThan prunes result rows past the retention window. Returns the
// number of rows removed.
func (r *ConversionResultRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&gormModels.ConversionResult{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune conversion results: %w", result.Error)
	}
	return result.RowsAffected, nil
}
