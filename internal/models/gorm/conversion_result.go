package gorm

import (
	"time"

	"fluxcrm/metamorph/internal/models"
)

// ConversionResult is the immutable audit record of one execution attempt.
// Retries append new rows; existing rows are never updated.
type ConversionResult struct {
	ID                       string            `gorm:"column:id;primaryKey;type:uuid"`
	TenantID                 string            `gorm:"column:tenant_id;type:uuid;not null;index"`
	Success                  bool              `gorm:"column:success;not null"`
	SourceRecordID           string            `gorm:"column:source_record_id;type:uuid;not null"`
	TargetRecordID           *string           `gorm:"column:target_record_id;type:uuid"`
	RuleID                   string            `gorm:"column:rule_id;type:uuid;not null;index"`
	RuleName                 string            `gorm:"column:rule_name;type:varchar(200)"`
	SourceEntity             string            `gorm:"column:source_entity;type:varchar(100)"`
	TargetEntity             string            `gorm:"column:target_entity;type:varchar(100)"`
	ErrorMessage             *string           `gorm:"column:error_message"`
	Warnings                 models.StringList `gorm:"column:warnings;type:jsonb"`
	ConvertedFields          models.StringList `gorm:"column:converted_fields;type:jsonb"`
	SkippedFields            models.StringList `gorm:"column:skipped_fields;type:jsonb"`
	ConvertedExtensionFields models.StringList `gorm:"column:converted_extension_fields;type:jsonb"`
	SkippedExtensionFields   models.StringList `gorm:"column:skipped_extension_fields;type:jsonb"`
	ExecutionTimeMs          int64             `gorm:"column:execution_time_ms"`
	CreatedAt                time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ConversionResult) TableName() string {
	return "conversion_execution_results"
}
