package gorm

import (
	"time"

	"fluxcrm/metamorph/internal/models"
)

// ConversionRule converts records of one entity type into another when its
// trigger conditions hold. Mapping keys are validated against the source
// composed schema at CRUD time; drift afterwards degrades to warnings.
type ConversionRule struct {
	ID                    string               `gorm:"column:id;primaryKey;type:uuid"`
	TenantID              string               `gorm:"column:tenant_id;type:uuid;not null;index:idx_rules_lookup,priority:1"`
	Name                  string               `gorm:"column:name;type:varchar(200);not null"`
	IsActive              bool                 `gorm:"column:is_active;not null;index:idx_rules_lookup,priority:3"`
	SourceEntity          string               `gorm:"column:source_entity;type:varchar(100);not null;index:idx_rules_lookup,priority:2"`
	TargetEntity          string               `gorm:"column:target_entity;type:varchar(100);not null"`
	TriggerConditions     *models.ConditionNode `gorm:"column:trigger_conditions;type:jsonb;serializer:json"`
	FieldMapping          models.StringMap     `gorm:"column:field_mapping;type:jsonb"`
	ExtensionFieldMapping models.StringMap     `gorm:"column:extension_field_mapping;type:jsonb"`
	ConversionSettings    models.JSONB         `gorm:"column:conversion_settings;type:jsonb"`
	TargetNameTemplate    string               `gorm:"column:target_name_template;type:varchar(500)"`
	DefaultValues         models.JSONB         `gorm:"column:default_values;type:jsonb"`
	ApprovalSettings      models.JSONB         `gorm:"column:approval_settings;type:jsonb"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
	CreatedBy             *string              `gorm:"column:created_by;type:uuid"`
}

// TableName specifies the table name for GORM
func (ConversionRule) TableName() string {
	return "entity_conversion_rules"
}
