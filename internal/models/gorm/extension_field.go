package gorm

import (
	"time"

	"fluxcrm/metamorph/internal/models"
)

// ExtensionField is one tenant-scoped custom field declaration.
// (tenant_id, entity_table, field_name) is unique among active rows;
// deactivation is the only deletion path.
type ExtensionField struct {
	ID              string           `gorm:"column:id;primaryKey;type:uuid"`
	TenantID        string           `gorm:"column:tenant_id;type:uuid;not null;index:idx_ext_fields_lookup,priority:1"`
	EntityTable     string           `gorm:"column:entity_table;type:varchar(100);not null;index:idx_ext_fields_lookup,priority:2"`
	FieldName       string           `gorm:"column:field_name;type:varchar(100);not null"`
	FieldType       string           `gorm:"column:field_type;type:varchar(20);not null"`
	DisplayName     string           `gorm:"column:display_name;type:varchar(200)"`
	IsRequired      bool             `gorm:"column:is_required;default:false"`
	IsSearchable    bool             `gorm:"column:is_searchable;default:false"`
	IsFilterable    bool             `gorm:"column:is_filterable;default:false"`
	IsSortable      bool             `gorm:"column:is_sortable;default:false"`
	DefaultValue    models.JSONValue `gorm:"column:default_value;type:jsonb"`
	ValidationRules models.JSONB     `gorm:"column:validation_rules;type:jsonb"`
	UIConfig        models.JSONB     `gorm:"column:ui_config;type:jsonb"`
	IsActive        bool             `gorm:"column:is_active;not null;index:idx_ext_fields_lookup,priority:3"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	CreatedBy       *string          `gorm:"column:created_by;type:uuid"`
}

// TableName specifies the table name for GORM
func (ExtensionField) TableName() string {
	return "extension_field_definitions"
}
