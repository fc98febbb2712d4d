package gorm

import "time"

// BaseField is one fixed field of an entity table's built-in schema.
// Base schemas are platform-managed and shared across tenants.
type BaseField struct {
	ID          string    `gorm:"column:id;primaryKey;type:uuid"`
	EntityTable string    `gorm:"column:entity_table;type:varchar(100);not null;index"`
	FieldName   string    `gorm:"column:field_name;type:varchar(100);not null"`
	FieldType   string    `gorm:"column:field_type;type:varchar(20);not null"`
	IsRequired  bool      `gorm:"column:is_required;default:false"`
	SortOrder   int       `gorm:"column:sort_order;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (BaseField) TableName() string {
	return "entity_base_fields"
}
