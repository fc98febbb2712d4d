package gorm

import (
	"time"

	"fluxcrm/metamorph/internal/models"
)

// EntityRecord is the default store's row shape: base field values in a
// jsonb document plus a separate jsonb map for extension values.
type EntityRecord struct {
	ID          string       `gorm:"column:id;primaryKey;type:uuid"`
	TenantID    string       `gorm:"column:tenant_id;type:uuid;not null;index:idx_records_lookup,priority:1"`
	EntityTable string       `gorm:"column:entity_table;type:varchar(100);not null;index:idx_records_lookup,priority:2"`
	Data        models.JSONB `gorm:"column:data;type:jsonb;not null"`
	Extensions  models.JSONB `gorm:"column:extensions;type:jsonb"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (EntityRecord) TableName() string {
	return "entity_records"
}
