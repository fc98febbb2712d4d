package db

import (
	"fmt"
	"log"

	gormModels "fluxcrm/metamorph/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var PgDB *gorm.DB

func InitPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	PgDB = db
	log.Println("Connected to Postgres via GORM")
	return db, nil
}

// Migrate applies the engine's schema. Safe to run on every startup.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&gormModels.BaseField{},
		&gormModels.ExtensionField{},
		&gormModels.ConversionRule{},
		&gormModels.ConversionResult{},
		&gormModels.EntityRecord{},
	); err != nil {
		return err
	}

	// api_keys is read through sqlx, not GORM, so it gets plain DDL.
	return db.Exec(`
		CREATE TABLE IF NOT EXISTS api_keys (
			key_hash   TEXT PRIMARY KEY,
			tenant_id  TEXT NOT NULL,
			status     BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`).Error
}
