package entities

import "time"

type ApiKey struct {
	KeyHash   string    `db:"key_hash"`
	TenantID  string    `db:"tenant_id"`
	Status    bool      `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}
