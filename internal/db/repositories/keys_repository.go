package repositories

import (
	"context"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

type KeysRepo struct {
	db *sqlx.DB
}

func NewApiKeysRepo(db *sqlx.DB) *KeysRepo {
	return &KeysRepo{db}
}

func (r *KeysRepo) GetStatus(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	var keyRes entities.ApiKey

	err := r.db.QueryRowxContext(ctx, constants.GetStatusByApiKey, keyHash).StructScan(&keyRes)

	if err != nil {
		return nil, err
	}

	return &keyRes, nil
}

func (r *KeysRepo) Insert(ctx context.Context, key *entities.ApiKey) error {
	query := `
		INSERT INTO api_keys (
			key_hash,
			tenant_id,
			status
		)
		VALUES ($1, $2, $3)
		RETURNING created_at;
	`

	return r.db.QueryRowxContext(ctx, query,
		key.KeyHash,
		key.TenantID,
		key.Status,
	).Scan(&key.CreatedAt)
}
