package repositories

import (
	"context"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// StatsRepository serves the read-only aggregate queries behind the rules
// stats endpoint. These don't fit ORM shapes, so they stay on sqlx.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db}
}

func (r *StatsRepository) GetRuleStats(ctx context.Context, tenantID string) (*entities.RuleStats, error) {
	var stats entities.RuleStats

	err := r.db.QueryRowxContext(ctx, constants.GetRuleStatsByTenant, tenantID).StructScan(&stats)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *StatsRepository) GetExecutionStats(ctx context.Context, tenantID string) (*entities.ExecutionStats, error) {
	var stats entities.ExecutionStats

	err := r.db.QueryRowxContext(ctx, constants.GetExecutionStatsByTenant, tenantID).StructScan(&stats)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *StatsRepository) GetExecutionStatsByRule(ctx context.Context, tenantID, ruleID string) (*entities.ExecutionStats, error) {
	var stats entities.ExecutionStats

	err := r.db.QueryRowxContext(ctx, constants.GetExecutionStatsByRule, tenantID, ruleID).StructScan(&stats)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
