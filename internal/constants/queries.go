package constants

const (
	GetStatusByApiKey = `
	SELECT * FROM api_keys WHERE key_hash = $1
	`

	GetRuleStatsByTenant = `
	SELECT
		COUNT(*)                                        AS total_rules,
		COUNT(*) FILTER (WHERE is_active)               AS active_rules
	FROM entity_conversion_rules
	WHERE tenant_id = $1
	`

	GetExecutionStatsByTenant = `
	SELECT
		COUNT(*)                                        AS total_executions,
		COUNT(*) FILTER (WHERE success)                 AS successful_executions,
		COALESCE(AVG(execution_time_ms), 0)::float8     AS avg_execution_time_ms
	FROM conversion_execution_results
	WHERE tenant_id = $1
	`

	GetExecutionStatsByRule = `
	SELECT
		COUNT(*)                                        AS total_executions,
		COUNT(*) FILTER (WHERE success)                 AS successful_executions,
		COALESCE(AVG(execution_time_ms), 0)::float8     AS avg_execution_time_ms
	FROM conversion_execution_results
	WHERE tenant_id = $1 AND rule_id = $2
	`
)
