package entities

// RuleStats is the sqlx aggregate over a tenant's conversion rules.
type RuleStats struct {
	TotalRules  int `db:"total_rules"`
	ActiveRules int `db:"active_rules"`
}

// ExecutionStats is the sqlx aggregate over execution result rows.
type ExecutionStats struct {
	TotalExecutions      int     `db:"total_executions"`
	SuccessfulExecutions int     `db:"successful_executions"`
	AvgExecutionTimeMs   float64 `db:"avg_execution_time_ms"`
}
