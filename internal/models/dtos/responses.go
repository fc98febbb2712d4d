package dtos

import (
	"time"

	"fluxcrm/metamorph/internal/models"
)

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type FieldResponse struct {
	ID              string                 `json:"id"`
	EntityTable     string                 `json:"entity_table"`
	FieldName       string                 `json:"field_name"`
	FieldType       string                 `json:"field_type"`
	DisplayName     string                 `json:"display_name"`
	IsRequired      bool                   `json:"is_required"`
	IsSearchable    bool                   `json:"is_searchable"`
	IsFilterable    bool                   `json:"is_filterable"`
	IsSortable      bool                   `json:"is_sortable"`
	DefaultValue    interface{}            `json:"default_value,omitempty"`
	ValidationRules map[string]interface{} `json:"validation_rules,omitempty"`
	UIConfig        map[string]interface{} `json:"ui_config,omitempty"`
	IsActive        bool                   `json:"is_active"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

type RuleResponse struct {
	ID                    string                 `json:"id"`
	Name                  string                 `json:"name"`
	IsActive              bool                   `json:"is_active"`
	SourceEntity          string                 `json:"source_entity"`
	TargetEntity          string                 `json:"target_entity"`
	TriggerConditions     *models.ConditionNode  `json:"trigger_conditions,omitempty"`
	FieldMapping          map[string]string      `json:"field_mapping,omitempty"`
	ExtensionFieldMapping map[string]string      `json:"extension_field_mapping,omitempty"`
	ConversionSettings    map[string]interface{} `json:"conversion_settings,omitempty"`
	TargetNameTemplate    string                 `json:"target_name_template,omitempty"`
	DefaultValues         map[string]interface{} `json:"default_values,omitempty"`
	ApprovalSettings      map[string]interface{} `json:"approval_settings,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

type RuleStatsResponse struct {
	TotalRules           int     `json:"total_rules"`
	ActiveRules          int     `json:"active_rules"`
	TotalExecutions      int     `json:"total_executions"`
	SuccessfulExecutions int     `json:"successful_executions"`
	SuccessRate          float64 `json:"success_rate"`
	AvgExecutionTimeMs   float64 `json:"avg_execution_time_ms"`
}

// RuleExecutionStatsResponse aggregates the execution history of one rule.
type RuleExecutionStatsResponse struct {
	RuleID               string  `json:"rule_id"`
	TotalExecutions      int     `json:"total_executions"`
	SuccessfulExecutions int     `json:"successful_executions"`
	SuccessRate          float64 `json:"success_rate"`
	AvgExecutionTimeMs   float64 `json:"avg_execution_time_ms"`
}

// ConversionResultResponse mirrors one immutable execution result row.
type ConversionResultResponse struct {
	ID                       string    `json:"id"`
	Success                  bool      `json:"success"`
	SourceRecordID           string    `json:"source_record_id"`
	TargetRecordID           *string   `json:"target_record_id,omitempty"`
	RuleID                   string    `json:"rule_id"`
	RuleName                 string    `json:"rule_name"`
	SourceEntity             string    `json:"source_entity"`
	TargetEntity             string    `json:"target_entity"`
	ErrorMessage             *string   `json:"error_message,omitempty"`
	Warnings                 []string  `json:"warnings"`
	ConvertedFields          []string  `json:"converted_fields"`
	SkippedFields            []string  `json:"skipped_fields"`
	ConvertedExtensionFields []string  `json:"converted_extension_fields"`
	SkippedExtensionFields   []string  `json:"skipped_extension_fields"`
	ExecutionTimeMs          int64     `json:"execution_time_ms"`
	CreatedAt                time.Time `json:"created_at"`
}

type ConditionValidationResponse struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}
