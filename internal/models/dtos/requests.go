package dtos

import "fluxcrm/metamorph/internal/models"

type CreateFieldRequest struct {
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
}

// UpdateFieldRequest is a patch; nil members are left unchanged.
type UpdateFieldRequest struct {
	FieldName       *string                 `json:"field_name,omitempty"`
	FieldType       *string                 `json:"field_type,omitempty"`
	DisplayName     *string                 `json:"display_name,omitempty"`
	IsRequired      *bool                   `json:"is_required,omitempty"`
	IsSearchable    *bool                   `json:"is_searchable,omitempty"`
	IsFilterable    *bool                   `json:"is_filterable,omitempty"`
	IsSortable      *bool                   `json:"is_sortable,omitempty"`
	DefaultValue    *interface{}            `json:"default_value,omitempty"`
	ValidationRules *map[string]interface{} `json:"validation_rules,omitempty"`
	UIConfig        *map[string]interface{} `json:"ui_config,omitempty"`
}

type CreateRuleRequest struct {
	Name                  string                 `json:"name"`
	IsActive              *bool                  `json:"is_active,omitempty"`
	SourceEntity          string                 `json:"source_entity"`
	TargetEntity          string                 `json:"target_entity"`
	TriggerConditions     *models.ConditionNode  `json:"trigger_conditions,omitempty"`
	FieldMapping          map[string]string      `json:"field_mapping,omitempty"`
	ExtensionFieldMapping map[string]string      `json:"extension_field_mapping,omitempty"`
	ConversionSettings    map[string]interface{} `json:"conversion_settings,omitempty"`
	TargetNameTemplate    string                 `json:"target_name_template,omitempty"`
	DefaultValues         map[string]interface{} `json:"default_values,omitempty"`
	ApprovalSettings      map[string]interface{} `json:"approval_settings,omitempty"`
}

// UpdateRuleRequest is a patch; nil members are left unchanged.
type UpdateRuleRequest struct {
	Name                  *string                 `json:"name,omitempty"`
	IsActive              *bool                   `json:"is_active,omitempty"`
	TriggerConditions     *models.ConditionNode   `json:"trigger_conditions,omitempty"`
	FieldMapping          *map[string]string      `json:"field_mapping,omitempty"`
	ExtensionFieldMapping *map[string]string      `json:"extension_field_mapping,omitempty"`
	ConversionSettings    *map[string]interface{} `json:"conversion_settings,omitempty"`
	TargetNameTemplate    *string                 `json:"target_name_template,omitempty"`
	DefaultValues         *map[string]interface{} `json:"default_values,omitempty"`
	ApprovalSettings      *map[string]interface{} `json:"approval_settings,omitempty"`
}

type SuggestMappingRequest struct {
	SourceEntity string `json:"source_entity"`
	TargetEntity string `json:"target_entity"`
}

type ExecuteConversionRequest struct {
	RuleID         string `json:"rule_id"`
	SourceRecordID string `json:"source_record_id"`
}

type CheckTriggersRequest struct {
	EntityTable string `json:"entity_table"`
	RecordID    string `json:"record_id"`
}

type ValidateConditionsRequest struct {
	SourceEntity string                `json:"source_entity"`
	Conditions   *models.ConditionNode `json:"conditions"`
}
