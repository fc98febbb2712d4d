package services

import (
	"context"
	"fmt"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/db/repositories"
	"fluxcrm/metamorph/internal/events"
	"fluxcrm/metamorph/internal/logging"
	"fluxcrm/metamorph/internal/models"
	"fluxcrm/metamorph/internal/models/dtos"
	gormModels "fluxcrm/metamorph/internal/models/gorm"

	"github.com/google/uuid"
)

// RuleService owns conversion rule CRUD. Validation here is strict: a rule
// that doesn't resolve against the composed schemas at creation time is
// rejected outright. Drift after creation is the executor's problem and
// degrades to warnings there.
type RuleService struct {
	ruleRepo  *repositories.ConversionRuleRepository
	statsRepo *repositories.StatsRepository
	schemaSvc *SchemaService
	sink      events.Sink
}

// NewRuleService creates a new conversion rule service
func NewRuleService(
	ruleRepo *repositories.ConversionRuleRepository,
	statsRepo *repositories.StatsRepository,
	schemaSvc *SchemaService,
	sink events.Sink,
) *RuleService {
	return &RuleService{
		ruleRepo:  ruleRepo,
		statsRepo: statsRepo,
		schemaSvc: schemaSvc,
		sink:      sink,
	}
}

// CreateRule validates and stores a new conversion rule.
func (s *RuleService) CreateRule(ctx context.Context, tenantID, userID string, req *dtos.CreateRuleRequest) (*dtos.RuleResponse, error) {
	if req.Name == "" {
		return nil, invalidArgument("name is required")
	}
	if req.SourceEntity == "" || req.TargetEntity == "" {
		return nil, invalidArgument("source_entity and target_entity are required")
	}
	if req.SourceEntity == req.TargetEntity {
		return nil, invalidArgument(constants.MsgRuleSelfTarget)
	}

	sourceSchema, targetSchema, err := s.composePair(ctx, tenantID, req.SourceEntity, req.TargetEntity)
	if err != nil {
		return nil, err
	}

	if errs := validateRuleShape(req.TriggerConditions, req.FieldMapping, req.ExtensionFieldMapping, sourceSchema, targetSchema); len(errs) > 0 {
		return nil, invalidArgument(errs[0])
	}

	rule := &gormModels.ConversionRule{
		ID:                    uuid.NewString(),
		TenantID:              tenantID,
		Name:                  req.Name,
		IsActive:              true,
		SourceEntity:          req.SourceEntity,
		TargetEntity:          req.TargetEntity,
		TriggerConditions:     req.TriggerConditions,
		FieldMapping:          models.StringMap(req.FieldMapping),
		ExtensionFieldMapping: models.StringMap(req.ExtensionFieldMapping),
		ConversionSettings:    models.JSONB(req.ConversionSettings),
		TargetNameTemplate:    req.TargetNameTemplate,
		DefaultValues:         models.JSONB(req.DefaultValues),
		ApprovalSettings:      models.JSONB(req.ApprovalSettings),
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if userID != "" {
		rule.CreatedBy = &userID
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, storageFailure("failed to create conversion rule", err)
	}

	s.sink.Emit(events.Event{
		Type:     constants.EventRuleCreated,
		TenantID: tenantID,
		Payload: map[string]interface{}{
			"rule_id":       rule.ID,
			"source_entity": rule.SourceEntity,
			"target_entity": rule.TargetEntity,
		},
	})

	logging.Info("Conversion rule created",
		"tenant_id", tenantID,
		"rule_id", rule.ID,
		"source_entity", rule.SourceEntity,
		"target_entity", rule.TargetEntity,
	)

	return ruleResponse(rule), nil
}

// UpdateRule applies a patch to an existing rule, re-running the strict
// shape validation over the patched result.
func (s *RuleService) UpdateRule(ctx context.Context, tenantID, ruleID string, req *dtos.UpdateRuleRequest) (*dtos.RuleResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, tenantID, ruleID)
	if err != nil {
		return nil, storageFailure("failed to fetch conversion rule", err)
	}
	if rule == nil {
		return nil, notFound(constants.MsgRuleNotFound)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, invalidArgument("name must not be empty")
		}
		rule.Name = *req.Name
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.TriggerConditions != nil {
		rule.TriggerConditions = req.TriggerConditions
	}
	if req.FieldMapping != nil {
		rule.FieldMapping = models.StringMap(*req.FieldMapping)
	}
	if req.ExtensionFieldMapping != nil {
		rule.ExtensionFieldMapping = models.StringMap(*req.ExtensionFieldMapping)
	}
	if req.ConversionSettings != nil {
		rule.ConversionSettings = models.JSONB(*req.ConversionSettings)
	}
	if req.TargetNameTemplate != nil {
		rule.TargetNameTemplate = *req.TargetNameTemplate
	}
	if req.DefaultValues != nil {
		rule.DefaultValues = models.JSONB(*req.DefaultValues)
	}
	if req.ApprovalSettings != nil {
		rule.ApprovalSettings = models.JSONB(*req.ApprovalSettings)
	}

	sourceSchema, targetSchema, err := s.composePair(ctx, tenantID, rule.SourceEntity, rule.TargetEntity)
	if err != nil {
		return nil, err
	}
	if errs := validateRuleShape(rule.TriggerConditions, rule.FieldMapping, rule.ExtensionFieldMapping, sourceSchema, targetSchema); len(errs) > 0 {
		return nil, invalidArgument(errs[0])
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, storageFailure("failed to update conversion rule", err)
	}

	s.sink.Emit(events.Event{
		Type:     constants.EventRuleUpdated,
		TenantID: tenantID,
		Payload:  map[string]interface{}{"rule_id": rule.ID},
	})

	return ruleResponse(rule), nil
}

// DeleteRule deactivates a rule, or removes the row when hard is set.
func (s *RuleService) DeleteRule(ctx context.Context, tenantID, ruleID string, hard bool) error {
	rule, err := s.ruleRepo.GetByID(ctx, tenantID, ruleID)
	if err != nil {
		return storageFailure("failed to fetch conversion rule", err)
	}
	if rule == nil {
		return notFound(constants.MsgRuleNotFound)
	}

	if hard {
		err = s.ruleRepo.HardDelete(ctx, tenantID, ruleID)
	} else {
		err = s.ruleRepo.SoftDelete(ctx, tenantID, ruleID)
	}
	if err != nil {
		return storageFailure("failed to delete conversion rule", err)
	}

	s.sink.Emit(events.Event{
		Type:     constants.EventRuleDeleted,
		TenantID: tenantID,
		Payload:  map[string]interface{}{"rule_id": ruleID, "hard": hard},
	})

	return nil
}

// GetRule fetches one rule by id.
func (s *RuleService) GetRule(ctx context.Context, tenantID, ruleID string) (*dtos.RuleResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, tenantID, ruleID)
	if err != nil {
		return nil, storageFailure("failed to fetch conversion rule", err)
	}
	if rule == nil {
		return nil, notFound(constants.MsgRuleNotFound)
	}
	return ruleResponse(rule), nil
}

// ListRules lists the tenant's rules, optionally filtered.
func (s *RuleService) ListRules(ctx context.Context, tenantID, sourceEntity string, isActive *bool) ([]dtos.RuleResponse, error) {
	rules, err := s.ruleRepo.ListBySourceEntity(ctx, tenantID, sourceEntity, isActive)
	if err != nil {
		return nil, storageFailure("failed to list conversion rules", err)
	}

	out := make([]dtos.RuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, *ruleResponse(&rules[i]))
	}
	return out, nil
}

// Stats aggregates rule and execution counts for the tenant.
func (s *RuleService) Stats(ctx context.Context, tenantID string) (*dtos.RuleStatsResponse, error) {
	ruleStats, err := s.statsRepo.GetRuleStats(ctx, tenantID)
	if err != nil {
		return nil, storageFailure("failed to load rule stats", err)
	}
	execStats, err := s.statsRepo.GetExecutionStats(ctx, tenantID)
	if err != nil {
		return nil, storageFailure("failed to load execution stats", err)
	}

	resp := &dtos.RuleStatsResponse{
		TotalRules:           ruleStats.TotalRules,
		ActiveRules:          ruleStats.ActiveRules,
		TotalExecutions:      execStats.TotalExecutions,
		SuccessfulExecutions: execStats.SuccessfulExecutions,
		AvgExecutionTimeMs:   execStats.AvgExecutionTimeMs,
	}
	if execStats.TotalExecutions > 0 {
		resp.SuccessRate = float64(execStats.SuccessfulExecutions) / float64(execStats.TotalExecutions)
	}
	return resp, nil
}

// RuleStats aggregates the execution history of one rule.
func (s *RuleService) RuleStats(ctx context.Context, tenantID, ruleID string) (*dtos.RuleExecutionStatsResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, tenantID, ruleID)
	if err != nil {
		return nil, storageFailure("failed to fetch conversion rule", err)
	}
	if rule == nil {
		return nil, notFound(constants.MsgRuleNotFound)
	}

	stats, err := s.statsRepo.GetExecutionStatsByRule(ctx, tenantID, ruleID)
	if err != nil {
		return nil, storageFailure("failed to load execution stats", err)
	}

	resp := &dtos.RuleExecutionStatsResponse{
		RuleID:               ruleID,
		TotalExecutions:      stats.TotalExecutions,
		SuccessfulExecutions: stats.SuccessfulExecutions,
		AvgExecutionTimeMs:   stats.AvgExecutionTimeMs,
	}
	if stats.TotalExecutions > 0 {
		resp.SuccessRate = float64(stats.SuccessfulExecutions) / float64(stats.TotalExecutions)
	}
	return resp, nil
}

// ValidateTriggerConditions checks a condition tree against the source
// entity's current composed schema without storing anything.
func (s *RuleService) ValidateTriggerConditions(ctx context.Context, tenantID, sourceEntity string, node *models.ConditionNode) (*dtos.ConditionValidationResponse, error) {
	schema, err := s.schemaSvc.Compose(ctx, tenantID, sourceEntity)
	if err != nil {
		return nil, err
	}

	errs := ValidateConditionTree(node, schema)
	return &dtos.ConditionValidationResponse{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}, nil
}

func (s *RuleService) composePair(ctx context.Context, tenantID, sourceEntity, targetEntity string) (*models.ComposedSchema, *models.ComposedSchema, error) {
	sourceSchema, err := s.schemaSvc.Compose(ctx, tenantID, sourceEntity)
	if err != nil {
		return nil, nil, err
	}
	targetSchema, err := s.schemaSvc.Compose(ctx, tenantID, targetEntity)
	if err != nil {
		return nil, nil, err
	}
	return sourceSchema, targetSchema, nil
}

// validateRuleShape runs the CRUD-time checks over mappings and conditions.
func validateRuleShape(
	conditions *models.ConditionNode,
	fieldMapping, extMapping map[string]string,
	sourceSchema, targetSchema *models.ComposedSchema,
) []string {
	var errs []string

	for src, tgt := range fieldMapping {
		if !sourceSchema.HasField(src) {
			errs = append(errs, fmt.Sprintf("mapping source field '%s' does not exist in '%s'", src, sourceSchema.EntityTable))
		}
		if !targetSchema.HasField(tgt) {
			errs = append(errs, fmt.Sprintf("mapping target field '%s' does not exist in '%s'", tgt, targetSchema.EntityTable))
		}
	}

	for src, tgt := range extMapping {
		if f := sourceSchema.Field(src); f == nil || f.Source != models.FieldSourceExtension {
			errs = append(errs, fmt.Sprintf("extension mapping source field '%s' is not an extension field of '%s'", src, sourceSchema.EntityTable))
		}
		if f := targetSchema.Field(tgt); f == nil || f.Source != models.FieldSourceExtension {
			errs = append(errs, fmt.Sprintf("extension mapping target field '%s' is not an extension field of '%s'", tgt, targetSchema.EntityTable))
		}
	}

	errs = append(errs, ValidateConditionTree(conditions, sourceSchema)...)
	return errs
}

func ruleResponse(rule *gormModels.ConversionRule) *dtos.RuleResponse {
	return &dtos.RuleResponse{
		ID:                    rule.ID,
		Name:                  rule.Name,
		IsActive:              rule.IsActive,
		SourceEntity:          rule.SourceEntity,
		TargetEntity:          rule.TargetEntity,
		TriggerConditions:     rule.TriggerConditions,
		FieldMapping:          map[string]string(rule.FieldMapping),
		ExtensionFieldMapping: map[string]string(rule.ExtensionFieldMapping),
		ConversionSettings:    map[string]interface{}(rule.ConversionSettings),
		TargetNameTemplate:    rule.TargetNameTemplate,
		DefaultValues:         map[string]interface{}(rule.DefaultValues),
		ApprovalSettings:      map[string]interface{}(rule.ApprovalSettings),
		CreatedAt:             rule.CreatedAt,
		UpdatedAt:             rule.UpdatedAt,
	}
}
