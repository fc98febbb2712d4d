package services

import (
	"context"
	"regexp"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/db/repositories"
	"fluxcrm/metamorph/internal/events"
	"fluxcrm/metamorph/internal/logging"
	"fluxcrm/metamorph/internal/models"
	"fluxcrm/metamorph/internal/models/dtos"
	gormModels "fluxcrm/metamorph/internal/models/gorm"

	"github.com/google/uuid"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SchemaInvalidator is the hook the registry calls synchronously on every
// mutation so composed-schema memos never serve stale field lists.
type SchemaInvalidator interface {
	Invalidate(tenantID, entityTable string)
}

// RegistryService owns the tenant extension field definitions. All field
// mutation goes through here; deactivation is the only deletion path.
type RegistryService struct {
	fieldRepo   *repositories.ExtensionFieldRepository
	ruleRepo    *repositories.ConversionRuleRepository
	invalidator SchemaInvalidator
	sink        events.Sink
}

// NewRegistryService creates a new extension field registry service
func NewRegistryService(
	fieldRepo *repositories.ExtensionFieldRepository,
	ruleRepo *repositories.ConversionRuleRepository,
	invalidator SchemaInvalidator,
	sink events.Sink,
) *RegistryService {
	return &RegistryService{
		fieldRepo:   fieldRepo,
		ruleRepo:    ruleRepo,
		invalidator: invalidator,
		sink:        sink,
	}
}

// CreateField registers a new extension field for the tenant.
func (s *RegistryService) CreateField(ctx context.Context, tenantID, userID string, req *dtos.CreateFieldRequest) (*dtos.FieldResponse, error) {
	if req.EntityTable == "" {
		return nil, invalidArgument("entity_table is required")
	}
	if err := validateFieldName(req.FieldName); err != nil {
		return nil, err
	}
	if !constants.IsValidFieldType(req.FieldType) {
		return nil, invalidArgument(constants.MsgFieldTypeUnknown)
	}

	existing, err := s.fieldRepo.GetActiveByName(ctx, tenantID, req.EntityTable, req.FieldName)
	if err != nil {
		return nil, storageFailure("failed to check field uniqueness", err)
	}
	if existing != nil {
		return nil, conflict(constants.MsgFieldNameTaken)
	}

	field := &gormModels.ExtensionField{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		EntityTable:     req.EntityTable,
		FieldName:       req.FieldName,
		FieldType:       req.FieldType,
		DisplayName:     req.DisplayName,
		IsRequired:      req.IsRequired,
		IsSearchable:    req.IsSearchable,
		IsFilterable:    req.IsFilterable,
		IsSortable:      req.IsSortable,
		DefaultValue:    models.JSONValue{Data: req.DefaultValue},
		ValidationRules: models.JSONB(req.ValidationRules),
		UIConfig:        models.JSONB(req.UIConfig),
		IsActive:        true,
	}
	if userID != "" {
		field.CreatedBy = &userID
	}
	// Structural defaults when omitted.
	if field.DisplayName == "" {
		field.DisplayName = field.FieldName
	}
	if field.ValidationRules == nil {
		field.ValidationRules = models.JSONB{}
	}
	if field.UIConfig == nil {
		field.UIConfig = models.JSONB{}
	}

	if err := s.fieldRepo.Create(ctx, field); err != nil {
		return nil, storageFailure("failed to create extension field", err)
	}

	s.invalidator.Invalidate(tenantID, field.EntityTable)
	s.sink.Emit(events.Event{
		Type:     constants.EventFieldCreated,
		TenantID: tenantID,
		Payload: map[string]interface{}{
			"field_id":     field.ID,
			"entity_table": field.EntityTable,
			"field_name":   field.FieldName,
		},
	})

	logging.Info("Extension field created",
		"tenant_id", tenantID,
		"entity_table", field.EntityTable,
		"field_name", field.FieldName,
	)

	return fieldResponse(field), nil
}

// UpdateField applies a patch to an existing definition. Name uniqueness is
// re-checked only when the name changes.
func (s *RegistryService) UpdateField(ctx context.Context, tenantID, fieldID string, req *dtos.UpdateFieldRequest) (*dtos.FieldResponse, error) {
	field, err := s.fieldRepo.GetByID(ctx, tenantID, fieldID)
	if err != nil {
		return nil, storageFailure("failed to fetch extension field", err)
	}
	if field == nil {
		return nil, notFound(constants.MsgFieldNotFound)
	}

	if req.FieldName != nil && *req.FieldName != field.FieldName {
		if err := validateFieldName(*req.FieldName); err != nil {
			return nil, err
		}
		existing, err := s.fieldRepo.GetActiveByName(ctx, tenantID, field.EntityTable, *req.FieldName)
		if err != nil {
			return nil, storageFailure("failed to check field uniqueness", err)
		}
		if existing != nil {
			return nil, conflict(constants.MsgFieldNameTaken)
		}
		field.FieldName = *req.FieldName
	}

	if req.FieldType != nil {
		if !constants.IsValidFieldType(*req.FieldType) {
			return nil, invalidArgument(constants.MsgFieldTypeUnknown)
		}
		field.FieldType = *req.FieldType
	}
	if req.DisplayName != nil {
		field.DisplayName = *req.DisplayName
	}
	if req.IsRequired != nil {
		field.IsRequired = *req.IsRequired
	}
	if req.IsSearchable != nil {
		field.IsSearchable = *req.IsSearchable
	}
	if req.IsFilterable != nil {
		field.IsFilterable = *req.IsFilterable
	}
	if req.IsSortable != nil {
		field.IsSortable = *req.IsSortable
	}
	if req.DefaultValue != nil {
		field.DefaultValue = models.JSONValue{Data: *req.DefaultValue}
	}
	if req.ValidationRules != nil {
		field.ValidationRules = models.JSONB(*req.ValidationRules)
	}
	if req.UIConfig != nil {
		field.UIConfig = models.JSONB(*req.UIConfig)
	}

	if err := s.fieldRepo.Update(ctx, field); err != nil {
		return nil, storageFailure("failed to update extension field", err)
	}

	s.invalidator.Invalidate(tenantID, field.EntityTable)
	s.sink.Emit(events.Event{
		Type:     constants.EventFieldUpdated,
		TenantID: tenantID,
		Payload: map[string]interface{}{
			"field_id":     field.ID,
			"entity_table": field.EntityTable,
			"field_name":   field.FieldName,
		},
	})

	return fieldResponse(field), nil
}

// DeactivateField soft-deletes a definition. Rules referencing the field
// keep executing; the executor routes such mappings into skipped fields.
func (s *RegistryService) DeactivateField(ctx context.Context, tenantID, fieldID string) error {
	field, err := s.fieldRepo.GetByID(ctx, tenantID, fieldID)
	if err != nil {
		return storageFailure("failed to fetch extension field", err)
	}
	if field == nil {
		return notFound(constants.MsgFieldNotFound)
	}

	if err := s.fieldRepo.Deactivate(ctx, tenantID, fieldID); err != nil {
		return storageFailure("failed to deactivate extension field", err)
	}

	// Rules mapping this field keep running; their executions will skip the
	// field with a warning, so flag the situation here too.
	if refs, err := s.ruleRepo.CountMappingReferences(ctx, tenantID, field.EntityTable); err == nil && refs > 0 {
		logging.Warn("Deactivated field's entity is referenced by conversion rules",
			"tenant_id", tenantID,
			"entity_table", field.EntityTable,
			"field_name", field.FieldName,
			"rule_count", refs,
		)
	}

	s.invalidator.Invalidate(tenantID, field.EntityTable)
	s.sink.Emit(events.Event{
		Type:     constants.EventFieldDeactivated,
		TenantID: tenantID,
		Payload: map[string]interface{}{
			"field_id":     field.ID,
			"entity_table": field.EntityTable,
			"field_name":   field.FieldName,
		},
	})

	return nil
}

// ListActiveFields returns the active definitions, optionally scoped to one
// entity table.
func (s *RegistryService) ListActiveFields(ctx context.Context, tenantID, entityTable string) ([]dtos.FieldResponse, error) {
	fields, err := s.fieldRepo.ListActive(ctx, tenantID, entityTable)
	if err != nil {
		return nil, storageFailure("failed to list extension fields", err)
	}

	out := make([]dtos.FieldResponse, 0, len(fields))
	for i := range fields {
		out = append(out, *fieldResponse(&fields[i]))
	}
	return out, nil
}

func validateFieldName(name string) error {
	if !fieldNamePattern.MatchString(name) {
		return invalidArgument(constants.MsgFieldNameInvalid)
	}
	if constants.IsReservedFieldName(name) {
		return invalidArgument(constants.MsgFieldNameReserved)
	}
	return nil
}

func fieldResponse(field *gormModels.ExtensionField) *dtos.FieldResponse {
	return &dtos.FieldResponse{
		ID:              field.ID,
		EntityTable:     field.EntityTable,
		FieldName:       field.FieldName,
		FieldType:       field.FieldType,
		DisplayName:     field.DisplayName,
		IsRequired:      field.IsRequired,
		IsSearchable:    field.IsSearchable,
		IsFilterable:    field.IsFilterable,
		IsSortable:      field.IsSortable,
		DefaultValue:    field.DefaultValue.Data,
		ValidationRules: map[string]interface{}(field.ValidationRules),
		UIConfig:        map[string]interface{}(field.UIConfig),
		IsActive:        field.IsActive,
		CreatedAt:       field.CreatedAt,
		UpdatedAt:       field.UpdatedAt,
	}
}
