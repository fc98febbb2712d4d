package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/db/repositories"
	"fluxcrm/metamorph/internal/events"
	"fluxcrm/metamorph/internal/logging"
	"fluxcrm/metamorph/internal/metrics"
	"fluxcrm/metamorph/internal/models"
	"fluxcrm/metamorph/internal/models/dtos"
	gormModels "fluxcrm/metamorph/internal/models/gorm"
	"fluxcrm/metamorph/internal/store"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentRuleExecutions bounds the per-call fan-out when several
// rules match the same record.
const maxConcurrentRuleExecutions = 4

// ConversionExecutorService orchestrates conversions: trigger evaluation,
// field mapping, defaults, persistence and result reporting. Execution-time
// validation is lenient by policy: a bad field is skipped with a warning,
// never the death of the whole conversion.
type ConversionExecutorService struct {
	ruleRepo    *repositories.ConversionRuleRepository
	resultRepo  *repositories.ConversionResultRepository
	schemaSvc   *SchemaService
	entityStore store.EntityStore
	sink        events.Sink
	metrics     *metrics.MetricsRegistry
}

// NewConversionExecutorService creates a new conversion executor
func NewConversionExecutorService(
	ruleRepo *repositories.ConversionRuleRepository,
	resultRepo *repositories.ConversionResultRepository,
	schemaSvc *SchemaService,
	entityStore store.EntityStore,
	sink events.Sink,
	metricsReg *metrics.MetricsRegistry,
) *ConversionExecutorService {
	return &ConversionExecutorService{
		ruleRepo:    ruleRepo,
		resultRepo:  resultRepo,
		schemaSvc:   schemaSvc,
		entityStore: entityStore,
		sink:        sink,
		metrics:     metricsReg,
	}
}

// Execute runs a single rule against a source record, bypassing trigger
// evaluation. Used for manual, administrator-invoked conversions.
func (s *ConversionExecutorService) Execute(ctx context.Context, tenantID, ruleID, sourceRecordID string) (*dtos.ConversionResultResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, tenantID, ruleID)
	if err != nil {
		return nil, storageFailure("failed to fetch conversion rule", err)
	}
	if rule == nil {
		return nil, notFound(constants.MsgRuleNotFound)
	}

	result := s.executeRule(ctx, rule, sourceRecordID, nil)
	return result, nil
}

// CheckAutoTriggers loads the record, filters the entity's active rules by
// their trigger conditions, and executes every rule that matches. Matched
// rules run concurrently; each execution is reported independently.
func (s *ConversionExecutorService) CheckAutoTriggers(ctx context.Context, tenantID, entityTable, recordID string) ([]dtos.ConversionResultResponse, error) {
	record, err := s.entityStore.GetRecord(ctx, tenantID, entityTable, recordID)
	if err != nil {
		return nil, storageFailure("failed to load source record", err)
	}
	if record == nil {
		// Nothing to evaluate against; auto-trigger paths run unattended,
		// so this is a no-op rather than an error.
		logging.Warn("Auto-trigger check on absent record",
			"tenant_id", tenantID,
			"entity_table", entityTable,
			"record_id", recordID,
		)
		return []dtos.ConversionResultResponse{}, nil
	}

	active := true
	rules, err := s.ruleRepo.ListBySourceEntity(ctx, tenantID, entityTable, &active)
	if err != nil {
		return nil, storageFailure("failed to list conversion rules", err)
	}

	sourceSchema, err := s.schemaSvc.Compose(ctx, tenantID, entityTable)
	if err != nil {
		return nil, err
	}

	var matched []*gormModels.ConversionRule
	for i := range rules {
		rule := &rules[i]
		ok, diags := EvaluateConditions(rule.TriggerConditions, record, sourceSchema)
		for _, d := range diags {
			logging.Warn("Trigger evaluation diagnostic",
				"tenant_id", tenantID,
				"rule_id", rule.ID,
				"field", d.Field,
				"message", d.Message,
			)
		}
		if s.metrics != nil {
			s.metrics.TriggerEvaluations.WithLabelValues(fmt.Sprintf("%t", ok)).Inc()
		}
		if ok {
			matched = append(matched, rule)
		}
	}

	results := make([]dtos.ConversionResultResponse, len(matched))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRuleExecutions)
	for i, rule := range matched {
		g.Go(func() error {
			results[i] = *s.executeRule(gctx, rule, recordID, record)
			return nil
		})
	}
	// Executions report failures through their result records, never as
	// errors, so Wait only synchronizes.
	_ = g.Wait()

	return results, nil
}

// executeRule is the shared execution algorithm. It always produces a
// result record; anomalies land in warnings and skipped-field lists, and
// only a missing source record or a storage failure is terminal.
func (s *ConversionExecutorService) executeRule(ctx context.Context, rule *gormModels.ConversionRule, sourceRecordID string, record *models.Record) *dtos.ConversionResultResponse {
	start := time.Now()

	result := &gormModels.ConversionResult{
		ID:             uuid.NewString(),
		TenantID:       rule.TenantID,
		SourceRecordID: sourceRecordID,
		RuleID:         rule.ID,
		RuleName:       rule.Name,
		SourceEntity:   rule.SourceEntity,
		TargetEntity:   rule.TargetEntity,
	}

	if record == nil {
		loaded, err := s.entityStore.GetRecord(ctx, rule.TenantID, rule.SourceEntity, sourceRecordID)
		if err != nil {
			return s.finish(ctx, rule, result, start, fmt.Sprintf("failed to load source record: %v", err))
		}
		if loaded == nil {
			return s.finish(ctx, rule, result, start, constants.MsgSourceRecordNotFound)
		}
		record = loaded
	}

	targetSchema, err := s.schemaSvc.Compose(ctx, rule.TenantID, rule.TargetEntity)
	if err != nil {
		return s.finish(ctx, rule, result, start, fmt.Sprintf("failed to compose target schema: %v", err))
	}

	data := map[string]interface{}{}
	extensions := map[string]interface{}{}

	// Base field mappings.
	for _, m := range sortedMappings(rule.FieldMapping) {
		converted, warning := s.applyMapping(record, targetSchema, m.source, m.target, data, extensions)
		if converted {
			result.ConvertedFields = append(result.ConvertedFields, m.source)
		} else {
			result.SkippedFields = append(result.SkippedFields, m.source)
			result.Warnings = append(result.Warnings, warning)
		}
	}

	// Extension field mappings, tracked independently.
	for _, m := range sortedMappings(rule.ExtensionFieldMapping) {
		converted, warning := s.applyMapping(record, targetSchema, m.source, m.target, data, extensions)
		if converted {
			result.ConvertedExtensionFields = append(result.ConvertedExtensionFields, m.source)
		} else {
			result.SkippedExtensionFields = append(result.SkippedExtensionFields, m.source)
			result.Warnings = append(result.Warnings, warning)
		}
	}

	// Defaults fill whatever mapping left unpopulated.
	for name, value := range rule.DefaultValues {
		field := targetSchema.Field(name)
		if field == nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("default value target field '%s' does not exist", name))
			continue
		}
		if _, populated := lookupPayload(data, extensions, field); populated {
			continue
		}
		coerced, outcome := ValidateValue(*field, value)
		if !outcome.IsValid {
			result.Warnings = append(result.Warnings, fmt.Sprintf("default value for '%s' rejected: %s", name, outcome.Error))
			continue
		}
		placePayload(data, extensions, field, coerced.Raw())
	}

	// Name template, when configured, lands in the target's name field.
	if rule.TargetNameTemplate != "" {
		rendered, warnings := renderNameTemplate(rule.TargetNameTemplate, record)
		result.Warnings = append(result.Warnings, warnings...)
		if field := targetSchema.Field("name"); field != nil {
			placePayload(data, extensions, field, rendered)
		} else {
			data["name"] = rendered
		}
	}

	// Required target fields must be satisfied before the write.
	var missing []string
	for _, field := range targetSchema.Fields {
		if !field.Required {
			continue
		}
		if _, populated := lookupPayload(data, extensions, &field); !populated {
			missing = append(missing, field.Name)
		}
	}
	if len(missing) > 0 {
		return s.finish(ctx, rule, result, start,
			fmt.Sprintf("required target fields not satisfied: %s", strings.Join(missing, ", ")))
	}

	targetID, err := s.entityStore.InsertRecord(ctx, rule.TenantID, rule.TargetEntity, data, extensions)
	if err != nil {
		return s.finish(ctx, rule, result, start, fmt.Sprintf("failed to insert target record: %v", err))
	}

	result.Success = true
	result.TargetRecordID = &targetID
	return s.finish(ctx, rule, result, start, "")
}

// applyMapping copies one mapped value into the target payload. Returns
// (false, warning) when the value is absent or fails target validation.
func (s *ConversionExecutorService) applyMapping(
	record *models.Record,
	targetSchema *models.ComposedSchema,
	sourceField, targetField string,
	data, extensions map[string]interface{},
) (bool, string) {
	field := targetSchema.Field(targetField)
	if field == nil {
		return false, fmt.Sprintf("target field '%s' no longer exists in '%s'", targetField, targetSchema.EntityTable)
	}

	value, found := record.Lookup(sourceField)
	if !found || value == nil {
		return false, fmt.Sprintf("source field '%s' has no value", sourceField)
	}

	coerced, outcome := ValidateValue(*field, value)
	if !outcome.IsValid {
		return false, fmt.Sprintf("value for '%s' rejected: %s", targetField, outcome.Error)
	}

	placePayload(data, extensions, field, coerced.Raw())
	return true, ""
}

// finish stamps the timing, persists the immutable result row, records
// metrics and emits the audit event. Failures persisting or emitting are
// logged and never affect the conversion's own outcome.
func (s *ConversionExecutorService) finish(ctx context.Context, rule *gormModels.ConversionRule, result *gormModels.ConversionResult, start time.Time, errorMessage string) *dtos.ConversionResultResponse {
	elapsed := time.Since(start)
	result.ExecutionTimeMs = elapsed.Milliseconds()
	if errorMessage != "" {
		result.Success = false
		result.ErrorMessage = &errorMessage
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		logging.Error("Failed to persist conversion result",
			"tenant_id", rule.TenantID,
			"rule_id", rule.ID,
			"error", err.Error(),
		)
	}

	outcome := "success"
	eventType := constants.EventConversionExecuted
	if !result.Success {
		outcome = "failed"
		eventType = constants.EventConversionFailed
	}
	if s.metrics != nil {
		s.metrics.ConversionsTotal.WithLabelValues(rule.SourceEntity, outcome).Inc()
		s.metrics.ConversionDuration.Observe(elapsed.Seconds())
		s.metrics.ConversionFieldsTotal.WithLabelValues("converted").
			Add(float64(len(result.ConvertedFields) + len(result.ConvertedExtensionFields)))
		s.metrics.ConversionFieldsTotal.WithLabelValues("skipped").
			Add(float64(len(result.SkippedFields) + len(result.SkippedExtensionFields)))
	}

	payload := map[string]interface{}{
		"rule_id":          rule.ID,
		"source_record_id": result.SourceRecordID,
		"success":          result.Success,
	}
	if result.TargetRecordID != nil {
		payload["target_record_id"] = *result.TargetRecordID
	}
	if result.ErrorMessage != nil {
		payload["error"] = *result.ErrorMessage
	}
	s.sink.Emit(events.Event{
		Type:     eventType,
		TenantID: rule.TenantID,
		Payload:  payload,
	})

	return resultResponse(result)
}

// ListResults exposes the historical execution results for auditing.
func (s *ConversionExecutorService) ListResults(ctx context.Context, tenantID, ruleID string, limit int) ([]dtos.ConversionResultResponse, error) {
	rows, err := s.resultRepo.ListByRule(ctx, tenantID, ruleID, limit)
	if err != nil {
		return nil, storageFailure("failed to list conversion results", err)
	}

	out := make([]dtos.ConversionResultResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *resultResponse(&rows[i]))
	}
	return out, nil
}

type mappingEntry struct {
	source, target string
}

// sortedMappings iterates a mapping deterministically so warnings and
// field lists come out in a stable order.
func sortedMappings(m models.StringMap) []mappingEntry {
	entries := make([]mappingEntry, 0, len(m))
	for src, tgt := range m {
		entries = append(entries, mappingEntry{source: src, target: tgt})
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].source > entries[j].source; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
	return entries
}

func placePayload(data, extensions map[string]interface{}, field *models.SchemaField, value interface{}) {
	if field.Source == models.FieldSourceExtension {
		extensions[field.Name] = value
		return
	}
	data[field.Name] = value
}

func lookupPayload(data, extensions map[string]interface{}, field *models.SchemaField) (interface{}, bool) {
	if field.Source == models.FieldSourceExtension {
		v, ok := extensions[field.Name]
		return v, ok
	}
	v, ok := data[field.Name]
	return v, ok
}

// renderNameTemplate substitutes {field} placeholders from the source
// record. Unresolvable placeholders are left verbatim and warned about.
func renderNameTemplate(template string, record *models.Record) (string, []string) {
	var warnings []string
	var out strings.Builder

	rest := template
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			out.WriteString(rest)
			break
		}
		close := strings.Index(rest[open:], "}")
		if close < 0 {
			out.WriteString(rest)
			break
		}
		close += open

		out.WriteString(rest[:open])
		name := rest[open+1 : close]
		if value, found := record.Lookup(name); found && value != nil {
			if text, ok := models.AsText(value); ok {
				out.WriteString(text)
			} else {
				out.WriteString(fmt.Sprintf("%v", value))
			}
		} else {
			out.WriteString(rest[open : close+1])
			warnings = append(warnings, fmt.Sprintf("name template placeholder '%s' could not be resolved", name))
		}
		rest = rest[close+1:]
	}

	return out.String(), warnings
}

func resultResponse(r *gormModels.ConversionResult) *dtos.ConversionResultResponse {
	return &dtos.ConversionResultResponse{
		ID:                       r.ID,
		Success:                  r.Success,
		SourceRecordID:           r.SourceRecordID,
		TargetRecordID:           r.TargetRecordID,
		RuleID:                   r.RuleID,
		RuleName:                 r.RuleName,
		SourceEntity:             r.SourceEntity,
		TargetEntity:             r.TargetEntity,
		ErrorMessage:             r.ErrorMessage,
		Warnings:                 r.Warnings,
		ConvertedFields:          r.ConvertedFields,
		SkippedFields:            r.SkippedFields,
		ConvertedExtensionFields: r.ConvertedExtensionFields,
		SkippedExtensionFields:   r.SkippedExtensionFields,
		ExecutionTimeMs:          r.ExecutionTimeMs,
		CreatedAt:                r.CreatedAt,
	}
}
