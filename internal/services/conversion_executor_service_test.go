package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/db/repositories"
	"fluxcrm/metamorph/internal/models"
	gormModels "fluxcrm/metamorph/internal/models/gorm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mock EntityStore
type mockEntityStore struct {
	getRecordFunc    func(ctx context.Context, tenantID, entityTable, recordID string) (*models.Record, error)
	insertRecordFunc func(ctx context.Context, tenantID, entityTable string, data, extensions map[string]interface{}) (string, error)
}

func (m *mockEntityStore) GetRecord(ctx context.Context, tenantID, entityTable, recordID string) (*models.Record, error) {
	return m.getRecordFunc(ctx, tenantID, entityTable, recordID)
}

func (m *mockEntityStore) InsertRecord(ctx context.Context, tenantID, entityTable string, data, extensions map[string]interface{}) (string, error) {
	return m.insertRecordFunc(ctx, tenantID, entityTable, data, extensions)
}

func (m *mockEntityStore) UpdateRecord(ctx context.Context, tenantID, entityTable, recordID string, data, extensions map[string]interface{}) error {
	return nil
}

func (m *mockEntityStore) QueryRecords(ctx context.Context, tenantID, entityTable string, limit int) ([]models.Record, error) {
	return nil, nil
}

type insertCapture struct {
	entityTable string
	data        map[string]interface{}
	extensions  map[string]interface{}
}

func newExecutor(db *gorm.DB, store *mockEntityStore) *ConversionExecutorService {
	return NewConversionExecutorService(
		repositories.NewConversionRuleRepository(db),
		repositories.NewConversionResultRepository(db),
		newSchemaService(db),
		store,
		&mockSink{},
		nil,
	)
}

func seedRule(t *testing.T, db *gorm.DB, rule *gormModels.ConversionRule) *gormModels.ConversionRule {
	t.Helper()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("Failed to seed rule: %v", err)
	}
	return rule
}

func qualifiedLead() *models.Record {
	return &models.Record{
		ID: "lead-1",
		Fields: map[string]interface{}{
			"name":   "Acme Corp",
			"email":  "buyer@acme.example",
			"status": "qualified",
		},
		Extensions: map[string]interface{}{
			"lead_score": float64(87),
		},
	}
}

func storeReturning(record *models.Record, capture *insertCapture) *mockEntityStore {
	return &mockEntityStore{
		getRecordFunc: func(ctx context.Context, tenantID, entityTable, recordID string) (*models.Record, error) {
			if record != nil && recordID == record.ID {
				return record, nil
			}
			return nil, nil
		},
		insertRecordFunc: func(ctx context.Context, tenantID, entityTable string, data, extensions map[string]interface{}) (string, error) {
			if capture != nil {
				capture.entityTable = entityTable
				capture.data = data
				capture.extensions = extensions
			}
			return "deal-1", nil
		},
	}
}

func TestExecutor_Execute_Success(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	rule := seedRule(t, db, &gormModels.ConversionRule{
		TenantID:              tenantID,
		Name:                  "lead to deal",
		IsActive:              true,
		SourceEntity:          "leads",
		TargetEntity:          "deals",
		FieldMapping:          models.StringMap{"name": "name", "email": "contact_email"},
		ExtensionFieldMapping: models.StringMap{"lead_score": "deal_score"},
	})

	capture := &insertCapture{}
	svc := newExecutor(db, storeReturning(qualifiedLead(), capture))

	result, err := svc.Execute(context.Background(), tenantID, rule.ID, "lead-1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Success {
		t.Fatalf("Expected success, got error %v warnings %v", result.ErrorMessage, result.Warnings)
	}
	if result.TargetRecordID == nil || *result.TargetRecordID != "deal-1" {
		t.Errorf("Expected target record id deal-1, got %v", result.TargetRecordID)
	}
	if len(result.ConvertedFields) != 2 {
		t.Errorf("Expected 2 converted base fields, got %v", result.ConvertedFields)
	}
	if len(result.ConvertedExtensionFields) != 1 {
		t.Errorf("Expected 1 converted extension field, got %v", result.ConvertedExtensionFields)
	}

	if capture.data["name"] != "Acme Corp" || capture.data["contact_email"] != "buyer@acme.example" {
		t.Errorf("Base payload wrong: %v", capture.data)
	}
	if capture.extensions["deal_score"] != float64(87) {
		t.Errorf("Extension payload wrong: %v", capture.extensions)
	}

	// The result row is persisted for auditing.
	rows, err := svc.ListResults(context.Background(), tenantID, rule.ID, 10)
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(rows) != 1 || !rows[0].Success {
		t.Errorf("Expected one persisted successful result, got %v", rows)
	}
}

func TestExecutor_Execute_UnknownRule(t *testing.T) {
	db := setupTestDB(t)
	svc := newExecutor(db, storeReturning(nil, nil))

	_, err := svc.Execute(context.Background(), uuid.NewString(), uuid.NewString(), "lead-1")
	if err == nil || ErrorCode(err) != constants.ErrCodeNotFound {
		t.Errorf("Expected not_found, got %v", err)
	}
}

func TestExecutor_Execute_MissingSourceRecord(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	rule := seedRule(t, db, &gormModels.ConversionRule{
		TenantID:     tenantID,
		Name:         "lead to deal",
		IsActive:     true,
		SourceEntity: "leads",
		TargetEntity: "deals",
		FieldMapping: models.StringMap{"name": "name"},
	})

	svc := newExecutor(db, storeReturning(nil, nil))

	result, err := svc.Execute(context.Background(), tenantID, rule.ID, "ghost")
	if err != nil {
		t.Fatalf("Expected a failed result, not an error: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure for a missing source record")
	}
	if result.ErrorMessage == nil || *result.ErrorMessage != constants.MsgSourceRecordNotFound {
		t.Errorf("Expected source-record-not-found message, got %v", result.ErrorMessage)
	}

	// Even the failure is recorded.
	rows, _ := svc.ListResults(context.Background(), tenantID, rule.ID, 10)
	if len(rows) != 1 || rows[0].Success {
		t.Errorf("Expected one persisted failed result, got %v", rows)
	}
}

func TestExecutor_Execute_StaleMappingSkipsWithWarning(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	// deal_score was deactivated after the rule was authored.
	if err := db.Model(&gormModels.ExtensionField{}).
		Where("tenant_id = ? AND field_name = ?", tenantID, "deal_score").
		Update("is_active", false).Error; err != nil {
		t.Fatalf("Failed to deactivate: %v", err)
	}

	rule := seedRule(t, db, &gormModels.ConversionRule{
		TenantID:              tenantID,
		Name:                  "lead to deal",
		IsActive:              true,
		SourceEntity:          "leads",
		TargetEntity:          "deals",
		FieldMapping:          models.StringMap{"name": "name"},
		ExtensionFieldMapping: models.StringMap{"lead_score": "deal_score"},
	})

	svc := newExecutor(db, storeReturning(qualifiedLead(), nil))

	result, err := svc.Execute(context.Background(), tenantID, rule.ID, "lead-1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Success {
		t.Fatalf("Expected a stale mapping to degrade, not fail: %v", result.ErrorMessage)
	}
	if len(result.SkippedExtensionFields) != 1 || result.SkippedExtensionFields[0] != "lead_score" {
		t.Errorf("Expected lead_score skipped, got %v", result.SkippedExtensionFields)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected a warning about the stale mapping")
	}
}

func TestExecutor_Execute_InvalidValueSkipped(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	rule := seedRule(t, db, &gormModels.ConversionRule{
		TenantID:              tenantID,
		Name:                  "lead to deal",
		IsActive:              true,
		SourceEntity:          "leads",
		TargetEntity:          "deals",
		FieldMapping:          models.StringMap{"name": "name"},
		ExtensionFieldMapping: models.StringMap{"lead_score": "deal_score"},
	})

	record := qualifiedLead()
	record.Extensions["lead_score"] = "eighty seven"

	svc := newExecutor(db, storeReturning(record, nil))

	result, err := svc.Execute(context.Background(), tenantID, rule.ID, "lead-1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected a bad value to be skipped, not fatal: %v", result.ErrorMessage)
	}
	if len(result.SkippedExtensionFields) != 1 {
		t.Errorf("Expected lead_score skipped, got %v", result.SkippedExtensionFields)
	}
}

func TestExecutor_Execute_RequiredTargetMissing(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	// deals.name is required but nothing maps into it.
	rule := seedRule(t, db, &gormModels.ConversionRule{
		TenantID:     tenantID,
		Name:         "lead to deal",
		IsActive:     true,
		SourceEntity: "leads",
		TargetEntity: "deals",
		FieldMapping: models.StringMap{"email": "contact_email"},
	})

	svc := newExecutor(db, storeReturning(qualifiedLead(), nil))

	result, err := svc.Execute(context.Background(), tenantID, rule.ID, "lead-1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure when a required target field is unpopulated")
	}
	if result.ErrorMessage == nil || !strings.Contains(*result.ErrorMessage, "name") {
		t.Errorf("Expected the missing field named in the error, got %v", result.ErrorMessage)
	}
}

func TestExecutor_Execute_DefaultsAndTemplate(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	rule := seedRule(t, db, &gormModels.ConversionRule{
		TenantID:           tenantID,
		Name:               "lead to deal",
		IsActive:           true,
		SourceEntity:       "leads",
		TargetEntity:       "deals",
		FieldMapping:       models.StringMap{"email": "contact_email"},
		DefaultValues:      models.JSONB{"deal_score": float64(10), "ghost_field": "x"},
		TargetNameTemplate: "Deal for {name} ({missing})",
	})

	capture := &insertCapture{}
	svc := newExecutor(db, storeReturning(qualifiedLead(), capture))

	result, err := svc.Execute(context.Background(), tenantID, rule.ID, "lead-1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got %v", result.ErrorMessage)
	}

	if capture.data["name"] != "Deal for Acme Corp ({missing})" {
		t.Errorf("Template rendering wrong: %v", capture.data["name"])
	}
	if capture.extensions["deal_score"] != float64(10) {
		t.Errorf("Expected default to fill unmapped extension field, got %v", capture.extensions)
	}

	// Unknown default target and unresolved placeholder both warn.
	if len(result.Warnings) != 2 {
		t.Errorf("Expected 2 warnings, got %v", result.Warnings)
	}
}

func TestExecutor_Execute_DefaultDoesNotOverrideMapped(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	rule := seedRule(t, db, &gormModels.ConversionRule{
		TenantID:              tenantID,
		Name:                  "lead to deal",
		IsActive:              true,
		SourceEntity:          "leads",
		TargetEntity:          "deals",
		FieldMapping:          models.StringMap{"name": "name"},
		ExtensionFieldMapping: models.StringMap{"lead_score": "deal_score"},
		DefaultValues:         models.JSONB{"deal_score": float64(1)},
	})

	capture := &insertCapture{}
	svc := newExecutor(db, storeReturning(qualifiedLead(), capture))

	if _, err := svc.Execute(context.Background(), tenantID, rule.ID, "lead-1"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if capture.extensions["deal_score"] != float64(87) {
		t.Errorf("Expected mapped value to win over default, got %v", capture.extensions["deal_score"])
	}
}

func TestExecutor_Execute_InsertFailure(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	rule := seedRule(t, db, &gormModels.ConversionRule{
		TenantID:     tenantID,
		Name:         "lead to deal",
		IsActive:     true,
		SourceEntity: "leads",
		TargetEntity: "deals",
		FieldMapping: models.StringMap{"name": "name"},
	})

	store := storeReturning(qualifiedLead(), nil)
	store.insertRecordFunc = func(ctx context.Context, tenantID, entityTable string, data, extensions map[string]interface{}) (string, error) {
		return "", errors.New("disk on fire")
	}

	svc := newExecutor(db, store)

	result, err := svc.Execute(context.Background(), tenantID, rule.ID, "lead-1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure when the target write fails")
	}
	if result.ErrorMessage == nil || !strings.Contains(*result.ErrorMessage, "disk on fire") {
		t.Errorf("Expected the storage error surfaced, got %v", result.ErrorMessage)
	}
}

func TestExecutor_CheckAutoTriggers(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	matching := seedRule(t, db, &gormModels.ConversionRule{
		TenantID:     tenantID,
		Name:         "qualified leads",
		IsActive:     true,
		SourceEntity: "leads",
		TargetEntity: "deals",
		TriggerConditions: &models.ConditionNode{
			Field: "status", Operator: constants.OpEq, Value: "qualified",
		},
		FieldMapping: models.StringMap{"name": "name"},
	})
	seedRule(t, db, &gormModels.ConversionRule{
		TenantID:     tenantID,
		Name:         "lost leads",
		IsActive:     true,
		SourceEntity: "leads",
		TargetEntity: "deals",
		TriggerConditions: &models.ConditionNode{
			Field: "status", Operator: constants.OpEq, Value: "lost",
		},
		FieldMapping: models.StringMap{"name": "name"},
	})
	seedRule(t, db, &gormModels.ConversionRule{
		TenantID:     tenantID,
		Name:         "disabled rule",
		IsActive:     false,
		SourceEntity: "leads",
		TargetEntity: "deals",
		FieldMapping: models.StringMap{"name": "name"},
	})

	svc := newExecutor(db, storeReturning(qualifiedLead(), nil))

	results, err := svc.CheckAutoTriggers(context.Background(), tenantID, "leads", "lead-1")
	if err != nil {
		t.Fatalf("CheckAutoTriggers failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected exactly the matching rule to run, got %d results", len(results))
	}
	if results[0].RuleID != matching.ID {
		t.Errorf("Expected rule %s, got %s", matching.ID, results[0].RuleID)
	}
	if !results[0].Success {
		t.Errorf("Expected triggered execution to succeed, got %v", results[0].ErrorMessage)
	}
}

func TestExecutor_CheckAutoTriggers_AbsentRecord(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)

	svc := newExecutor(db, storeReturning(nil, nil))

	results, err := svc.CheckAutoTriggers(context.Background(), tenantID, "leads", "ghost")
	if err != nil {
		t.Fatalf("Expected a no-op, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no executions for an absent record, got %v", results)
	}
}

func TestExecutor_ResultsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	ruleID := uuid.NewString()

	repo := repositories.NewConversionResultRepository(db)
	for i, ts := range []time.Time{
		time.Now().Add(-2 * time.Hour),
		time.Now().Add(-1 * time.Hour),
	} {
		row := &gormModels.ConversionResult{
			ID:             uuid.NewString(),
			TenantID:       tenantID,
			RuleID:         ruleID,
			Success:        i == 1,
			SourceRecordID: uuid.NewString(),
			CreatedAt:      ts,
		}
		if err := repo.Create(context.Background(), row); err != nil {
			t.Fatalf("Failed to seed result: %v", err)
		}
	}

	svc := newExecutor(db, storeReturning(nil, nil))
	rows, err := svc.ListResults(context.Background(), tenantID, ruleID, 10)
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(rows))
	}
	if !rows[0].Success || rows[1].Success {
		t.Error("Expected newest result first")
	}
}
