package services

import (
	"context"
	"testing"
	"time"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/db/repositories"
	"fluxcrm/metamorph/internal/models"
	"fluxcrm/metamorph/internal/models/dtos"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newRuleService(db *gorm.DB) (*RuleService, *mockSink) {
	sink := &mockSink{}
	svc := NewRuleService(
		repositories.NewConversionRuleRepository(db),
		nil,
		newSchemaService(db),
		sink,
	)
	return svc, sink
}

// Leads convert into deals in these tests: both get a base schema, leads
// additionally get a tenant extension field.
func seedConversionSchemas(t *testing.T, db *gorm.DB, tenantID string) {
	t.Helper()
	seedBaseField(t, db, "leads", "name", constants.FieldTypeText, true, 0)
	seedBaseField(t, db, "leads", "email", constants.FieldTypeText, false, 1)
	seedBaseField(t, db, "leads", "status", constants.FieldTypeText, false, 2)
	seedBaseField(t, db, "deals", "name", constants.FieldTypeText, true, 0)
	seedBaseField(t, db, "deals", "contact_email", constants.FieldTypeText, false, 1)
	seedExtensionField(t, db, tenantID, "leads", "lead_score", constants.FieldTypeNumber, time.Now().Add(-time.Hour))
	seedExtensionField(t, db, tenantID, "deals", "deal_score", constants.FieldTypeNumber, time.Now().Add(-time.Hour))
}

func validRuleRequest() *dtos.CreateRuleRequest {
	return &dtos.CreateRuleRequest{
		Name:         "lead to deal",
		SourceEntity: "leads",
		TargetEntity: "deals",
		TriggerConditions: &models.ConditionNode{
			Field:    "status",
			Operator: constants.OpEq,
			Value:    "qualified",
		},
		FieldMapping:          map[string]string{"email": "contact_email", "name": "name"},
		ExtensionFieldMapping: map[string]string{"lead_score": "deal_score"},
	}
}

func TestRuleService_CreateRule_Success(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)
	svc, sink := newRuleService(db)

	rule, err := svc.CreateRule(context.Background(), tenantID, "user-1", validRuleRequest())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rule.ID == "" {
		t.Error("Expected a generated rule id")
	}
	if !rule.IsActive {
		t.Error("Expected new rule to default to active")
	}
	if len(sink.events) != 1 || sink.events[0].Type != constants.EventRuleCreated {
		t.Errorf("Expected a rule created event, got %v", sink.events)
	}
}

func TestRuleService_CreateRule_InactiveStaysInactive(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)
	svc, _ := newRuleService(db)
	ctx := context.Background()

	inactive := false
	req := validRuleRequest()
	req.IsActive = &inactive

	created, err := svc.CreateRule(ctx, tenantID, "", req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.IsActive {
		t.Error("Expected create response to report the rule inactive")
	}

	got, err := svc.GetRule(ctx, tenantID, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.IsActive {
		t.Error("Expected stored rule to stay inactive")
	}

	active := true
	onlyActive, err := svc.ListRules(ctx, tenantID, "leads", &active)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(onlyActive) != 0 {
		t.Errorf("Expected no active rules, got %d", len(onlyActive))
	}
}

func TestRuleService_TriggerConditionsPersistRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)
	svc, _ := newRuleService(db)
	ctx := context.Background()

	req := validRuleRequest()
	req.TriggerConditions = &models.ConditionNode{
		Op: constants.CombinatorAnd,
		Children: []*models.ConditionNode{
			{Field: "status", Operator: constants.OpEq, Value: "qualified"},
			{Field: "lead_score", Operator: constants.OpGte, Value: 80},
		},
	}

	created, err := svc.CreateRule(ctx, tenantID, "", req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.GetRule(ctx, tenantID, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	tree := got.TriggerConditions
	if tree == nil || tree.Op != constants.CombinatorAnd || len(tree.Children) != 2 {
		t.Fatalf("Expected the AND tree back intact, got %+v", tree)
	}
	leaf := tree.Children[0]
	if leaf.Field != "status" || leaf.Operator != constants.OpEq || leaf.Value != "qualified" {
		t.Errorf("Expected status leaf back intact, got %+v", leaf)
	}
}

func TestRuleService_CreateRule_Rejections(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)
	svc, _ := newRuleService(db)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*dtos.CreateRuleRequest)
	}{
		{"missing_name", func(r *dtos.CreateRuleRequest) { r.Name = "" }},
		{"missing_source", func(r *dtos.CreateRuleRequest) { r.SourceEntity = "" }},
		{"self_target", func(r *dtos.CreateRuleRequest) { r.TargetEntity = "leads" }},
		{"unknown_mapping_source", func(r *dtos.CreateRuleRequest) {
			r.FieldMapping = map[string]string{"ghost": "name"}
		}},
		{"unknown_mapping_target", func(r *dtos.CreateRuleRequest) {
			r.FieldMapping = map[string]string{"email": "ghost"}
		}},
		{"ext_mapping_on_base_field", func(r *dtos.CreateRuleRequest) {
			r.ExtensionFieldMapping = map[string]string{"email": "deal_score"}
		}},
		{"ext_mapping_to_base_field", func(r *dtos.CreateRuleRequest) {
			r.ExtensionFieldMapping = map[string]string{"lead_score": "name"}
		}},
		{"bad_condition_field", func(r *dtos.CreateRuleRequest) {
			r.TriggerConditions = &models.ConditionNode{Field: "ghost", Operator: constants.OpEq, Value: 1}
		}},
		{"bad_condition_operator", func(r *dtos.CreateRuleRequest) {
			r.TriggerConditions = &models.ConditionNode{Field: "status", Operator: "matches", Value: 1}
		}},
	}

	for _, tc := range cases {
		req := validRuleRequest()
		tc.mutate(req)
		_, err := svc.CreateRule(ctx, tenantID, "", req)
		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}
		if ErrorCode(err) != constants.ErrCodeInvalidArgument {
			t.Errorf("%s: expected invalid_argument, got %s", tc.name, ErrorCode(err))
		}
	}
}

func TestRuleService_UpdateRule_RevalidatesShape(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)
	svc, _ := newRuleService(db)
	ctx := context.Background()

	rule, err := svc.CreateRule(ctx, tenantID, "", validRuleRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	badMapping := map[string]string{"ghost": "name"}
	_, err = svc.UpdateRule(ctx, tenantID, rule.ID, &dtos.UpdateRuleRequest{FieldMapping: &badMapping})
	if err == nil || ErrorCode(err) != constants.ErrCodeInvalidArgument {
		t.Errorf("Expected patched rule to fail re-validation, got %v", err)
	}

	inactive := false
	updated, err := svc.UpdateRule(ctx, tenantID, rule.ID, &dtos.UpdateRuleRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.IsActive {
		t.Error("Expected rule to be deactivated")
	}
}

func TestRuleService_DeleteRule(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)
	svc, _ := newRuleService(db)
	ctx := context.Background()

	rule, err := svc.CreateRule(ctx, tenantID, "", validRuleRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Soft delete deactivates but keeps the row.
	if err := svc.DeleteRule(ctx, tenantID, rule.ID, false); err != nil {
		t.Fatalf("Soft delete failed: %v", err)
	}
	got, err := svc.GetRule(ctx, tenantID, rule.ID)
	if err != nil {
		t.Fatalf("Get after soft delete failed: %v", err)
	}
	if got.IsActive {
		t.Error("Expected soft deleted rule to be inactive")
	}

	// Hard delete removes it.
	if err := svc.DeleteRule(ctx, tenantID, rule.ID, true); err != nil {
		t.Fatalf("Hard delete failed: %v", err)
	}
	if _, err := svc.GetRule(ctx, tenantID, rule.ID); err == nil || ErrorCode(err) != constants.ErrCodeNotFound {
		t.Errorf("Expected not_found after hard delete, got %v", err)
	}
}

func TestRuleService_ListRules_Filters(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)
	svc, _ := newRuleService(db)
	ctx := context.Background()

	first, _ := svc.CreateRule(ctx, tenantID, "", validRuleRequest())
	second := validRuleRequest()
	second.Name = "another rule"
	if _, err := svc.CreateRule(ctx, tenantID, "", second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.DeleteRule(ctx, tenantID, first.ID, false); err != nil {
		t.Fatalf("Soft delete failed: %v", err)
	}

	all, err := svc.ListRules(ctx, tenantID, "leads", nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 rules without filter, got %d", len(all))
	}

	active := true
	onlyActive, err := svc.ListRules(ctx, tenantID, "leads", &active)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(onlyActive) != 1 || onlyActive[0].Name != "another rule" {
		t.Errorf("Expected only the active rule, got %v", onlyActive)
	}
}

func TestRuleService_ValidateTriggerConditions(t *testing.T) {
	db := setupTestDB(t)
	tenantID := uuid.NewString()
	seedConversionSchemas(t, db, tenantID)
	svc, _ := newRuleService(db)
	ctx := context.Background()

	ok, err := svc.ValidateTriggerConditions(ctx, tenantID, "leads", &models.ConditionNode{
		Field: "status", Operator: constants.OpEq, Value: "qualified",
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !ok.IsValid {
		t.Errorf("Expected valid tree, got %v", ok.Errors)
	}

	bad, err := svc.ValidateTriggerConditions(ctx, tenantID, "leads", &models.ConditionNode{
		Field: "ghost", Operator: "matches", Value: "x",
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if bad.IsValid || len(bad.Errors) != 2 {
		t.Errorf("Expected field and operator errors, got %v", bad.Errors)
	}
}
