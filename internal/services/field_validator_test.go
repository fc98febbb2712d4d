package services

import (
	"testing"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/models"
)

func TestValidateValue_RequiredNil(t *testing.T) {
	field := models.SchemaField{Name: "score", Type: constants.FieldTypeNumber, Required: true}

	_, outcome := ValidateValue(field, nil)
	if outcome.IsValid {
		t.Error("Expected required field with nil value to fail")
	}

	field.Required = false
	_, outcome = ValidateValue(field, nil)
	if !outcome.IsValid {
		t.Errorf("Expected optional field with nil value to pass, got %s", outcome.Error)
	}
}

func TestValidateValue_NumberRange(t *testing.T) {
	field := models.SchemaField{
		Name:            "deal_size",
		Type:            constants.FieldTypeNumber,
		ValidationRules: map[string]interface{}{"min": float64(0), "max": float64(100)},
	}

	value, outcome := ValidateValue(field, float64(42))
	if !outcome.IsValid {
		t.Fatalf("Expected 42 to pass, got %s", outcome.Error)
	}
	if value.Kind != models.KindNumber || value.Number != 42 {
		t.Errorf("Expected coerced number 42, got %v", value.Raw())
	}

	if _, outcome := ValidateValue(field, float64(-1)); outcome.IsValid {
		t.Error("Expected -1 to fail min rule")
	}
	if _, outcome := ValidateValue(field, float64(101)); outcome.IsValid {
		t.Error("Expected 101 to fail max rule")
	}
}

func TestValidateValue_NumberRejectsNumericString(t *testing.T) {
	field := models.SchemaField{Name: "score", Type: constants.FieldTypeNumber}

	if _, outcome := ValidateValue(field, "42"); outcome.IsValid {
		t.Error("Expected numeric string to be rejected by the number type check")
	}
}

func TestValidateValue_Boolean(t *testing.T) {
	field := models.SchemaField{Name: "is_hot", Type: constants.FieldTypeBoolean}

	if _, outcome := ValidateValue(field, true); !outcome.IsValid {
		t.Errorf("Expected true to pass, got %s", outcome.Error)
	}
	if _, outcome := ValidateValue(field, "true"); outcome.IsValid {
		t.Error("Expected string 'true' to be rejected")
	}
	if _, outcome := ValidateValue(field, float64(1)); outcome.IsValid {
		t.Error("Expected number 1 to be rejected")
	}
}

func TestValidateValue_Date(t *testing.T) {
	field := models.SchemaField{Name: "close_date", Type: constants.FieldTypeDate}

	for _, input := range []interface{}{
		"2026-03-01T10:00:00Z",
		"2026-03-01",
		float64(1767225600000),
	} {
		if _, outcome := ValidateValue(field, input); !outcome.IsValid {
			t.Errorf("Expected %v to parse as a date, got %s", input, outcome.Error)
		}
	}

	if _, outcome := ValidateValue(field, "next tuesday"); outcome.IsValid {
		t.Error("Expected unparseable date to fail")
	}
}

func TestValidateValue_TextRules(t *testing.T) {
	field := models.SchemaField{
		Name: "sku",
		Type: constants.FieldTypeText,
		ValidationRules: map[string]interface{}{
			"minLength": float64(3),
			"maxLength": float64(8),
			"pattern":   "^[A-Z]+-[0-9]+$",
			"message":   "SKU must look like ABC-123",
		},
	}

	if _, outcome := ValidateValue(field, "ABC-12"); !outcome.IsValid {
		t.Errorf("Expected ABC-12 to pass, got %s", outcome.Error)
	}
	if _, outcome := ValidateValue(field, "AB"); outcome.IsValid {
		t.Error("Expected too-short value to fail minLength")
	}
	if _, outcome := ValidateValue(field, "ABCDEF-123"); outcome.IsValid {
		t.Error("Expected too-long value to fail maxLength")
	}

	_, outcome := ValidateValue(field, "abc-12")
	if outcome.IsValid {
		t.Fatal("Expected lowercase value to fail the pattern")
	}
	if outcome.Error != "SKU must look like ABC-123" {
		t.Errorf("Expected the custom message, got %q", outcome.Error)
	}
}

func TestValidateValue_JSON(t *testing.T) {
	field := models.SchemaField{Name: "payload", Type: constants.FieldTypeJSON}

	if _, outcome := ValidateValue(field, `{"a": 1}`); !outcome.IsValid {
		t.Errorf("Expected JSON string to pass, got %s", outcome.Error)
	}
	if _, outcome := ValidateValue(field, map[string]interface{}{"a": 1}); !outcome.IsValid {
		t.Errorf("Expected map to pass, got %s", outcome.Error)
	}
	if _, outcome := ValidateValue(field, `{"a":`); outcome.IsValid {
		t.Error("Expected malformed JSON string to fail")
	}
	if _, outcome := ValidateValue(field, float64(7)); outcome.IsValid {
		t.Error("Expected bare number to be rejected as json")
	}
}

func TestValidateValue_SelectOptions(t *testing.T) {
	field := models.SchemaField{
		Name: "priority",
		Type: constants.FieldTypeSelect,
		UIConfig: map[string]interface{}{
			"options": []interface{}{"low", "high"},
		},
	}

	if _, outcome := ValidateValue(field, "high"); !outcome.IsValid {
		t.Errorf("Expected 'high' to pass, got %s", outcome.Error)
	}

	// A value outside the configured options must be rejected.
	_, outcome := ValidateValue(field, "medium")
	if outcome.IsValid {
		t.Fatal("Expected 'medium' to fail against options [low, high]")
	}
}

func TestValidateValue_UnknownType(t *testing.T) {
	field := models.SchemaField{Name: "x", Type: "geo"}

	if _, outcome := ValidateValue(field, "anything"); outcome.IsValid {
		t.Error("Expected unknown field type to fail validation")
	}
}

func TestValidateRecord(t *testing.T) {
	schema := &models.ComposedSchema{
		TenantID:    "t1",
		EntityTable: "leads",
		Fields: []models.SchemaField{
			{Name: "name", Type: constants.FieldTypeText, Required: true, Source: models.FieldSourceBase},
			{Name: "score", Type: constants.FieldTypeNumber, Source: models.FieldSourceExtension},
		},
	}

	record := &models.Record{
		Fields:     map[string]interface{}{"name": "Acme"},
		Extensions: map[string]interface{}{"score": float64(10)},
	}
	if got := ValidateRecord(schema, record); !got.IsValid {
		t.Errorf("Expected record to validate, got %v", got.Errors)
	}

	record = &models.Record{
		Extensions: map[string]interface{}{"score": "ten"},
	}
	got := ValidateRecord(schema, record)
	if got.IsValid {
		t.Fatal("Expected record to fail validation")
	}
	if len(got.Errors) != 2 {
		t.Errorf("Expected missing-required and bad-number errors, got %v", got.Errors)
	}
}
