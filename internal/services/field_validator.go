package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/models"
)

// ValidateValue type-checks and constraint-checks one value against a field
// definition. It returns the coerced typed value alongside the outcome;
// untyped data stops here and never travels further into the engine.
//
// A nil value passes unless the field is required.
func ValidateValue(field models.SchemaField, value interface{}) (models.FieldValue, models.ValidationOutcome) {
	if value == nil {
		if field.Required {
			return models.FieldValue{}, invalid("field '%s' is required", field.Name)
		}
		return models.JSONValueOf(nil), models.ValidationOutcome{IsValid: true}
	}

	switch field.Type {
	case constants.FieldTypeNumber:
		return validateNumber(field, value)
	case constants.FieldTypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return models.FieldValue{}, invalid("field '%s' must be a boolean", field.Name)
		}
		return models.BoolValue(b), models.ValidationOutcome{IsValid: true}
	case constants.FieldTypeDate:
		d, ok := models.AsDate(value)
		if !ok {
			return models.FieldValue{}, invalid("field '%s' must be a parseable timestamp", field.Name)
		}
		return models.DateValue(d), models.ValidationOutcome{IsValid: true}
	case constants.FieldTypeText:
		return validateText(field, value)
	case constants.FieldTypeJSON:
		return validateJSON(field, value)
	case constants.FieldTypeSelect:
		return validateSelect(field, value)
	}

	return models.FieldValue{}, invalid("field '%s' has unknown type '%s'", field.Name, field.Type)
}

// ValidateRecord applies ValidateValue to every field present in the record
// and checks required-field presence over the full schema.
func ValidateRecord(schema *models.ComposedSchema, record *models.Record) models.RecordValidation {
	var errs []string

	for _, field := range schema.Fields {
		value, present := record.Lookup(field.Name)
		if !present || value == nil {
			if field.Required {
				errs = append(errs, fmt.Sprintf("field '%s' is required", field.Name))
			}
			continue
		}

		if _, outcome := ValidateValue(field, value); !outcome.IsValid {
			errs = append(errs, outcome.Error)
		}
	}

	return models.RecordValidation{IsValid: len(errs) == 0, Errors: errs}
}

func validateNumber(field models.SchemaField, value interface{}) (models.FieldValue, models.ValidationOutcome) {
	n, ok := numericValue(value)
	if !ok {
		return models.FieldValue{}, invalid("field '%s' must be a finite number", field.Name)
	}

	if min, ok := ruleNumber(field.ValidationRules, "min"); ok && n < min {
		return models.FieldValue{}, invalid("field '%s' must be >= %v", field.Name, min)
	}
	if max, ok := ruleNumber(field.ValidationRules, "max"); ok && n > max {
		return models.FieldValue{}, invalid("field '%s' must be <= %v", field.Name, max)
	}

	return models.NumberValue(n), models.ValidationOutcome{IsValid: true}
}

func validateText(field models.SchemaField, value interface{}) (models.FieldValue, models.ValidationOutcome) {
	s, ok := value.(string)
	if !ok {
		return models.FieldValue{}, invalid("field '%s' must be a string", field.Name)
	}

	if min, ok := ruleNumber(field.ValidationRules, "minLength"); ok && len(s) < int(min) {
		return models.FieldValue{}, invalid("field '%s' must be at least %d characters", field.Name, int(min))
	}
	if max, ok := ruleNumber(field.ValidationRules, "maxLength"); ok && len(s) > int(max) {
		return models.FieldValue{}, invalid("field '%s' must be at most %d characters", field.Name, int(max))
	}

	if pattern, ok := ruleString(field.ValidationRules, "pattern"); ok && pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return models.FieldValue{}, invalid("field '%s' has an invalid pattern rule", field.Name)
		}
		if !re.MatchString(s) {
			if msg, ok := ruleString(field.ValidationRules, "message"); ok && msg != "" {
				return models.FieldValue{}, models.ValidationOutcome{IsValid: false, Error: msg}
			}
			return models.FieldValue{}, invalid("field '%s' does not match the required pattern", field.Name)
		}
	}

	return models.TextValue(s), models.ValidationOutcome{IsValid: true}
}

func validateJSON(field models.SchemaField, value interface{}) (models.FieldValue, models.ValidationOutcome) {
	switch v := value.(type) {
	case string:
		var parsed interface{}
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return models.FieldValue{}, invalid("field '%s' must contain valid JSON", field.Name)
		}
		return models.JSONValueOf(parsed), models.ValidationOutcome{IsValid: true}
	case map[string]interface{}, []interface{}:
		return models.JSONValueOf(v), models.ValidationOutcome{IsValid: true}
	}
	return models.FieldValue{}, invalid("field '%s' must be a JSON document", field.Name)
}

func validateSelect(field models.SchemaField, value interface{}) (models.FieldValue, models.ValidationOutcome) {
	s, ok := value.(string)
	if !ok {
		return models.FieldValue{}, invalid("field '%s' must be a string option", field.Name)
	}

	options := selectOptions(field.UIConfig)
	for _, opt := range options {
		if opt == s {
			return models.SelectValue(s), models.ValidationOutcome{IsValid: true}
		}
	}

	return models.FieldValue{}, invalid("field '%s' must be one of [%s]", field.Name, strings.Join(options, ", "))
}

// numericValue is the strict reading used by the number type check: strings
// are not accepted here, unlike the coercing comparisons in trigger leaves.
func numericValue(value interface{}) (float64, bool) {
	if _, isString := value.(string); isString {
		return 0, false
	}
	return models.AsNumber(value)
}

func selectOptions(uiConfig map[string]interface{}) []string {
	raw, ok := uiConfig["options"]
	if !ok {
		return nil
	}

	var options []string
	switch list := raw.(type) {
	case []interface{}:
		for _, item := range list {
			if s, ok := item.(string); ok {
				options = append(options, s)
			}
		}
	case []string:
		options = list
	}
	return options
}

func ruleNumber(rules map[string]interface{}, key string) (float64, bool) {
	raw, ok := rules[key]
	if !ok {
		return 0, false
	}
	return models.AsNumber(raw)
}

func ruleString(rules map[string]interface{}, key string) (string, bool) {
	raw, ok := rules[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func invalid(format string, args ...interface{}) models.ValidationOutcome {
	return models.ValidationOutcome{IsValid: false, Error: fmt.Sprintf(format, args...)}
}
