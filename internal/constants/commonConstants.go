package constants

type ApiStatus string

const (
	APIStatusOk    ApiStatus = "success"
	APIStatusError ApiStatus = "error"
)

// Field types supported by extension field definitions.
const (
	FieldTypeText    = "text"
	FieldTypeNumber  = "number"
	FieldTypeBoolean = "boolean"
	FieldTypeDate    = "date"
	FieldTypeJSON    = "json"
	FieldTypeSelect  = "select"
)

// Condition operators supported by trigger evaluation.
const (
	OpEq    = "eq"
	OpNe    = "ne"
	OpGt    = "gt"
	OpGte   = "gte"
	OpLt    = "lt"
	OpLte   = "lte"
	OpLike  = "like"
	OpIn    = "in"
	OpNotIn = "not_in"
)

// Boolean combinators for condition trees.
const (
	CombinatorAnd = "AND"
	CombinatorOr  = "OR"
)

// Audit event types emitted by the engine.
const (
	EventFieldCreated       = "extension_field.created"
	EventFieldUpdated       = "extension_field.updated"
	EventFieldDeactivated   = "extension_field.deactivated"
	EventRuleCreated        = "conversion_rule.created"
	EventRuleUpdated        = "conversion_rule.updated"
	EventRuleDeleted        = "conversion_rule.deleted"
	EventConversionExecuted = "conversion.executed"
	EventConversionFailed   = "conversion.failed"
)

// FieldTypes lists every valid extension field type.
var FieldTypes = []string{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeBoolean,
	FieldTypeDate,
	FieldTypeJSON,
	FieldTypeSelect,
}

// IsValidFieldType reports whether t is a supported field type.
func IsValidFieldType(t string) bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// IsValidOperator reports whether op is a supported leaf operator.
func IsValidOperator(op string) bool {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpLike, OpIn, OpNotIn:
		return true
	}
	return false
}
