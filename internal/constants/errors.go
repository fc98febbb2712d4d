package constants

// Engine error codes. CRUD paths reject with these synchronously;
// execution paths fold anomalies into the result record instead.
const (
	ErrCodeInvalidArgument   = "invalid_argument"
	ErrCodeConflict          = "conflict"
	ErrCodeNotFound          = "not_found"
	ErrCodeValidationFailure = "validation_failure"
	ErrCodeStorageFailure    = "storage_failure"
)

const (
	MsgFieldNameTaken       = "A field with this name already exists for the entity"
	MsgFieldNameInvalid     = "Field name must start with a letter or underscore and contain only letters, digits and underscores"
	MsgFieldNameReserved    = "Field name is reserved"
	MsgFieldTypeUnknown     = "Unknown field type"
	MsgFieldNotFound        = "Extension field definition not found"
	MsgRuleNotFound         = "Conversion rule not found"
	MsgRuleSelfTarget       = "Source and target entity must differ"
	MsgSourceRecordNotFound = "source record not found"
)

var errorMessages = map[string]string{
	ErrCodeInvalidArgument:   "Invalid request",
	ErrCodeConflict:          "Resource already exists",
	ErrCodeNotFound:          "Resource not found",
	ErrCodeValidationFailure: "Value failed validation",
	ErrCodeStorageFailure:    "Storage operation failed",
}

// GetErrorMessage returns the generic message for an error code.
func GetErrorMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An unexpected error occurred"
}
