package models

// ValidationOutcome is the result of checking one value against one field
// definition.
type ValidationOutcome struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

// RecordValidation is the result of checking a whole record against a
// composed schema.
type RecordValidation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}
