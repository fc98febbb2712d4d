package services

import (
	"errors"
	"fmt"

	"fluxcrm/metamorph/internal/constants"
)

// EngineError carries an error taxonomy code alongside the message so the
// API layer can map it to an HTTP status.
type EngineError struct {
	Code    string
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func invalidArgument(message string) *EngineError {
	return &EngineError{Code: constants.ErrCodeInvalidArgument, Message: message}
}

func conflict(message string) *EngineError {
	return &EngineError{Code: constants.ErrCodeConflict, Message: message}
}

func notFound(message string) *EngineError {
	return &EngineError{Code: constants.ErrCodeNotFound, Message: message}
}

func storageFailure(message string, err error) *EngineError {
	return &EngineError{Code: constants.ErrCodeStorageFailure, Message: message, Err: err}
}

// ErrorCode extracts the taxonomy code from err, or storage_failure for
// anything that is not an EngineError.
func ErrorCode(err error) string {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Code
	}
	return constants.ErrCodeStorageFailure
}
