package api

import (
	"net/http"
	"time"

	"fluxcrm/metamorph/internal/common"
	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/services"
)

// handleEngineError maps service errors to appropriate HTTP responses
func handleEngineError(w http.ResponseWriter, initTime time.Time, err error) {
	if engineErr, ok := err.(*services.EngineError); ok {
		statusCode := http.StatusInternalServerError

		switch engineErr.Code {
		case constants.ErrCodeInvalidArgument, constants.ErrCodeValidationFailure:
			statusCode = http.StatusBadRequest
		case constants.ErrCodeConflict:
			statusCode = http.StatusConflict
		case constants.ErrCodeNotFound:
			statusCode = http.StatusNotFound
		case constants.ErrCodeStorageFailure:
			statusCode = http.StatusInternalServerError
		}

		message := engineErr.Message
		if message == "" && engineErr.Code != "" {
			message = constants.GetErrorMessage(engineErr.Code)
		}

		common.RespondError(w, initTime, err, message, statusCode)
		return
	}

	common.RespondError(w, initTime, err, "An unexpected error occurred", http.StatusInternalServerError)
}
