package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"fluxcrm/metamorph/internal/auth"
	"fluxcrm/metamorph/internal/common"
	"fluxcrm/metamorph/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// ExecuteConversionHandler handles POST /api/v1/conversions/execute
func ExecuteConversionHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.ExecuteConversionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.RuleID == "" || req.SourceRecordID == "" {
			common.RespondError(w, initTime, nil, "rule_id and source_record_id are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), executionTimeout)
		defer cancel()

		result, err := deps.Services.Executor.Execute(ctx, claims.TenantID(), req.RuleID, req.SourceRecordID)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Conversion executed", result)
	}
}

// CheckTriggersHandler handles POST /api/v1/conversions/check-triggers
func CheckTriggersHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.CheckTriggersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.EntityTable == "" || req.RecordID == "" {
			common.RespondError(w, initTime, nil, "entity_table and record_id are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), executionTimeout)
		defer cancel()

		results, err := deps.Services.Executor.CheckAutoTriggers(ctx, claims.TenantID(), req.EntityTable, req.RecordID)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Triggers evaluated", results)
	}
}

// ListConversionResultsHandler handles GET /api/v1/conversions/results/{ruleId}?limit=50
func ListConversionResultsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		ruleID := chi.URLParam(r, "ruleId")

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 500 {
				common.RespondError(w, initTime, err, "limit must be between 1 and 500", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		results, err := deps.Services.Executor.ListResults(r.Context(), claims.TenantID(), ruleID, limit)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Results fetched", results)
	}
}

// SuggestMappingHandler handles POST /api/v1/mappings/suggest
func SuggestMappingHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.SuggestMappingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.SourceEntity == "" || req.TargetEntity == "" {
			common.RespondError(w, initTime, nil, "source_entity and target_entity are required", http.StatusBadRequest)
			return
		}

		source, err := deps.Services.Schema.Compose(r.Context(), claims.TenantID(), req.SourceEntity)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}
		target, err := deps.Services.Schema.Compose(r.Context(), claims.TenantID(), req.TargetEntity)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		suggestions := deps.Services.Suggest.Suggest(source, target)
		common.RespondSuccess(w, initTime, "Suggestions computed", suggestions)
	}
}
