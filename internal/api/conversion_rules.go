package api

import (
	"encoding/json"
	"net/http"
	"time"

	"fluxcrm/metamorph/internal/auth"
	"fluxcrm/metamorph/internal/common"
	"fluxcrm/metamorph/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// CreateRuleHandler handles POST /api/v1/rules
func CreateRuleHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.CreateRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		rule, err := deps.Services.Rules.CreateRule(r.Context(), claims.TenantID(), claims.UserID(), &req)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Rule created", rule, http.StatusCreated)
	}
}

// UpdateRuleHandler handles PATCH /api/v1/rules/{ruleId}
func UpdateRuleHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		ruleID := chi.URLParam(r, "ruleId")

		var req dtos.UpdateRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		rule, err := deps.Services.Rules.UpdateRule(r.Context(), claims.TenantID(), ruleID, &req)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Rule updated", rule)
	}
}

// DeleteRuleHandler handles DELETE /api/v1/rules/{ruleId}?hard=true
func DeleteRuleHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		ruleID := chi.URLParam(r, "ruleId")
		hard := r.URL.Query().Get("hard") == "true"

		if err := deps.Services.Rules.DeleteRule(r.Context(), claims.TenantID(), ruleID, hard); err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Rule deleted", nil)
	}
}

// GetRuleHandler handles GET /api/v1/rules/{ruleId}
func GetRuleHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		ruleID := chi.URLParam(r, "ruleId")

		rule, err := deps.Services.Rules.GetRule(r.Context(), claims.TenantID(), ruleID)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Rule fetched", rule)
	}
}

// ListRulesHandler handles GET /api/v1/rules?source_entity=...&is_active=true
func ListRulesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		sourceEntity := r.URL.Query().Get("source_entity")
		if sourceEntity == "" {
			common.RespondError(w, initTime, nil, "Missing source_entity query parameter", http.StatusBadRequest)
			return
		}

		var isActive *bool
		if raw := r.URL.Query().Get("is_active"); raw != "" {
			active := raw == "true"
			isActive = &active
		}

		rules, err := deps.Services.Rules.ListRules(r.Context(), claims.TenantID(), sourceEntity, isActive)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Rules fetched", rules)
	}
}

// RuleStatsHandler handles GET /api/v1/rules/stats
func RuleStatsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		stats, err := deps.Services.Rules.Stats(r.Context(), claims.TenantID())
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Stats computed", stats)
	}
}

// RuleExecutionStatsHandler handles GET /api/v1/rules/{ruleId}/stats
func RuleExecutionStatsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		ruleID := chi.URLParam(r, "ruleId")

		stats, err := deps.Services.Rules.RuleStats(r.Context(), claims.TenantID(), ruleID)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Stats computed", stats)
	}
}

// ValidateConditionsHandler handles POST /api/v1/rules/validate-conditions
func ValidateConditionsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.ValidateConditionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.SourceEntity == "" {
			common.RespondError(w, initTime, nil, "Missing source_entity", http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Rules.ValidateTriggerConditions(r.Context(), claims.TenantID(), req.SourceEntity, req.Conditions)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Conditions validated", result)
	}
}
