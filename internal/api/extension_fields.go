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

// CreateFieldHandler handles POST /api/v1/fields
func CreateFieldHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.CreateFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		field, err := deps.Services.Registry.CreateField(r.Context(), claims.TenantID(), claims.UserID(), &req)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		if deps.Metrics != nil {
			deps.Metrics.FieldMutationsTotal.WithLabelValues("create").Inc()
		}
		common.RespondSuccess(w, initTime, "Field created", field, http.StatusCreated)
	}
}

// UpdateFieldHandler handles PATCH /api/v1/fields/{fieldId}
func UpdateFieldHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		fieldID := chi.URLParam(r, "fieldId")

		var req dtos.UpdateFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		field, err := deps.Services.Registry.UpdateField(r.Context(), claims.TenantID(), fieldID, &req)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		if deps.Metrics != nil {
			deps.Metrics.FieldMutationsTotal.WithLabelValues("update").Inc()
		}
		common.RespondSuccess(w, initTime, "Field updated", field)
	}
}

// DeactivateFieldHandler handles DELETE /api/v1/fields/{fieldId}
func DeactivateFieldHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		fieldID := chi.URLParam(r, "fieldId")

		if err := deps.Services.Registry.DeactivateField(r.Context(), claims.TenantID(), fieldID); err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		if deps.Metrics != nil {
			deps.Metrics.FieldMutationsTotal.WithLabelValues("deactivate").Inc()
		}
		common.RespondSuccess(w, initTime, "Field deactivated", nil)
	}
}

// ListFieldsHandler handles GET /api/v1/fields?entity_table=...
func ListFieldsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		entityTable := r.URL.Query().Get("entity_table")
		if entityTable == "" {
			common.RespondError(w, initTime, nil, "Missing entity_table query parameter", http.StatusBadRequest)
			return
		}

		fields, err := deps.Services.Registry.ListActiveFields(r.Context(), claims.TenantID(), entityTable)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Fields fetched", fields)
	}
}

// GetComposedSchemaHandler handles GET /api/v1/schema/{entityTable}
func GetComposedSchemaHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetTenantClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		entityTable := chi.URLParam(r, "entityTable")

		schema, err := deps.Services.Schema.Compose(r.Context(), claims.TenantID(), entityTable)
		if err != nil {
			handleEngineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Schema composed", schema)
	}
}
