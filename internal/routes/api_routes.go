package routes

import (
	"fluxcrm/metamorph/internal/api"
	"fluxcrm/metamorph/internal/metrics"
	"fluxcrm/metamorph/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, metricsReg *metrics.MetricsRegistry, deps *api.Dependencies) {

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))
		v1.Use(middleware.AuthMiddleware(deps.Repo.Keys)) // global: every route requires a tenant identity

		// Extension field registry and composed schemas
		v1.Post("/fields", api.CreateFieldHandler(deps))
		v1.Get("/fields", api.ListFieldsHandler(deps))
		v1.Patch("/fields/{fieldId}", api.UpdateFieldHandler(deps))
		v1.Delete("/fields/{fieldId}", api.DeactivateFieldHandler(deps))
		v1.Get("/schema/{entityTable}", api.GetComposedSchemaHandler(deps))

		// Conversion rules
		v1.Post("/rules", api.CreateRuleHandler(deps))
		v1.Get("/rules", api.ListRulesHandler(deps))
		v1.Get("/rules/stats", api.RuleStatsHandler(deps))
		v1.Post("/rules/validate-conditions", api.ValidateConditionsHandler(deps))
		v1.Get("/rules/{ruleId}", api.GetRuleHandler(deps))
		v1.Get("/rules/{ruleId}/stats", api.RuleExecutionStatsHandler(deps))
		v1.Patch("/rules/{ruleId}", api.UpdateRuleHandler(deps))
		v1.Delete("/rules/{ruleId}", api.DeleteRuleHandler(deps))

		// Mapping suggestions
		v1.Post("/mappings/suggest", api.SuggestMappingHandler(deps))

		// Conversion execution and results
		v1.Post("/conversions/execute", api.ExecuteConversionHandler(deps))
		v1.Post("/conversions/check-triggers", api.CheckTriggersHandler(deps))
		v1.Get("/conversions/results/{ruleId}", api.ListConversionResultsHandler(deps))
	})
}
