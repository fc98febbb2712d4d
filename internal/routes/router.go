package routes

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"fluxcrm/metamorph/internal/api"
	"fluxcrm/metamorph/internal/db"
	"fluxcrm/metamorph/internal/logging"
	"fluxcrm/metamorph/internal/metrics"
	"fluxcrm/metamorph/internal/middleware"
	"fluxcrm/metamorph/internal/workers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func RegisterRoutes(upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Tenant-Id", "X-User-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, deps.Redis, upSince))

	workers.InitWorkers(
		context.Background(),
		deps.Services.Events,
		deps.Repo.Results,
		resultRetention(),
	)

	RegisterAPIRoutes(r, metricsReg, deps)

	return r
}

// resultRetention reads RESULT_RETENTION_DAYS, defaulting to 90 days.
func resultRetention() time.Duration {
	if raw := os.Getenv("RESULT_RETENTION_DAYS"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
		logging.Warn("Invalid RESULT_RETENTION_DAYS, using default", "value", raw)
	}
	return 90 * 24 * time.Hour
}
