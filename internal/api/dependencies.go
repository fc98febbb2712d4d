package api

import (
	"os"
	"time"

	"fluxcrm/metamorph/internal/common"
	"fluxcrm/metamorph/internal/db"
	"fluxcrm/metamorph/internal/db/repositories"
	"fluxcrm/metamorph/internal/events"
	"fluxcrm/metamorph/internal/logging"
	"fluxcrm/metamorph/internal/metrics"
	"fluxcrm/metamorph/internal/services"
	"fluxcrm/metamorph/internal/store"

	"github.com/redis/go-redis/v9"
)

type Repositories struct {
	Fields  *repositories.ExtensionFieldRepository
	Rules   *repositories.ConversionRuleRepository
	Results *repositories.ConversionResultRepository
	Base    *repositories.BaseFieldRepository
	Keys    *repositories.KeysRepo
	Stats   *repositories.StatsRepository
}

type Services struct {
	Cache    common.CacheInterface
	Events   *events.Dispatcher
	Schema   *services.SchemaService
	Registry *services.RegistryService
	Rules    *services.RuleService
	Suggest  *services.MappingSuggestionService
	Executor *services.ConversionExecutorService
	Store    store.EntityStore
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
	Redis    *redis.Client
}

func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		Fields:  repositories.NewExtensionFieldRepository(db.PgDB),
		Rules:   repositories.NewConversionRuleRepository(db.PgDB),
		Results: repositories.NewConversionResultRepository(db.PgDB),
		Base:    repositories.NewBaseFieldRepository(db.PgDB),
		Keys:    repositories.NewApiKeysRepo(db.DB),
		Stats:   repositories.NewStatsRepository(db.DB),
	}

	// Cache and event emission upgrade to Redis when configured; a single
	// replica runs fine on the in-memory cache with log-only audit.
	var cacheSvc common.CacheInterface = common.NewCacheService(3600, 600)
	emitters := []events.Emitter{events.LogEmitter{}}

	var redisClient *redis.Client
	if os.Getenv("REDIS_HOST") != "" {
		redisClient = common.NewRedisClient()
		if redisCache, err := common.NewRedisCacheService(redisClient); err == nil {
			cacheSvc = redisCache
			logging.Info("Using Redis-backed schema cache")
		} else {
			logging.Warn("Redis cache unavailable, falling back to in-memory", "error", err.Error())
		}
		emitters = append(emitters, events.NewRedisStreamEmitter(redisClient, os.Getenv("EVENT_STREAM")))
	}

	dispatcher := events.NewDispatcher(256, emitters...)

	schemaSvc := services.NewSchemaService(repos.Base, repos.Fields, cacheSvc, metricsReg)
	registrySvc := services.NewRegistryService(repos.Fields, repos.Rules, schemaSvc, dispatcher)
	ruleSvc := services.NewRuleService(repos.Rules, repos.Stats, schemaSvc, dispatcher)
	suggestSvc := services.NewMappingSuggestionService()
	entityStore := store.NewGormEntityStore(db.PgDB)
	executorSvc := services.NewConversionExecutorService(
		repos.Rules,
		repos.Results,
		schemaSvc,
		entityStore,
		dispatcher,
		metricsReg,
	)

	svcs := &Services{
		Cache:    cacheSvc,
		Events:   dispatcher,
		Schema:   schemaSvc,
		Registry: registrySvc,
		Rules:    ruleSvc,
		Suggest:  suggestSvc,
		Executor: executorSvc,
		Store:    entityStore,
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
		Redis:    redisClient,
	}, nil
}

// executionTimeout bounds the storage calls of one conversion request.
const executionTimeout = 10 * time.Second
