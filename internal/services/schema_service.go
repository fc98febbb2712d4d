package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fluxcrm/metamorph/internal/common"
	"fluxcrm/metamorph/internal/db/repositories"
	"fluxcrm/metamorph/internal/metrics"
	"fluxcrm/metamorph/internal/models"
)

const schemaCacheTTL = 1 * time.Hour

// SchemaService composes the logical field list of one (tenant, entity
// table) pair: fixed base fields first, then active extension fields in
// creation order. Results are memoized; the registry invalidates the memo
// synchronously on every field mutation.
type SchemaService struct {
	baseRepo  *repositories.BaseFieldRepository
	fieldRepo *repositories.ExtensionFieldRepository
	cache     common.CacheInterface
	metrics   *metrics.MetricsRegistry
}

// Ensure SchemaService satisfies the registry's invalidation hook
var _ SchemaInvalidator = (*SchemaService)(nil)

// NewSchemaService creates a new schema composition service
func NewSchemaService(
	baseRepo *repositories.BaseFieldRepository,
	fieldRepo *repositories.ExtensionFieldRepository,
	cache common.CacheInterface,
	metricsReg *metrics.MetricsRegistry,
) *SchemaService {
	return &SchemaService{
		baseRepo:  baseRepo,
		fieldRepo: fieldRepo,
		cache:     cache,
		metrics:   metricsReg,
	}
}

// Compose returns the merged schema for (tenantID, entityTable).
func (s *SchemaService) Compose(ctx context.Context, tenantID, entityTable string) (*models.ComposedSchema, error) {
	key := schemaCacheKey(tenantID, entityTable)

	if cached, found := s.cache.Get(key); found {
		if schema := decodeCachedSchema(cached); schema != nil {
			if s.metrics != nil {
				s.metrics.SchemaCacheHits.Inc()
			}
			return schema, nil
		}
		s.cache.Delete(key)
	}

	if s.metrics != nil {
		s.metrics.SchemaCacheMisses.Inc()
	}

	schema, err := s.compose(ctx, tenantID, entityTable)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, schema, schemaCacheTTL)
	return schema, nil
}

// Invalidate drops the memo for one (tenant, entity table) pair.
func (s *SchemaService) Invalidate(tenantID, entityTable string) {
	s.cache.Delete(schemaCacheKey(tenantID, entityTable))
}

func (s *SchemaService) compose(ctx context.Context, tenantID, entityTable string) (*models.ComposedSchema, error) {
	baseFields, err := s.baseRepo.ListByEntityTable(ctx, entityTable)
	if err != nil {
		return nil, storageFailure("failed to load base schema", err)
	}

	extFields, err := s.fieldRepo.ListActive(ctx, tenantID, entityTable)
	if err != nil {
		return nil, storageFailure("failed to load extension fields", err)
	}

	schema := &models.ComposedSchema{
		TenantID:    tenantID,
		EntityTable: entityTable,
		Fields:      make([]models.SchemaField, 0, len(baseFields)+len(extFields)),
	}

	for _, f := range baseFields {
		schema.Fields = append(schema.Fields, models.SchemaField{
			Name:     f.FieldName,
			Type:     f.FieldType,
			Required: f.IsRequired,
			Source:   models.FieldSourceBase,
		})
	}
	for _, f := range extFields {
		schema.Fields = append(schema.Fields, models.SchemaField{
			Name:            f.FieldName,
			Type:            f.FieldType,
			Required:        f.IsRequired,
			Source:          models.FieldSourceExtension,
			ValidationRules: map[string]interface{}(f.ValidationRules),
			UIConfig:        map[string]interface{}(f.UIConfig),
		})
	}

	return schema, nil
}

func schemaCacheKey(tenantID, entityTable string) string {
	return fmt.Sprintf("schema:%s:%s", tenantID, entityTable)
}

// decodeCachedSchema recovers a ComposedSchema from whatever shape the
// cache backend hands back. The in-memory cache returns the stored pointer;
// the Redis cache JSON-roundtrips values into generic maps, so those are
// re-decoded. Returns nil when the entry is unusable.
func decodeCachedSchema(cached interface{}) *models.ComposedSchema {
	switch v := cached.(type) {
	case *models.ComposedSchema:
		return v
	case map[string]interface{}:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var schema models.ComposedSchema
		if err := json.Unmarshal(raw, &schema); err != nil {
			return nil
		}
		if schema.EntityTable == "" {
			return nil
		}
		return &schema
	default:
		return nil
	}
}
