package models

// FieldSource identifies whether a composed field comes from the entity's
// fixed base schema or from a tenant-defined extension.
type FieldSource string

const (
	FieldSourceBase      FieldSource = "base"
	FieldSourceExtension FieldSource = "extension"
)

// SchemaField is one entry of a composed schema. Extension entries carry
// their validation rules and UI config so value checks need no extra lookup.
type SchemaField struct {
	Name            string                 `json:"name"`
	Type            string                 `json:"type"`
	Required        bool                   `json:"required"`
	Source          FieldSource            `json:"source"`
	ValidationRules map[string]interface{} `json:"validation_rules,omitempty"`
	UIConfig        map[string]interface{} `json:"ui_config,omitempty"`
}

// ComposedSchema is the merged logical field list for one (tenant, entity
// table) pair. It is derived on demand and never mutated in place.
type ComposedSchema struct {
	TenantID    string        `json:"tenant_id"`
	EntityTable string        `json:"entity_table"`
	Fields      []SchemaField `json:"fields"`
}

// Field returns the schema entry for name, or nil when the name does not
// resolve in this schema.
func (s *ComposedSchema) Field(name string) *SchemaField {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// HasField reports whether name resolves in this schema.
func (s *ComposedSchema) HasField(name string) bool {
	return s.Field(name) != nil
}

// BaseFields returns only the fixed base fields, in declaration order.
func (s *ComposedSchema) BaseFields() []SchemaField {
	var out []SchemaField
	for _, f := range s.Fields {
		if f.Source == FieldSourceBase {
			out = append(out, f)
		}
	}
	return out
}

// ExtensionFields returns only the tenant-defined fields, in creation order.
func (s *ComposedSchema) ExtensionFields() []SchemaField {
	var out []SchemaField
	for _, f := range s.Fields {
		if f.Source == FieldSourceExtension {
			out = append(out, f)
		}
	}
	return out
}

// Record is the runtime shape of one entity record as the engine sees it:
// fixed base fields plus the tenant extension value map.
type Record struct {
	ID         string                 `json:"id"`
	Fields     map[string]interface{} `json:"fields"`
	Extensions map[string]interface{} `json:"extensions"`
}

// Lookup resolves a field name against the record, base fields first and
// the extensions map second.
func (r *Record) Lookup(name string) (interface{}, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r.Fields[name]; ok {
		return v, true
	}
	if v, ok := r.Extensions[name]; ok {
		return v, true
	}
	return nil, false
}
