package models

// Mapping suggestion match types.
const (
	MatchExact   = "exact"
	MatchSimilar = "similar"
)

// FieldMappingSuggestion is one proposed source→target pairing.
type FieldMappingSuggestion struct {
	SourceField string  `json:"source_field"`
	TargetField string  `json:"target_field"`
	Confidence  float64 `json:"confidence"`
	MatchType   string  `json:"match_type"`
}

// MappingSuggestions aggregates the proposals for one (source, target)
// schema pair. Computed on request, never persisted.
type MappingSuggestions struct {
	SourceEntity string `json:"source_entity"`
	TargetEntity string `json:"target_entity"`

	FieldSuggestions          []FieldMappingSuggestion `json:"field_suggestions"`
	ExtensionFieldSuggestions []FieldMappingSuggestion `json:"extension_field_suggestions"`

	UnmappedSourceFields []string `json:"unmapped_source_fields"`
	UnmappedTargetFields []string `json:"unmapped_target_fields"`

	ConfidenceScore float64 `json:"confidence_score"`
}
