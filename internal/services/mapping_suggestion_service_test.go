package services

import (
	"testing"

	"fluxcrm/metamorph/internal/constants"
	"fluxcrm/metamorph/internal/models"
)

func schemaOf(entityTable string, base, ext []string) *models.ComposedSchema {
	s := &models.ComposedSchema{TenantID: "t1", EntityTable: entityTable}
	for _, name := range base {
		s.Fields = append(s.Fields, models.SchemaField{
			Name: name, Type: constants.FieldTypeText, Source: models.FieldSourceBase,
		})
	}
	for _, name := range ext {
		s.Fields = append(s.Fields, models.SchemaField{
			Name: name, Type: constants.FieldTypeText, Source: models.FieldSourceExtension,
		})
	}
	return s
}

func TestSuggest_ExactMatches(t *testing.T) {
	svc := NewMappingSuggestionService()

	source := schemaOf("leads", []string{"email", "Phone"}, nil)
	target := schemaOf("contacts", []string{"Email", "phone"}, nil)

	got := svc.Suggest(source, target)

	if len(got.FieldSuggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(got.FieldSuggestions))
	}
	for _, sug := range got.FieldSuggestions {
		if sug.MatchType != models.MatchExact {
			t.Errorf("Expected exact match for %s, got %s", sug.SourceField, sug.MatchType)
		}
		if sug.Confidence != 1.0 {
			t.Errorf("Expected confidence 1.0 for %s, got %f", sug.SourceField, sug.Confidence)
		}
	}
	if got.ConfidenceScore != 1.0 {
		t.Errorf("Expected overall confidence 1.0, got %f", got.ConfidenceScore)
	}
	if len(got.UnmappedSourceFields) != 0 || len(got.UnmappedTargetFields) != 0 {
		t.Errorf("Expected nothing unmapped, got %v / %v", got.UnmappedSourceFields, got.UnmappedTargetFields)
	}
}

func TestSuggest_SimilarMatch(t *testing.T) {
	svc := NewMappingSuggestionService()

	source := schemaOf("leads", []string{"company_name"}, nil)
	target := schemaOf("accounts", []string{"companyName"}, nil)

	got := svc.Suggest(source, target)

	if len(got.FieldSuggestions) != 1 {
		t.Fatalf("Expected 1 suggestion, got %d", len(got.FieldSuggestions))
	}
	sug := got.FieldSuggestions[0]
	if sug.MatchType != models.MatchSimilar {
		t.Errorf("Expected similar match, got %s", sug.MatchType)
	}
	if sug.Confidence < similarityThreshold || sug.Confidence > 1.0 {
		t.Errorf("Expected confidence in [%.2f, 1.0], got %f", similarityThreshold, sug.Confidence)
	}
}

func TestSuggest_NamespacesDoNotCross(t *testing.T) {
	svc := NewMappingSuggestionService()

	// Same name on both sides, but in different namespaces.
	source := schemaOf("leads", []string{"score"}, nil)
	target := schemaOf("contacts", nil, []string{"score"})

	got := svc.Suggest(source, target)

	if len(got.FieldSuggestions) != 0 || len(got.ExtensionFieldSuggestions) != 0 {
		t.Errorf("Expected no cross-namespace matches, got %v / %v",
			got.FieldSuggestions, got.ExtensionFieldSuggestions)
	}
	if len(got.UnmappedSourceFields) != 1 || len(got.UnmappedTargetFields) != 1 {
		t.Errorf("Expected both sides unmapped, got %v / %v",
			got.UnmappedSourceFields, got.UnmappedTargetFields)
	}
}

func TestSuggest_TargetClaimedOnce(t *testing.T) {
	svc := NewMappingSuggestionService()

	source := schemaOf("leads", []string{"customer_name", "customer_names"}, nil)
	target := schemaOf("accounts", []string{"customer_name"}, nil)

	got := svc.Suggest(source, target)

	if len(got.FieldSuggestions) != 1 {
		t.Fatalf("Expected exactly 1 suggestion for the single target, got %d", len(got.FieldSuggestions))
	}
	if got.FieldSuggestions[0].SourceField != "customer_name" {
		t.Errorf("Expected the exact match to win the target, got %s", got.FieldSuggestions[0].SourceField)
	}
	if len(got.UnmappedSourceFields) != 1 || got.UnmappedSourceFields[0] != "customer_names" {
		t.Errorf("Expected customer_names unmapped, got %v", got.UnmappedSourceFields)
	}
}

func TestSuggest_BelowThresholdUnmapped(t *testing.T) {
	svc := NewMappingSuggestionService()

	source := schemaOf("leads", []string{"zip_code"}, nil)
	target := schemaOf("accounts", []string{"revenue"}, nil)

	got := svc.Suggest(source, target)

	if len(got.FieldSuggestions) != 0 {
		t.Errorf("Expected no suggestions, got %v", got.FieldSuggestions)
	}
	if got.ConfidenceScore != 0 {
		t.Errorf("Expected zero confidence with no suggestions, got %f", got.ConfidenceScore)
	}
}

func TestSuggest_Deterministic(t *testing.T) {
	svc := NewMappingSuggestionService()

	source := schemaOf("leads", []string{"email", "company_name", "phone_number"}, []string{"lead_score"})
	target := schemaOf("contacts", []string{"companyName", "email", "phoneNumber"}, []string{"leadScore"})

	first := svc.Suggest(source, target)
	for i := 0; i < 10; i++ {
		again := svc.Suggest(source, target)
		if len(again.FieldSuggestions) != len(first.FieldSuggestions) {
			t.Fatalf("Suggestion count changed between runs: %d vs %d",
				len(first.FieldSuggestions), len(again.FieldSuggestions))
		}
		for j := range first.FieldSuggestions {
			if again.FieldSuggestions[j] != first.FieldSuggestions[j] {
				t.Fatalf("Run %d differed at %d: %+v vs %+v",
					i, j, again.FieldSuggestions[j], first.FieldSuggestions[j])
			}
		}
	}
}

func TestNameSimilarity(t *testing.T) {
	cases := []struct {
		a, b    string
		atLeast float64
	}{
		{"company_name", "companyName", 0.9},
		{"close_date", "closeDate", 0.9},
		{"email", "email", 1.0},
	}
	for _, tc := range cases {
		if got := nameSimilarity(tc.a, tc.b); got < tc.atLeast {
			t.Errorf("nameSimilarity(%q, %q) = %f, expected >= %f", tc.a, tc.b, got, tc.atLeast)
		}
	}

	if got := nameSimilarity("zip_code", "revenue"); got >= similarityThreshold {
		t.Errorf("Expected unrelated names below threshold, got %f", got)
	}
}
