package services

import (
	"sort"
	"strings"
	"unicode"

	"fluxcrm/metamorph/internal/models"
)

// similarityThreshold is the minimum score for a "similar" suggestion.
const similarityThreshold = 0.6

// MappingSuggestionService computes best-effort field mapping proposals
// between two composed schemas. It is authoring-time tooling only and is
// never consulted on the execution path.
type MappingSuggestionService struct{}

// NewMappingSuggestionService creates a new mapping suggestion service
func NewMappingSuggestionService() *MappingSuggestionService {
	return &MappingSuggestionService{}
}

// Suggest proposes a field-to-field mapping from source to target. Base and
// extension fields are matched in separate passes against their own
// namespace; the two never cross-match.
func (s *MappingSuggestionService) Suggest(source, target *models.ComposedSchema) *models.MappingSuggestions {
	out := &models.MappingSuggestions{
		SourceEntity: source.EntityTable,
		TargetEntity: target.EntityTable,
	}

	baseSuggestions, baseUnmappedSrc, baseUnmappedTgt := matchFields(source.BaseFields(), target.BaseFields())
	extSuggestions, extUnmappedSrc, extUnmappedTgt := matchFields(source.ExtensionFields(), target.ExtensionFields())

	out.FieldSuggestions = baseSuggestions
	out.ExtensionFieldSuggestions = extSuggestions
	out.UnmappedSourceFields = append(baseUnmappedSrc, extUnmappedSrc...)
	out.UnmappedTargetFields = append(baseUnmappedTgt, extUnmappedTgt...)

	total := 0.0
	count := 0
	for _, sug := range baseSuggestions {
		total += sug.Confidence
		count++
	}
	for _, sug := range extSuggestions {
		total += sug.Confidence
		count++
	}
	if count > 0 {
		out.ConfidenceScore = total / float64(count)
	}

	return out
}

func matchFields(source, target []models.SchemaField) ([]models.FieldMappingSuggestion, []string, []string) {
	suggestions := make([]models.FieldMappingSuggestion, 0, len(source))
	claimedTargets := make(map[int]bool)
	matchedSources := make(map[int]bool)

	// Exact pass: case-insensitive identical names.
	for si, sf := range source {
		for ti, tf := range target {
			if claimedTargets[ti] {
				continue
			}
			if strings.EqualFold(sf.Name, tf.Name) {
				suggestions = append(suggestions, models.FieldMappingSuggestion{
					SourceField: sf.Name,
					TargetField: tf.Name,
					Confidence:  1.0,
					MatchType:   models.MatchExact,
				})
				claimedTargets[ti] = true
				matchedSources[si] = true
				break
			}
		}
	}

	// Similar pass: each target claimed by at most one source, highest
	// score first, ties broken by source declaration order.
	type candidate struct {
		score  float64
		si, ti int
	}
	var candidates []candidate
	for si, sf := range source {
		if matchedSources[si] {
			continue
		}
		for ti, tf := range target {
			if claimedTargets[ti] {
				continue
			}
			score := nameSimilarity(sf.Name, tf.Name)
			if score >= similarityThreshold {
				candidates = append(candidates, candidate{score: score, si: si, ti: ti})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].si != candidates[j].si {
			return candidates[i].si < candidates[j].si
		}
		return candidates[i].ti < candidates[j].ti
	})
	for _, c := range candidates {
		if matchedSources[c.si] || claimedTargets[c.ti] {
			continue
		}
		suggestions = append(suggestions, models.FieldMappingSuggestion{
			SourceField: source[c.si].Name,
			TargetField: target[c.ti].Name,
			Confidence:  c.score,
			MatchType:   models.MatchSimilar,
		})
		matchedSources[c.si] = true
		claimedTargets[c.ti] = true
	}

	var unmappedSource, unmappedTarget []string
	for si, sf := range source {
		if !matchedSources[si] {
			unmappedSource = append(unmappedSource, sf.Name)
		}
	}
	for ti, tf := range target {
		if !claimedTargets[ti] {
			unmappedTarget = append(unmappedTarget, tf.Name)
		}
	}

	return suggestions, unmappedSource, unmappedTarget
}

// nameSimilarity scores two field names in [0,1] as the better of a token
// overlap (Dice) coefficient and a normalized edit-distance ratio.
func nameSimilarity(a, b string) float64 {
	dice := tokenOverlap(tokenize(a), tokenize(b))
	ratio := editRatio(normalizeName(a), normalizeName(b))
	if dice > ratio {
		return dice
	}
	return ratio
}

func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// tokenize splits a field name on underscores and camelCase boundaries.
func tokenize(name string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for _, r := range name {
		switch {
		case r == '_':
			flush()
		case unicode.IsUpper(r):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	shared := 0
	for _, t := range b {
		if set[t] {
			shared++
		}
	}
	return 2.0 * float64(shared) / float64(len(a)+len(b))
}

func editRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
