package topic

import (
	"strings"

	"github.com/dominators/sagara/backend/internal/model/action"
)

// Decision is the outcome of scoring a user query against the quick-action topics.
type Decision struct {
	Action action.Kind
	Score  int
}

// Matched reports whether any topic scored.
func (d Decision) Matched() bool {
	return d.Score > 0 && d.Action != ""
}

var keywordBuckets = map[action.Kind][]string{
	action.SpeciesReport: {
		"species", "fish", "fisheries", "edna", "population", "biodiversity", "tuna", "sardine",
		"mackerel", "anchovy", "pomfret", "kingfish", "biomass", "catch",
	},
	action.TemperatureAnalysis: {
		"temperature", "warming", "thermal", "heat", "sst", "climate", "cooling", "°c",
		"degrees", "salinity", "ph", "oxygen",
	},
	action.HabitatMap: {
		"habitat", "map", "zone", "location", "coast", "depth", "region", "reef",
		"distribution", "where", "spatial",
	},
}

// tie-break order when two topics score equally
var priority = []action.Kind{action.TemperatureAnalysis, action.SpeciesReport, action.HabitatMap}

// Analyze returns the quick action that best matches the query.
func Analyze(query string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(query))
	if normalized == "" {
		return Decision{}
	}

	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '?' || r == '!' || r == ';' || r == ':'
	})
	tokens := make(map[string]struct{}, len(words))
	for _, w := range words {
		tokens[w] = struct{}{}
	}

	scores := make(map[action.Kind]int)
	for kind, keywords := range keywordBuckets {
		for _, word := range keywords {
			if _, ok := tokens[word]; ok {
				scores[kind] += 3
				continue
			}
			// multi-character stems still count, with less weight
			if len(word) > 3 && strings.Contains(normalized, word) {
				scores[kind]++
			}
		}
	}

	best := Decision{}
	for _, kind := range priority {
		if s := scores[kind]; s > best.Score {
			best = Decision{Action: kind, Score: s}
		}
	}
	return best
}
