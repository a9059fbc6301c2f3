package action

import (
	"errors"
	"strings"
)

// ErrUnknownAction is returned for kinds outside the quick-action catalog.
var ErrUnknownAction = errors.New("unknown quick action")

// Kind identifies one of the fixed quick actions offered next to the chat.
type Kind string

const (
	SpeciesReport       Kind = "species_report"
	TemperatureAnalysis Kind = "temperature_analysis"
	HabitatMap          Kind = "habitat_map"
)

// QuickAction pairs a button with the canned assistant message it produces.
type QuickAction struct {
	Kind    Kind   `json:"kind"`
	Label   string `json:"label"`
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

// Seed provides the quick actions shown by the copilot panel.
func Seed() []QuickAction {
	return []QuickAction{
		{
			Kind:    SpeciesReport,
			Label:   "Generate Species Report",
			Icon:    "📊",
			Message: "Generating comprehensive species distribution report based on latest eDNA analysis and fisheries data. Report includes population trends, habitat preferences, and seasonal patterns.",
		},
		{
			Kind:    TemperatureAnalysis,
			Label:   "Temperature Analysis",
			Icon:    "🌡️",
			Message: "Analyzing ocean temperature data from the past 90 days. I've identified a 0.3°C warming trend with seasonal variations. This may impact fish migration patterns in the next quarter.",
		},
		{
			Kind:    HabitatMap,
			Label:   "Create Habitat Map",
			Icon:    "🗺️",
			Message: "Creating habitat suitability map using latest environmental parameters. The map shows optimal zones for different species based on temperature, salinity, and depth preferences.",
		},
	}
}

// ParseKind accepts the wire form of a kind ("habitat_map") as well as the
// CamelCase names used by clients ("HabitatMap").
func ParseKind(raw string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("_", "", "-", "", " ", "").Replace(normalized)

	switch normalized {
	case "speciesreport":
		return SpeciesReport, nil
	case "temperatureanalysis":
		return TemperatureAnalysis, nil
	case "habitatmap":
		return HabitatMap, nil
	}
	return "", ErrUnknownAction
}
