package dashboard

import "testing"

func TestNewOverviewFormatsQuality(t *testing.T) {
	overview := NewOverview(98.7)

	var quality string
	for _, stat := range overview.Stats {
		if stat.Label == "Data Quality" {
			quality = stat.Value
		}
	}
	if quality != "98.7%" {
		t.Fatalf("expected 98.7%%, got %q", quality)
	}
	if len(overview.Status) != 3 {
		t.Fatalf("expected 3 status lines, got %d", len(overview.Status))
	}
}

func TestFormatQualityRoundsToOneDecimal(t *testing.T) {
	if got := FormatQuality(95); got != "95.0%" {
		t.Fatalf("unexpected format: %q", got)
	}
}
