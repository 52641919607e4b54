package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRules(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	return path
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg := LoadConfig("")
	if !cfg.UsingDefaults {
		t.Fatal("expected defaults flag")
	}
	if cfg.LocationBaseRates["premium"] != 5000 {
		t.Fatalf("premium rate = %v, want 5000", cfg.LocationBaseRates["premium"])
	}
}

func TestLoadConfigMergesJSON(t *testing.T) {
	path := writeRules(t, "rules.json", `{
		"location_base_rates": {"coastal": 4500, "general": 3200},
		"crime": {"weight": 0.5},
		"price_clamp": {"max_multiplier": 2.0}
	}`)
	cfg := LoadConfig(path)
	if cfg.UsingDefaults {
		t.Fatal("expected document to apply")
	}
	if cfg.LocationBaseRates["coastal"] != 4500 || cfg.LocationBaseRates["general"] != 3200 {
		t.Fatalf("rates = %v", cfg.LocationBaseRates)
	}
	if cfg.LocationBaseRates["premium"] != 5000 {
		t.Fatalf("premium rate = %v, want default 5000", cfg.LocationBaseRates["premium"])
	}
	if cfg.Crime.Weight != 0.5 {
		t.Fatalf("crime weight = %v, want 0.5", cfg.Crime.Weight)
	}
	if cfg.PriceClamp.MaxMultiplier != 2 || cfg.PriceClamp.MinMultiplier != 0.4 {
		t.Fatalf("clamp = %+v, want max 2 min 0.4", cfg.PriceClamp)
	}
	if cfg.Volatility != DefaultConfig().Volatility {
		t.Fatalf("volatility = %+v, want defaults", cfg.Volatility)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeRules(t, "rules.yaml", `
amenities:
  per_point_adjustment: 0.05
rent_yields:
  low_demand: 0.02
parking_factors:
  valet: 1.1
`)
	cfg := LoadConfig(path)
	if cfg.UsingDefaults {
		t.Fatal("expected document to apply")
	}
	if cfg.Amenities.PerPointAdjustment != 0.05 || cfg.Amenities.BaseScore != 3 {
		t.Fatalf("amenities = %+v", cfg.Amenities)
	}
	if cfg.RentYields.LowDemand != 0.02 || cfg.RentYields.HighDemand != 0.08 {
		t.Fatalf("rent yields = %+v", cfg.RentYields)
	}
	if cfg.ParkingFactors["valet"] != 1.1 || cfg.ParkingFactors["garage"] != 1.06 {
		t.Fatalf("parking = %v", cfg.ParkingFactors)
	}
}

func TestLoadConfigFallsBackWholesale(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "malformed json", file: "rules.json", content: `{"crime": {"weight": 0.5},`},
		{name: "trailing data", file: "rules.json", content: `{"crime": {"weight": 0.9}} }}} not json`},
		{name: "wrong type", file: "rules.json", content: `{"crime": {"weight": "high"}}`},
		{name: "malformed yaml", file: "rules.yml", content: "crime: [weight"},
		{name: "second yaml document", file: "rules.yaml", content: "crime:\n  weight: 0.9\n---\ncrime: {weight: 0.1}\n"},
		{name: "negative rate", file: "rules.json", content: `{"crime": {"weight": 0.5}, "location_base_rates": {"rural": -1}}`},
		{name: "inverted clamp", file: "rules.json", content: `{"price_clamp": {"min_multiplier": 2, "max_multiplier": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig(writeRules(t, tt.file, tt.content))
			if !cfg.UsingDefaults {
				t.Fatal("expected defaults flag")
			}
			if cfg.Crime.Weight != 0.6 {
				t.Fatalf("crime weight = %v, want default 0.6", cfg.Crime.Weight)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if !cfg.UsingDefaults {
		t.Fatal("expected defaults flag")
	}
}

func TestParseConfigRejectsUnknownFormat(t *testing.T) {
	if _, err := ParseConfig([]byte("{}"), Format("toml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestEngineUsingDefaults(t *testing.T) {
	if !NewEngine(DefaultConfig()).UsingDefaults() {
		t.Fatal("expected defaults flag")
	}
	cfg, err := ParseConfig([]byte(`{}`), FormatJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if NewEngine(cfg).UsingDefaults() {
		t.Fatal("expected document flag")
	}
}

func TestTraceAddDelta(t *testing.T) {
	var trace Trace
	trace.Add("a", 1.1, 100, 110, "up")
	trace.Add("b", 2, 0, 0, "zero base")
	trace.Add("c", 2, -5, -10, "negative base")
	if got := trace.Steps[0].DeltaPercent; got < 9.999999 || got > 10.000001 {
		t.Fatalf("delta = %v, want 10", got)
	}
	for _, step := range trace.Steps[1:] {
		if step.DeltaPercent != 0 {
			t.Fatalf("delta for %s = %v, want 0", step.Rule, step.DeltaPercent)
		}
	}
	if trace.Steps[0].Rule != "a" || trace.Steps[2].Rule != "c" {
		t.Fatalf("steps out of order: %+v", trace.Steps)
	}
}
