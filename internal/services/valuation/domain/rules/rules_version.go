package rules

import (
	"maps"
	"slices"
)

// Metadata describes the rule set an engine applies.
type Metadata struct {
	RulesVersion  string   `json:"rules_version"`
	Steps         []string `json:"steps"`
	BaseFormula   string   `json:"base_formula"`
	ClampRule     string   `json:"clamp_rule"`
	RentRule      string   `json:"rent_rule"`
	RiskRule      string   `json:"risk_rule"`
	ForecastRule  string   `json:"forecast_rule"`
	UsingDefaults bool     `json:"using_defaults"`
	Locations     []string `json:"locations"`
	PropertyTypes []string `json:"property_types"`
}

// RulesVersion is bumped whenever a rule formula or step order changes.
const RulesVersion = "1.0.0"

// Describe returns the static metadata for the engine's rule set.
func (e *Engine) Describe() Metadata {
	return Metadata{
		RulesVersion: RulesVersion,
		Steps: []string{
			RuleFloor,
			RuleParking,
			RuleAmenities,
			RuleDemand,
			RuleAppreciation,
			RuleCrime,
			RuleVolatility,
			RuleDevelopment,
			RulePriceClamp,
		},
		BaseFormula:   "location rate x type factor x age factor x condition factor x area",
		ClampRule:     "final price bounded to [base x min_multiplier, base x max_multiplier]; price_clamp step only when the bound applies",
		RentRule:      "final price x yield by demand tier (>= 4 high, >= 2 medium, else low)",
		RiskRule:      "crime, volatility, economic, condition, age and low demand contributions, clamped to [0, 1]",
		ForecastRule:  "1y: (1+a)(1-0.3v); 3y: (1+a)^3(1-0.5v)",
		UsingDefaults: e.cfg.UsingDefaults,
		Locations:     slices.Sorted(maps.Keys(e.cfg.LocationBaseRates)),
		PropertyTypes: slices.Sorted(maps.Keys(e.cfg.PropertyTypeFactors)),
	}
}
