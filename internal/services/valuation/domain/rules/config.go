package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the adjustment tables read by the engine. Values are never
// mutated after the engine is built.
type Config struct {
	LocationBaseRates   map[string]float64 `json:"location_base_rates" yaml:"location_base_rates" validate:"dive,gt=0"`
	PropertyTypeFactors map[string]float64 `json:"property_type_factors" yaml:"property_type_factors" validate:"dive,gt=0"`
	ConditionFactors    map[string]float64 `json:"condition_factors" yaml:"condition_factors" validate:"dive,gt=0"`
	ParkingFactors      map[string]float64 `json:"parking_factors" yaml:"parking_factors" validate:"dive,gt=0"`

	AgeDepreciation  AgeDepreciation  `json:"age_depreciation" yaml:"age_depreciation"`
	FloorAdjustments FloorAdjustments `json:"floor_adjustments" yaml:"floor_adjustments"`
	Amenities        ScoreSensitivity `json:"amenities" yaml:"amenities"`
	Demand           ScoreSensitivity `json:"demand" yaml:"demand"`
	Crime            CrimePenalty     `json:"crime" yaml:"crime"`
	Volatility       VolatilityRule   `json:"volatility" yaml:"volatility"`
	Development      DevelopmentRule  `json:"development" yaml:"development"`
	PriceClamp       PriceClamp       `json:"price_clamp" yaml:"price_clamp"`
	RentYields       RentYields       `json:"rent_yields" yaml:"rent_yields"`

	// UsingDefaults is set when no rule document was applied.
	UsingDefaults bool `json:"-" yaml:"-"`
}

// AgeDepreciation configures the linear age factor and its floor.
type AgeDepreciation struct {
	RatePerYear float64 `json:"rate_per_year" yaml:"rate_per_year" validate:"gte=0"`
	MinFactor   float64 `json:"min_factor" yaml:"min_factor" validate:"gt=0,lte=1"`
}

// FloorAdjustments configures the floor bonus.
type FloorAdjustments struct {
	GroundCommercialBonus float64 `json:"ground_commercial_bonus" yaml:"ground_commercial_bonus"`
	PerFloorBonus         float64 `json:"per_floor_bonus" yaml:"per_floor_bonus"`
	MaxFloorBonus         float64 `json:"max_floor_bonus" yaml:"max_floor_bonus" validate:"gte=0"`
}

// ScoreSensitivity turns a 0-5 score into a factor around a baseline score.
type ScoreSensitivity struct {
	BaseScore          float64 `json:"base_score" yaml:"base_score" validate:"gte=0,lte=5"`
	PerPointAdjustment float64 `json:"per_point_adjustment" yaml:"per_point_adjustment" validate:"gte=0,lte=0.3"`
}

// CrimePenalty weights the crime index.
type CrimePenalty struct {
	Weight float64 `json:"weight" yaml:"weight" validate:"gte=0,lte=1"`
}

// VolatilityRule configures the capped volatility penalty.
type VolatilityRule struct {
	Threshold  float64 `json:"threshold" yaml:"threshold" validate:"gte=0,lte=1"`
	MaxPenalty float64 `json:"max_penalty" yaml:"max_penalty" validate:"gte=0,lt=1"`
	Weight     float64 `json:"weight" yaml:"weight" validate:"gte=0"`
}

// DevelopmentRule weights the development index uplift.
type DevelopmentRule struct {
	UpliftWeight float64 `json:"uplift_weight" yaml:"uplift_weight" validate:"gte=0"`
}

// PriceClamp bounds the final price relative to the base price.
type PriceClamp struct {
	MinMultiplier float64 `json:"min_multiplier" yaml:"min_multiplier" validate:"gt=0"`
	MaxMultiplier float64 `json:"max_multiplier" yaml:"max_multiplier" validate:"gtefield=MinMultiplier"`
}

// RentYields holds the annual yield per demand tier.
type RentYields struct {
	HighDemand   float64 `json:"high_demand" yaml:"high_demand" validate:"gte=0,lte=1"`
	MediumDemand float64 `json:"medium_demand" yaml:"medium_demand" validate:"gte=0,lte=1"`
	LowDemand    float64 `json:"low_demand" yaml:"low_demand" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the built-in rule tables. Each call returns fresh
// maps.
func DefaultConfig() Config {
	return Config{
		LocationBaseRates: map[string]float64{
			"premium":      5000,
			"urban_center": 4000,
			"suburban":     3000,
			"rural":        2000,
			"general":      3000,
		},
		PropertyTypeFactors: map[string]float64{
			"house":      1.05,
			"flat":       1.0,
			"plot":       0.6,
			"commercial": 1.25,
		},
		ConditionFactors: map[string]float64{
			"new":              1.15,
			"like_new":         1.05,
			"used_good":        1.0,
			"needs_renovation": 0.8,
		},
		ParkingFactors: map[string]float64{
			"none":    1.0,
			"street":  0.98,
			"covered": 1.03,
			"garage":  1.06,
		},
		AgeDepreciation:  AgeDepreciation{RatePerYear: 0.005, MinFactor: 0.6},
		FloorAdjustments: FloorAdjustments{GroundCommercialBonus: 0.05, PerFloorBonus: 0.01, MaxFloorBonus: 0.10},
		Amenities:        ScoreSensitivity{BaseScore: 3, PerPointAdjustment: 0.03},
		Demand:           ScoreSensitivity{BaseScore: 3, PerPointAdjustment: 0.04},
		Crime:            CrimePenalty{Weight: 0.6},
		Volatility:       VolatilityRule{Threshold: 0.2, MaxPenalty: 0.12, Weight: 0.4},
		Development:      DevelopmentRule{UpliftWeight: 0.06},
		PriceClamp:       PriceClamp{MinMultiplier: 0.4, MaxMultiplier: 1.7},
		RentYields:       RentYields{HighDemand: 0.08, MediumDemand: 0.05, LowDemand: 0.03},
		UsingDefaults:    true,
	}
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	out := c
	out.LocationBaseRates = maps.Clone(c.LocationBaseRates)
	out.PropertyTypeFactors = maps.Clone(c.PropertyTypeFactors)
	out.ConditionFactors = maps.Clone(c.ConditionFactors)
	out.ParkingFactors = maps.Clone(c.ParkingFactors)
	return out
}

// Format identifies a rule document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

var configValidate = validator.New()

// ParseConfig decodes a rule document over the defaults. Keys absent from the
// document keep their default value; table entries merge with the default
// tables. The merged result is validated before it is returned.
func ParseConfig(data []byte, format Format) (Config, error) {
	cfg := DefaultConfig()
	cfg.UsingDefaults = false
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode yaml rules: %w", err)
		}
		var extra yaml.Node
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return Config{}, errors.New("decode yaml rules: more than one document")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode json rules: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported rules format %q", format)
	}
	if err := configValidate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate rules: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads the rule document at path. An empty path yields the
// defaults. A missing, unreadable or invalid document is replaced by the
// defaults and logged; the returned config reports UsingDefaults.
func LoadConfig(path string) Config {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultConfig()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("rules: read %s: %v; using default rules", path, err)
		return DefaultConfig()
	}
	cfg, err := ParseConfig(data, FormatForPath(path))
	if err != nil {
		log.Printf("rules: %s: %v; using default rules", path, err)
		return DefaultConfig()
	}
	return cfg
}
