package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/louisbranch/appraisal/internal/services/valuation/domain/attributes"
)

// Rule names recorded in the trace, in evaluation order.
const (
	RuleFloor        = "floor_adjustment"
	RuleParking      = "parking"
	RuleAmenities    = "amenities"
	RuleDemand       = "demand"
	RuleAppreciation = "appreciation"
	RuleCrime        = "crime_penalty"
	RuleVolatility   = "volatility"
	RuleDevelopment  = "development"
	RulePriceClamp   = "price_clamp"
)

// fallbackBaseRate applies when neither the location nor "general" has a
// configured rate.
const fallbackBaseRate = 3000

// Result is the expert estimate for one property.
type Result struct {
	Price         float64 `json:"expert_price"`
	BasePrice     float64 `json:"base_price"`
	EstimatedRent float64 `json:"estimated_rent"`
	// ROI is a percentage.
	ROI           float64 `json:"roi"`
	Risk          float64 `json:"risk_score"`
	FuturePrice1Y float64 `json:"future_price_1yr"`
	FuturePrice3Y float64 `json:"future_price_3yr"`
	PricePerSqm   float64 `json:"price_per_sqm"`
	Trace         Trace   `json:"trace"`
}

// Engine evaluates attribute sets against an immutable rule config. It is
// safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine builds an engine over a private copy of cfg.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.Clone()}
}

// Config returns a copy of the engine's rule config.
func (e *Engine) Config() Config {
	return e.cfg.Clone()
}

// UsingDefaults reports whether the engine runs on the built-in rules.
func (e *Engine) UsingDefaults() bool {
	return e.cfg.UsingDefaults
}

// Evaluate computes the expert estimate. It never fails; absent table entries
// fall back to neutral factors.
func (e *Engine) Evaluate(set attributes.Set) Result {
	cfg := e.cfg

	location := strings.ToLower(strings.TrimSpace(set.Location))
	baseRate, ok := cfg.LocationBaseRates[location]
	if !ok {
		baseRate, ok = cfg.LocationBaseRates[attributes.DefaultLocation]
		if !ok {
			baseRate = fallbackBaseRate
		}
	}
	typeFactor := factor(cfg.PropertyTypeFactors, string(set.PropertyType))
	ageFactor := math.Max(1-float64(set.Age)*cfg.AgeDepreciation.RatePerYear, cfg.AgeDepreciation.MinFactor)
	conditionFactor := factor(cfg.ConditionFactors, string(set.Condition))

	basePerSqm := baseRate * typeFactor * ageFactor * conditionFactor
	basePrice := basePerSqm * set.Area

	trace := Trace{BasePrice: basePrice}
	price := basePrice
	apply := func(rule string, f float64, reason string) {
		before := price
		price *= f
		trace.Add(rule, f, before, price, reason)
	}

	apply(RuleFloor, floorFactor(cfg.FloorAdjustments, set), fmt.Sprintf("Floor %d adjustment", set.Floor))
	apply(RuleParking, factor(cfg.ParkingFactors, string(set.Parking)), fmt.Sprintf("Parking type: %s", set.Parking))
	apply(RuleAmenities, cfg.Amenities.factor(set.AmenitiesScore), fmt.Sprintf("Amenities score: %g/5", set.AmenitiesScore))
	apply(RuleDemand, cfg.Demand.factor(set.DemandScore), fmt.Sprintf("Market demand score: %g/5", set.DemandScore))
	apply(RuleAppreciation, 1+set.MarketAppreciation, fmt.Sprintf("Market appreciation: %.1f%%", set.MarketAppreciation*100))
	apply(RuleCrime, 1-set.CrimeIndex*cfg.Crime.Weight, fmt.Sprintf("Crime index: %.0f%%", set.CrimeIndex*100))
	apply(RuleVolatility, cfg.Volatility.factor(set.MarketVolatility), fmt.Sprintf("Market volatility: %.0f%%", set.MarketVolatility*100))
	apply(RuleDevelopment, 1+set.DevelopmentIndex*cfg.Development.UpliftWeight, fmt.Sprintf("Development index: %.0f%%", set.DevelopmentIndex*100))

	clamp := cfg.PriceClamp
	final := math.Max(math.Min(price, basePrice*clamp.MaxMultiplier), basePrice*clamp.MinMultiplier)
	if final != price {
		trace.Add(RulePriceClamp, final/price, price, final,
			fmt.Sprintf("Price clamped to %.0f%%-%.0f%% of base", clamp.MinMultiplier*100, clamp.MaxMultiplier*100))
	}
	trace.FinalPrice = final

	rent := final * cfg.RentYields.forDemand(set.DemandScore)

	annualRent := rent
	if set.AnnualRent != nil {
		annualRent = *set.AnnualRent
	}
	expenses := annualRent * 0.1
	if set.Expenses != nil {
		expenses = *set.Expenses
	}
	purchase := final
	if set.PurchasePrice != nil {
		purchase = *set.PurchasePrice
	}
	roi := 0.0
	if purchase > 0 {
		roi = (annualRent*set.OccupancyRate - expenses) / purchase
	}

	growth := 1 + set.MarketAppreciation
	future1 := final * growth * (1 - set.MarketVolatility*0.3)
	future3 := final * math.Pow(growth, 3) * (1 - set.MarketVolatility*0.5)

	perSqm := 0.0
	if set.Area > 0 {
		perSqm = Round2(final / set.Area)
	}

	return Result{
		Price:         Round2(final),
		BasePrice:     Round2(basePrice),
		EstimatedRent: Round2(rent),
		ROI:           Round2(roi * 100),
		Risk:          Round2(RiskScore(set)),
		FuturePrice1Y: Round2(future1),
		FuturePrice3Y: Round2(future3),
		PricePerSqm:   perSqm,
		Trace:         trace,
	}
}

func factor(table map[string]float64, key string) float64 {
	if f, ok := table[strings.ToLower(key)]; ok {
		return f
	}
	return 1.0
}

func floorFactor(cfg FloorAdjustments, set attributes.Set) float64 {
	if set.PropertyType == attributes.Commercial && set.Floor == 0 {
		return 1 + cfg.GroundCommercialBonus
	}
	return 1 + math.Min(float64(set.Floor)*cfg.PerFloorBonus, cfg.MaxFloorBonus)
}

func (s ScoreSensitivity) factor(score float64) float64 {
	return 1 + (score-s.BaseScore)*s.PerPointAdjustment
}

func (v VolatilityRule) factor(volatility float64) float64 {
	if volatility <= v.Threshold {
		return 1.0
	}
	return 1 - math.Min(v.MaxPenalty, volatility*v.Weight)
}

// Demand tier boundaries for rent yield selection.
const (
	highDemandScore   = 4
	mediumDemandScore = 2
)

func (y RentYields) forDemand(demand float64) float64 {
	switch {
	case demand >= highDemandScore:
		return y.HighDemand
	case demand >= mediumDemandScore:
		return y.MediumDemand
	default:
		return y.LowDemand
	}
}
