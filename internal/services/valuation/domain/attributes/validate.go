package attributes

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result is the outcome of validating raw attribute input.
type Result struct {
	Set      Set      `json:"attributes"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// OK reports whether validation produced no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate normalizes raw input into a Set, collecting errors that make the
// input unusable and warnings about values that were defaulted or clamped.
func Validate(raw map[string]any) Result {
	res := Result{Set: Defaults()}
	set := &res.Set

	if v, ok := present(raw, "area"); !ok {
		res.errorf("Area (sqm) is required")
	} else if area, ok := toFloat(v); !ok {
		res.errorf("Area must be a valid number")
	} else {
		switch {
		case area <= 0:
			res.errorf("Area must be greater than 0")
		case area < 5:
			res.warnf("Area is very small (< 5 sqm)")
		case area > 50000:
			res.warnf("Area is very large (> 50,000 sqm) - please verify")
		}
		set.Area = area
	}

	if v, ok := present(raw, "property_type"); !ok {
		res.errorf("Property type is required")
	} else {
		pt := PropertyType(strings.ToLower(strings.TrimSpace(fmt.Sprint(v))))
		if !contains(PropertyTypes, pt) {
			res.errorf("Property type must be one of: %s", joinValues(PropertyTypes))
		} else {
			set.PropertyType = pt
		}
	}

	if v, ok := present(raw, "location"); ok && strings.TrimSpace(fmt.Sprint(v)) != "" {
		set.Location = strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	} else {
		res.warnf("Location not specified - using '%s' baseline", DefaultLocation)
	}

	set.Bedrooms = validateRooms(&res, raw, "bedrooms", "Bedrooms", 20)
	set.Bathrooms = validateRooms(&res, raw, "bathrooms", "Bathrooms", 15)

	if v, ok := present(raw, "condition"); ok {
		c := Condition(strings.ToLower(strings.TrimSpace(fmt.Sprint(v))))
		if contains(Conditions, c) {
			set.Condition = c
		} else {
			res.warnf("Unknown condition '%v' - using '%s'", v, ConditionUsedGood)
		}
	}

	if v, ok := present(raw, "age"); ok {
		if age, ok := toFloat(v); !ok {
			res.warnf("Invalid age - using default")
		} else {
			set.Age = toCount(age)
			switch {
			case set.Age < 0:
				res.errorf("Age cannot be negative")
				set.Age = 0
			case set.Age > 200:
				res.warnf("Property age > 200 years - please verify")
			}
		}
	}

	if v, ok := present(raw, "floor"); ok {
		if floor, ok := toFloat(v); ok {
			set.Floor = toCount(floor)
			switch {
			case set.Floor < -5:
				res.warnf("Floor level below -5 is unusual")
			case set.Floor > 200:
				res.warnf("Floor level > 200 is unusual")
			}
		}
	}

	if v, ok := present(raw, "parking"); ok {
		p := Parking(strings.ToLower(strings.TrimSpace(fmt.Sprint(v))))
		if contains(ParkingTypes, p) {
			set.Parking = p
		} else {
			res.warnf("Unknown parking type '%v' - using '%s'", v, ParkingNone)
		}
	}

	set.AmenitiesScore = clampedField(raw, "amenities_score", set.AmenitiesScore, 0, 5, nil)
	set.DemandScore = clampedField(raw, "demand_score", set.DemandScore, 0, 5, nil)
	set.OccupancyRate = clampedField(raw, "occupancy_rate", set.OccupancyRate, 0, 1, func(v float64) float64 {
		if v > 1 {
			return v / 100
		}
		return v
	})
	set.MarketAppreciation = clampedField(raw, "market_appreciation_score", set.MarketAppreciation, -0.5, 0.5, nil)
	set.CrimeIndex = clampedField(raw, "crime_index", set.CrimeIndex, 0, 1, nil)
	set.MarketVolatility = clampedField(raw, "market_volatility", set.MarketVolatility, 0, 1, nil)
	set.EconomicIndex = clampedField(raw, "economic_index", set.EconomicIndex, 0, 1, nil)
	set.DevelopmentIndex = clampedField(raw, "development_index", set.DevelopmentIndex, 0, 1, nil)

	set.PurchasePrice = moneyField(&res, raw, "purchase_price", "purchase price", true)
	set.CurrentPrice = moneyField(&res, raw, "current_price", "current price", true)
	set.AnnualRent = moneyField(&res, raw, "annual_rent", "annual rent", false)
	set.Expenses = moneyField(&res, raw, "expenses", "expenses", false)

	if set.CurrentPrice != nil && set.PurchasePrice != nil && *set.CurrentPrice < *set.PurchasePrice {
		res.warnf("Current price is less than purchase price - potential loss")
	}
	return res
}

func validateRooms(res *Result, raw map[string]any, key, label string, high int) int {
	v, ok := present(raw, key)
	if !ok {
		if res.Set.PropertyType.IsResidential() {
			res.warnf("%s not specified for residential property", label)
		}
		return 0
	}
	n, ok := toFloat(v)
	if !ok {
		res.errorf("%s must be a valid integer", label)
		return 0
	}
	count := toCount(n)
	switch {
	case count < 0:
		res.errorf("%s cannot be negative", label)
		return 0
	case count > high:
		res.warnf("Unusually high number of %s (> %d)", strings.ToLower(label), high)
	}
	return count
}

func clampedField(raw map[string]any, key string, fallback, lo, hi float64, scale func(float64) float64) float64 {
	v, ok := present(raw, key)
	if !ok {
		return fallback
	}
	f, ok := toFloat(v)
	if !ok {
		return fallback
	}
	if scale != nil {
		f = scale(f)
	}
	return math.Min(math.Max(f, lo), hi)
}

func moneyField(res *Result, raw map[string]any, key, label string, strictlyPositive bool) *float64 {
	v, ok := present(raw, key)
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		res.warnf("Invalid %s - ignoring", label)
		return nil
	}
	switch {
	case strictlyPositive && f <= 0:
		res.warnf("%s should be positive", capitalize(label))
	case !strictlyPositive && f < 0:
		res.warnf("%s cannot be negative", capitalize(label))
	}
	return &f
}

// present returns the raw value for key when it is set and non-empty.
func present(raw map[string]any, key string) (any, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// toCount truncates f toward zero, saturating at the int32 range so that
// out-of-range inputs keep their sign.
func toCount(f float64) int {
	return int(math.Max(math.Min(math.Trunc(f), math.MaxInt32), math.MinInt32))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		f := float64(n)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
