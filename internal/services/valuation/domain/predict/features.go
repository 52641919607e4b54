package predict

import (
	"math"
	"strings"

	"github.com/louisbranch/appraisal/internal/services/valuation/domain/attributes"
)

// FeatureCount is the length of the model input vector.
const FeatureCount = 17

// FeatureNames lists the model inputs in vector order.
var FeatureNames = [FeatureCount]string{
	"area",
	"property_type",
	"bedrooms",
	"bathrooms",
	"condition",
	"age",
	"floor",
	"parking",
	"amenities_score",
	"demand_score",
	"occupancy_rate",
	"market_appreciation_score",
	"crime_index",
	"market_volatility",
	"economic_index",
	"development_index",
	"location",
}

type featureRange struct{ min, max float64 }

// expectedRanges bounds the inputs seen in training data.
var expectedRanges = [FeatureCount]featureRange{
	{5, 50000},
	{0, 3},
	{0, 10},
	{0, 10},
	{0, 3},
	{0, 200},
	{-5, 100},
	{0, 3},
	{0, 5},
	{0, 5},
	{0, 1},
	{-0.5, 0.5},
	{0, 1},
	{0, 1},
	{0, 1},
	{0, 1},
	{0, 4},
}

var (
	propertyTypeCodes = map[attributes.PropertyType]float64{
		attributes.House:      0,
		attributes.Flat:       1,
		attributes.Plot:       2,
		attributes.Commercial: 3,
	}
	conditionCodes = map[attributes.Condition]float64{
		attributes.ConditionNew:             3,
		attributes.ConditionLikeNew:         2,
		attributes.ConditionUsedGood:        1,
		attributes.ConditionNeedsRenovation: 0,
	}
	parkingCodes = map[attributes.Parking]float64{
		attributes.ParkingNone:    0,
		attributes.ParkingStreet:  1,
		attributes.ParkingCovered: 2,
		attributes.ParkingGarage:  3,
	}
	locationCodes = map[string]float64{
		"rural":        0,
		"suburban":     1,
		"general":      2,
		"urban_center": 3,
		"premium":      4,
	}
)

func code[K comparable](table map[K]float64, key K, fallback float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}

// Features encodes an attribute set as the model input vector.
func Features(set attributes.Set) [FeatureCount]float64 {
	return [FeatureCount]float64{
		set.Area,
		code(propertyTypeCodes, set.PropertyType, 1),
		float64(set.Bedrooms),
		float64(set.Bathrooms),
		code(conditionCodes, set.Condition, 1),
		float64(set.Age),
		float64(set.Floor),
		code(parkingCodes, set.Parking, 0),
		set.AmenitiesScore,
		set.DemandScore,
		set.OccupancyRate,
		set.MarketAppreciation,
		set.CrimeIndex,
		set.MarketVolatility,
		set.EconomicIndex,
		set.DevelopmentIndex,
		code(locationCodes, strings.ToLower(set.Location), 2),
	}
}

// Confidence scores how familiar the inputs are: the share of features inside
// their expected range, scaled into [0.1, 0.95].
func Confidence(features [FeatureCount]float64) float64 {
	inRange := 0
	for i, r := range expectedRanges {
		if features[i] >= r.min && features[i] <= r.max {
			inRange++
		}
	}
	c := float64(inRange)/FeatureCount*0.85 + 0.1
	return math.Min(math.Max(c, 0.1), 0.95)
}
