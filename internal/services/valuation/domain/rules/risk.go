package rules

import (
	"math"
	"strconv"

	"github.com/louisbranch/appraisal/internal/services/valuation/domain/attributes"
)

// Risk weights. These are fixed and not part of the rule config.
const (
	riskCrimeWeight      = 0.25
	riskVolatilityWeight = 0.25
	riskEconomicWeight   = 0.2
	riskAgePerYear       = 0.002
	riskAgeCap           = 0.15
	riskDemandBaseline   = 3
	riskDemandPerPoint   = 0.05
	riskConditionUnknown = 0.1
)

var conditionRisk = map[attributes.Condition]float64{
	attributes.ConditionNew:             0,
	attributes.ConditionLikeNew:         0.05,
	attributes.ConditionUsedGood:        0.1,
	attributes.ConditionNeedsRenovation: 0.25,
}

// RiskScore returns the weighted risk of the property in [0, 1]; higher is
// riskier.
func RiskScore(set attributes.Set) float64 {
	risk := 0.0
	risk += set.CrimeIndex * riskCrimeWeight
	risk += set.MarketVolatility * riskVolatilityWeight
	risk += (1 - set.EconomicIndex) * riskEconomicWeight
	if r, ok := conditionRisk[set.Condition]; ok {
		risk += r
	} else {
		risk += riskConditionUnknown
	}
	risk += math.Min(float64(set.Age)*riskAgePerYear, riskAgeCap)
	risk += math.Max(0, (riskDemandBaseline-set.DemandScore)*riskDemandPerPoint)
	return math.Min(math.Max(risk, 0), 1)
}

// Round2 rounds to two decimals using the exact binary value of v, so a
// value such as 287590.935 (stored just below the half) rounds down.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
