// Package blend reconciles an expert estimate with an optional predicted
// estimate according to the predictor's confidence.
package blend

import (
	"fmt"
	"math"
)

// Method names the policy branch that produced a blended value.
type Method string

const (
	// ExpertOnly ignores the prediction: it is absent or its confidence is
	// too low to carry weight.
	ExpertOnly Method = "expert_only"
	// ExpertPreferred keeps the expert value because a low-confidence
	// prediction disagrees with it by too much.
	ExpertPreferred Method = "expert_preferred"
	// ConfidenceWeighted averages both values by confidence.
	ConfidenceWeighted Method = "confidence_weighted"
)

const (
	// MaxConfidence caps the weight a prediction can ever receive.
	MaxConfidence = 0.95
	// MinConfidence is the confidence at or below which predictions are ignored.
	MinConfidence = 0.05
	// DisagreementThreshold is the relative gap above which a low-confidence
	// prediction is discarded.
	DisagreementThreshold = 0.30
	// OverrideConfidence is the confidence below which the disagreement
	// override applies.
	OverrideConfidence = 0.6
)

// Decision records how a blended value was reached.
type Decision struct {
	Method       Method   `json:"method"`
	ExpertWeight float64  `json:"expert_weight"`
	MLWeight     float64  `json:"ml_weight"`
	MLConfidence float64  `json:"ml_confidence"`
	Reason       string   `json:"reason"`
	ExpertValue  float64  `json:"expert_value"`
	MLValue      *float64 `json:"ml_value"`
}

// Blend reconciles expert with predicted. A nil predicted value always yields
// the expert value.
func Blend(expert float64, predicted *float64, confidence float64) (float64, Decision) {
	if predicted == nil {
		return expert, Decision{
			Method:       ExpertOnly,
			ExpertWeight: 1,
			MLWeight:     0,
			MLConfidence: 0,
			Reason:       "ML prediction unavailable",
			ExpertValue:  expert,
		}
	}
	ml := *predicted
	c := clampConfidence(confidence)

	if c <= MinConfidence {
		return expert, Decision{
			Method:       ExpertOnly,
			ExpertWeight: 1,
			MLWeight:     0,
			MLConfidence: c,
			Reason:       "ML confidence too low",
			ExpertValue:  expert,
			MLValue:      &ml,
		}
	}

	expertWeight := 1 - c
	blended := c*ml + expertWeight*expert

	if expert > 0 {
		disagreement := math.Abs(ml-expert) / expert
		if disagreement > DisagreementThreshold && c < OverrideConfidence {
			return expert, Decision{
				Method:       ExpertPreferred,
				ExpertWeight: 1,
				MLWeight:     0,
				MLConfidence: c,
				Reason:       fmt.Sprintf("Large disagreement (%.0f%%) with low ML confidence", disagreement*100),
				ExpertValue:  expert,
				MLValue:      &ml,
			}
		}
	}

	return blended, Decision{
		Method:       ConfidenceWeighted,
		ExpertWeight: expertWeight,
		MLWeight:     c,
		MLConfidence: c,
		Reason:       fmt.Sprintf("Blended with %.0f%% ML weight", c*100),
		ExpertValue:  expert,
		MLValue:      &ml,
	}
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Min(math.Max(c, 0), MaxConfidence)
}
