// Package predict provides the statistical estimates that the valuation
// pipeline blends with the rule-based expert result.
//
// Two strategies implement Predictor: a Registry of fitted linear models
// loaded from disk, and a Simulation that perturbs an expert result. Every
// Prediction carries its Source so callers can tell fitted models from
// simulated output.
package predict

import (
	"context"

	"github.com/louisbranch/appraisal/internal/services/valuation/domain/attributes"
)

// Quantity names a predicted figure.
type Quantity string

const (
	QuantityPrice    Quantity = "price"
	QuantityRent     Quantity = "rent"
	QuantityROI      Quantity = "roi"
	QuantityRisk     Quantity = "risk"
	QuantityFuture1Y Quantity = "future_price_1yr"
	QuantityFuture3Y Quantity = "future_price_3yr"
)

// Quantities lists every predicted figure in reporting order.
var Quantities = []Quantity{
	QuantityPrice,
	QuantityRent,
	QuantityROI,
	QuantityRisk,
	QuantityFuture1Y,
	QuantityFuture3Y,
}

// Source identifies where a prediction came from.
type Source string

const (
	SourceModel       Source = "model"
	SourceSimulation  Source = "simulation"
	SourceUnavailable Source = "unavailable"
)

// Prediction is one estimate and the confidence attached to it. Value is nil
// when the quantity could not be predicted.
type Prediction struct {
	Quantity   Quantity `json:"quantity"`
	Value      *float64 `json:"value"`
	Confidence float64  `json:"confidence"`
	Source     Source   `json:"source"`
	Model      string   `json:"model,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Available reports whether the prediction carries a value.
func (p Prediction) Available() bool {
	return p.Value != nil
}

// Unavailable returns the prediction reported when no estimate exists.
func Unavailable(q Quantity, reason string) Prediction {
	return Prediction{Quantity: q, Source: SourceUnavailable, Error: reason}
}

// Predictor estimates a quantity for an attribute set. Implementations must
// be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, set attributes.Set, q Quantity) (Prediction, error)
}

// Results maps each quantity to its prediction.
type Results map[Quantity]Prediction

// AnyAvailable reports whether at least one prediction carries a value.
func (r Results) AnyAvailable() bool {
	for _, p := range r {
		if p.Available() {
			return true
		}
	}
	return false
}

// PredictAll asks p for every quantity.
func PredictAll(ctx context.Context, p Predictor, set attributes.Set) (Results, error) {
	out := make(Results, len(Quantities))
	for _, q := range Quantities {
		prediction, err := p.Predict(ctx, set, q)
		if err != nil {
			return nil, err
		}
		out[q] = prediction
	}
	return out, nil
}
