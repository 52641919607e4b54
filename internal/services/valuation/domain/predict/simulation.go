package predict

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"

	"github.com/louisbranch/appraisal/internal/services/valuation/domain/attributes"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/rules"
)

// Simulation produces demonstration predictions by perturbing an expert
// result. Its output is always labeled SourceSimulation.
//
// Draws are seeded from the property area and the quantity, so the same
// attributes always yield the same simulated predictions regardless of the
// order quantities are requested in.
type Simulation struct {
	Expert rules.Result
}

type simulationSpec struct {
	lo, hi      float64
	relative    bool
	confLo      float64
	confHi      float64
	clampUnit   bool
	nonNegative bool
	expertValue func(rules.Result) float64
}

var simulationSpecs = map[Quantity]simulationSpec{
	QuantityPrice: {lo: -0.15, hi: 0.15, relative: true, confLo: 0.65, confHi: 0.90,
		expertValue: func(r rules.Result) float64 { return r.Price }},
	QuantityRent: {lo: -0.12, hi: 0.12, relative: true, confLo: 0.60, confHi: 0.85,
		expertValue: func(r rules.Result) float64 { return r.EstimatedRent }},
	QuantityROI: {lo: -1.5, hi: 1.5, confLo: 0.55, confHi: 0.80, nonNegative: true,
		expertValue: func(r rules.Result) float64 { return r.ROI }},
	QuantityRisk: {lo: -0.1, hi: 0.1, confLo: 0.50, confHi: 0.75, clampUnit: true,
		expertValue: func(r rules.Result) float64 { return r.Risk }},
	QuantityFuture1Y: {lo: -0.08, hi: 0.12, relative: true, confLo: 0.45, confHi: 0.70,
		expertValue: func(r rules.Result) float64 { return r.FuturePrice1Y }},
	QuantityFuture3Y: {lo: -0.15, hi: 0.20, relative: true, confLo: 0.35, confHi: 0.60,
		expertValue: func(r rules.Result) float64 { return r.FuturePrice3Y }},
}

// Predict returns a simulated prediction for q.
func (s Simulation) Predict(ctx context.Context, set attributes.Set, q Quantity) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	spec, ok := simulationSpecs[q]
	if !ok {
		return Unavailable(q, "unknown quantity"), nil
	}
	rng := rand.New(rand.NewSource(simulationSeed(set.Area, q)))
	variation := spec.lo + (spec.hi-spec.lo)*rng.Float64()
	confidence := spec.confLo + (spec.confHi-spec.confLo)*rng.Float64()

	expert := spec.expertValue(s.Expert)
	var value float64
	if spec.relative {
		value = expert * (1 + variation)
	} else {
		value = expert + variation
	}
	if spec.nonNegative {
		value = math.Max(0, value)
	}
	if spec.clampUnit {
		value = math.Min(math.Max(value, 0), 1)
	}
	value = rules.Round2(value)
	return Prediction{
		Quantity:   q,
		Value:      &value,
		Confidence: confidence,
		Source:     SourceSimulation,
		Model:      "simulation",
	}, nil
}

func simulationSeed(area float64, q Quantity) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.FormatFloat(area, 'g', -1, 64)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(q))
	return int64(h.Sum64() & math.MaxInt64)
}
