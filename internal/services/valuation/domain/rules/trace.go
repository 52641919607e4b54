package rules

// AdjustmentStep records one multiplicative rule application.
type AdjustmentStep struct {
	Rule         string  `json:"rule"`
	Factor       float64 `json:"factor"`
	ValueBefore  float64 `json:"value_before"`
	ValueAfter   float64 `json:"value_after"`
	DeltaPercent float64 `json:"delta_percent"`
	Reason       string  `json:"reason"`
}

// Trace is the ordered audit log of one evaluation.
type Trace struct {
	BasePrice  float64          `json:"base_price"`
	FinalPrice float64          `json:"final_price"`
	Steps      []AdjustmentStep `json:"steps"`
}

// Add appends a step. The delta is zero when before is not positive.
func (t *Trace) Add(rule string, factor, before, after float64, reason string) {
	delta := 0.0
	if before > 0 {
		delta = (after - before) / before * 100
	}
	t.Steps = append(t.Steps, AdjustmentStep{
		Rule:         rule,
		Factor:       factor,
		ValueBefore:  before,
		ValueAfter:   after,
		DeltaPercent: delta,
		Reason:       reason,
	})
}

// Replay multiplies the base price by every step factor in order.
func (t Trace) Replay() float64 {
	value := t.BasePrice
	for _, step := range t.Steps {
		value *= step.Factor
	}
	return value
}

// Step returns the first step recorded for rule.
func (t Trace) Step(rule string) (AdjustmentStep, bool) {
	for _, step := range t.Steps {
		if step.Rule == rule {
			return step, true
		}
	}
	return AdjustmentStep{}, false
}
