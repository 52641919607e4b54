package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/louisbranch/appraisal/internal/platform/i18n/catalog"
	"github.com/louisbranch/appraisal/internal/services/valuation/app"
	"golang.org/x/text/language"
)

// WriteSummary writes a short human-readable summary of v in the language of
// tag. Unknown languages fall back to the base locale.
func WriteSummary(w io.Writer, v app.Valuation, tag language.Tag) error {
	p := catalog.Printer(catalog.Default().Match(tag))

	var b strings.Builder
	line := func(key string, args ...any) {
		b.WriteString(p.Sprintf(key, args...))
		b.WriteByte('\n')
	}

	line("report.title")
	line("report.property", string(v.Attributes.PropertyType), v.Attributes.Area, v.Attributes.Location)
	if v.ID != "" {
		fmt.Fprintf(&b, "ID: %s\n", v.ID)
	}
	line("report.expert_price", v.Expert.Price)
	if price := v.PricePrediction(); price.Available() {
		line("report.ml_price", *price.Value, price.Confidence*100)
	} else {
		line("report.ml_unavailable")
	}
	line("report.final_price", v.FinalPrice)
	line("report.method", string(v.Blend.Method))
	line("report.reason", v.Blend.Reason)
	line("report.rent", v.Expert.EstimatedRent)
	line("report.roi", v.Expert.ROI)
	line("report.risk", v.Expert.Risk)
	line("report.forecast", v.Expert.FuturePrice1Y, v.Expert.FuturePrice3Y)

	if steps := v.Expert.Trace.Steps; len(steps) > 0 {
		line("report.trace")
		for _, step := range steps {
			b.WriteString(p.Sprintf("  %s x%.4f (%+.2f%%) %s\n", step.Rule, step.Factor, step.DeltaPercent, step.Reason))
		}
	}
	for _, warning := range v.Warnings {
		fmt.Fprintf(&b, "! %s\n", warning)
	}
	if v.Simulated {
		line("report.simulated")
	}
	if v.UsingDefaultRules {
		line("report.default_rules")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
