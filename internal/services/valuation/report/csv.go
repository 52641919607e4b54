package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/louisbranch/appraisal/internal/platform/i18n/catalog"
	"github.com/louisbranch/appraisal/internal/services/valuation/app"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/predict"
	"golang.org/x/text/message"
)

const generatedLayout = "2006-01-02 15:04:05"

// WriteCSV writes v as a sectioned CSV report.
func WriteCSV(w io.Writer, v app.Valuation) error {
	p := catalog.Printer(catalog.BaseLocale)
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Real Estate Valuation Report"},
		{"Generated", v.CreatedAt.UTC().Format(generatedLayout)},
		{"Valuation ID", v.ID},
		{},
		{"PROPERTY DETAILS"},
		{"Field", "Value"},
	}
	rows = append(rows, propertyRows(v)...)
	rows = append(rows,
		[]string{},
		[]string{"EXPERT SYSTEM RESULTS"},
		[]string{"Metric", "Value"},
		[]string{"Expert Price", currency(p, v.Expert.Price)},
		[]string{"Base Price", currency(p, v.Expert.BasePrice)},
		[]string{"Price per SQM", currency(p, v.Expert.PricePerSqm)},
		[]string{"Estimated Annual Rent", currency(p, v.Expert.EstimatedRent)},
		[]string{"ROI", percent(v.Expert.ROI)},
		[]string{"Risk Score", fmt.Sprintf("%.2f", v.Expert.Risk)},
		[]string{"1-Year Forecast", currency(p, v.Expert.FuturePrice1Y)},
		[]string{"3-Year Forecast", currency(p, v.Expert.FuturePrice3Y)},
		[]string{},
		[]string{"ML MODEL PREDICTIONS"},
		[]string{"Model", "Prediction", "Confidence", "Available", "Source"},
	)
	for _, q := range predict.Quantities {
		prediction, ok := v.Predictions[q]
		if !ok {
			prediction = predict.Unavailable(q, "not requested")
		}
		available := "No"
		if prediction.Available() {
			available = "Yes"
		}
		rows = append(rows, []string{
			titleCase(string(q)),
			predictionValue(p, prediction),
			percent(prediction.Confidence * 100),
			available,
			string(prediction.Source),
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"BLENDED RESULTS"},
		[]string{"Metric", "Value"},
		[]string{"Final Price", currency(p, v.FinalPrice)},
		[]string{"Blending Method", string(v.Blend.Method)},
		[]string{"Expert Weight", percent(v.Blend.ExpertWeight * 100)},
		[]string{"ML Weight", percent(v.Blend.MLWeight * 100)},
		[]string{"Reason", v.Blend.Reason},
		[]string{"Simulated", strconv.FormatBool(v.Simulated)},
		[]string{"Rules Version", v.RulesVersion},
	)
	if steps := v.Expert.Trace.Steps; len(steps) > 0 {
		rows = append(rows,
			[]string{},
			[]string{"ADJUSTMENT TRACE"},
			[]string{"Rule", "Factor", "Delta %", "Reason"},
		)
		for _, step := range steps {
			rows = append(rows, []string{
				step.Rule,
				fmt.Sprintf("%.4f", step.Factor),
				percent(step.DeltaPercent),
				step.Reason,
			})
		}
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}

func propertyRows(v app.Valuation) [][]string {
	set := v.Attributes
	rows := [][]string{
		{"Area", strconv.FormatFloat(set.Area, 'f', -1, 64)},
		{"Property Type", string(set.PropertyType)},
		{"Location", set.Location},
		{"Bedrooms", strconv.Itoa(set.Bedrooms)},
		{"Bathrooms", strconv.Itoa(set.Bathrooms)},
		{"Condition", string(set.Condition)},
		{"Age", strconv.Itoa(set.Age)},
		{"Floor", strconv.Itoa(set.Floor)},
		{"Parking", string(set.Parking)},
		{"Amenities Score", formatFloat(set.AmenitiesScore)},
		{"Demand Score", formatFloat(set.DemandScore)},
		{"Occupancy Rate", formatFloat(set.OccupancyRate)},
		{"Market Appreciation Score", formatFloat(set.MarketAppreciation)},
		{"Crime Index", formatFloat(set.CrimeIndex)},
		{"Market Volatility", formatFloat(set.MarketVolatility)},
		{"Economic Index", formatFloat(set.EconomicIndex)},
		{"Development Index", formatFloat(set.DevelopmentIndex)},
	}
	optional := []struct {
		label string
		value *float64
	}{
		{"Purchase Price", set.PurchasePrice},
		{"Current Price", set.CurrentPrice},
		{"Annual Rent", set.AnnualRent},
		{"Expenses", set.Expenses},
	}
	for _, field := range optional {
		if field.value != nil {
			rows = append(rows, []string{field.label, formatFloat(*field.value)})
		}
	}
	return rows
}

func predictionValue(p *message.Printer, prediction predict.Prediction) string {
	if !prediction.Available() {
		return "N/A"
	}
	value := *prediction.Value
	switch prediction.Quantity {
	case predict.QuantityROI, predict.QuantityRisk:
		return percent(value)
	case predict.QuantityRent:
		return fmt.Sprintf("%.2f", value)
	default:
		return currency(p, value)
	}
}

func currency(p *message.Printer, value float64) string {
	return p.Sprintf("$%.2f", value)
}

func percent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
