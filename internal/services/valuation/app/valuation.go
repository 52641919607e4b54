package app

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/appraisal/internal/platform/errors"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/attributes"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/blend"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/predict"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/rules"
)

// Valuation is the complete outcome of appraising one property.
type Valuation struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Attributes attributes.Set `json:"attributes"`
	Warnings   []string       `json:"warnings,omitempty"`

	Expert      rules.Result    `json:"expert"`
	Predictions predict.Results `json:"predictions"`
	FinalPrice  float64         `json:"final_price"`
	Blend       blend.Decision  `json:"blend"`

	// Simulated is set when the predictions were produced by the simulation
	// strategy rather than fitted models.
	Simulated         bool   `json:"simulated"`
	UsingDefaultRules bool   `json:"using_default_rules"`
	RulesVersion      string `json:"rules_version"`
}

// PricePrediction returns the price prediction, if one was requested.
func (v Valuation) PricePrediction() predict.Prediction {
	if p, ok := v.Predictions[predict.QuantityPrice]; ok {
		return p
	}
	return predict.Unavailable(predict.QuantityPrice, "not requested")
}

// ValidationError reports attribute input that could not be appraised.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid attributes: %s", strings.Join(e.Errors, "; "))
}

// Unwrap exposes the transport-facing domain error.
func (e *ValidationError) Unwrap() error {
	return apperrors.InvalidAttributes(e.Errors)
}
