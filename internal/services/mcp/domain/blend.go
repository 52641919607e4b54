package domain

import (
	"context"
	"errors"
	"math"

	apperrors "github.com/louisbranch/appraisal/internal/platform/errors"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/blend"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BlendEstimatesInput represents the MCP tool input for blending two estimates.
type BlendEstimatesInput struct {
	Expert     float64  `json:"expert" jsonschema:"rule-based estimate (required)"`
	Predicted  *float64 `json:"predicted,omitempty" jsonschema:"predicted estimate; omit when no prediction exists"`
	Confidence float64  `json:"confidence,omitempty" jsonschema:"prediction confidence from 0 to 1"`
}

// BlendEstimatesResult represents the MCP tool output for blending two estimates.
type BlendEstimatesResult struct {
	Value        float64 `json:"value" jsonschema:"blended estimate"`
	Method       string  `json:"method" jsonschema:"expert_only, expert_preferred or confidence_weighted"`
	ExpertWeight float64 `json:"expert_weight" jsonschema:"weight of the expert estimate"`
	MLWeight     float64 `json:"ml_weight" jsonschema:"weight of the predicted estimate"`
	MLConfidence float64 `json:"ml_confidence" jsonschema:"confidence after clamping"`
	Reason       string  `json:"reason" jsonschema:"explanation of the decision"`
}

// BlendEstimatesTool defines the MCP tool schema for blending two estimates.
func BlendEstimatesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "blend_estimates",
		Description: "Blends an expert estimate with an optional predicted estimate by confidence, without calling the valuation service",
	}
}

// BlendEstimatesHandler evaluates the blending policy locally. Invalid
// estimates are reported in the session locale.
func BlendEstimatesHandler(getContext func() Context) mcp.ToolHandlerFor[BlendEstimatesInput, BlendEstimatesResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input BlendEstimatesInput) (*mcp.CallToolResult, BlendEstimatesResult, error) {
		if reason := invalidEstimate(input); reason != "" {
			err := apperrors.WithMetadata(apperrors.CodeInvalidEstimate, reason, map[string]string{"Reason": reason})
			return nil, BlendEstimatesResult{}, errors.New(apperrors.LocalizedMessage(err, getContext().Locale))
		}

		value, decision := blend.Blend(input.Expert, input.Predicted, input.Confidence)
		return &mcp.CallToolResult{}, BlendEstimatesResult{
			Value:        value,
			Method:       string(decision.Method),
			ExpertWeight: decision.ExpertWeight,
			MLWeight:     decision.MLWeight,
			MLConfidence: decision.MLConfidence,
			Reason:       decision.Reason,
		}, nil
	}
}

func invalidEstimate(input BlendEstimatesInput) string {
	finite := func(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }
	switch {
	case !finite(input.Expert):
		return "expert must be a finite number"
	case input.Predicted != nil && !finite(*input.Predicted):
		return "predicted must be a finite number"
	case !finite(input.Confidence):
		return "confidence must be a finite number"
	}
	return ""
}
