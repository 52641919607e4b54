package domain

import (
	"context"
	"fmt"
	"time"

	valuationgrpc "github.com/louisbranch/appraisal/internal/services/valuation/api/grpc/valuation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// rulesResourceURI addresses the active rule configuration.
const rulesResourceURI = "rules://current"

// ValuationRulesInput represents the MCP tool input for rule metadata.
type ValuationRulesInput struct{}

// ModelStatus describes one predictive model slot.
type ModelStatus struct {
	Quantity  string `json:"quantity" jsonschema:"predicted quantity"`
	Available bool   `json:"available" jsonschema:"model is loaded"`
	Version   string `json:"version,omitempty" jsonschema:"model version"`
	Hash      string `json:"hash,omitempty" jsonschema:"model file hash prefix"`
	LoadedAt  string `json:"loaded_at,omitempty" jsonschema:"RFC 3339 load time"`
	Error     string `json:"error,omitempty" jsonschema:"why the model is unavailable"`
}

// ValuationRulesResult represents the MCP tool output for rule metadata.
type ValuationRulesResult struct {
	RulesVersion  string        `json:"rules_version" jsonschema:"rule set version"`
	UsingDefaults bool          `json:"using_defaults" jsonschema:"built-in rule defaults are active"`
	Steps         []string      `json:"steps" jsonschema:"adjustment rules in evaluation order"`
	BaseFormula   string        `json:"base_formula" jsonschema:"base price formula"`
	ClampRule     string        `json:"clamp_rule" jsonschema:"price clamp rule"`
	Locations     []string      `json:"locations" jsonschema:"configured location tiers"`
	PropertyTypes []string      `json:"property_types" jsonschema:"configured property types"`
	Simulate      bool          `json:"simulate" jsonschema:"simulated predictions are enabled"`
	Models        []ModelStatus `json:"models,omitempty" jsonschema:"predictive model slots"`
}

// ValuationRulesTool defines the MCP tool schema for rule metadata.
func ValuationRulesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "valuation_rules",
		Description: "Returns the valuation rule set version, whether defaults are active and the predictive model status",
	}
}

// ValuationRulesHandler describes the service's rule set.
func ValuationRulesHandler(client ValuationClient, getContext func() Context) mcp.ToolHandlerFor[ValuationRulesInput, ValuationRulesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ValuationRulesInput) (*mcp.CallToolResult, ValuationRulesResult, error) {
		if client == nil {
			return nil, ValuationRulesResult{}, fmt.Errorf("valuation client is not configured")
		}

		callCtx, cancel := callContext(ctx, getContext)
		defer cancel()

		response, err := client.DescribeRules(callCtx)
		if err != nil {
			return nil, ValuationRulesResult{}, newCallError("valuation rules", err)
		}
		return &mcp.CallToolResult{}, rulesResult(response), nil
	}
}

func rulesResult(response valuationgrpc.RulesResponse) ValuationRulesResult {
	meta := response.Metadata
	result := ValuationRulesResult{
		RulesVersion:  response.RulesVersion,
		UsingDefaults: response.UsingDefaults,
		Steps:         meta.Steps,
		BaseFormula:   meta.BaseFormula,
		ClampRule:     meta.ClampRule,
		Locations:     meta.Locations,
		PropertyTypes: meta.PropertyTypes,
		Simulate:      response.Simulate,
	}
	for _, status := range response.Models {
		model := ModelStatus{
			Quantity:  string(status.Quantity),
			Available: status.Available,
			Version:   status.Version,
			Hash:      status.Hash,
			Error:     status.Error,
		}
		if !status.LoadedAt.IsZero() {
			model.LoadedAt = status.LoadedAt.UTC().Format(time.RFC3339)
		}
		result.Models = append(result.Models, model)
	}
	return result
}

// RulesResource defines the readable active rule configuration.
func RulesResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "rules_current",
		Title:       "Valuation Rules",
		Description: "Readable active rule configuration and metadata of the valuation service",
		MIMEType:    "application/json",
		URI:         rulesResourceURI,
	}
}

// RulesResourceHandler returns the full DescribeRules payload as JSON.
func RulesResourceHandler(client ValuationClient, getContext func() Context) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if client == nil {
			return nil, fmt.Errorf("valuation client is not configured")
		}
		uri := rulesResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != rulesResourceURI {
			return nil, fmt.Errorf("invalid URI: expected %s, got %q", rulesResourceURI, uri)
		}

		callCtx, cancel := callContext(ctx, getContext)
		defer cancel()

		response, err := client.DescribeRules(callCtx)
		if err != nil {
			return nil, newCallError("valuation rules", err)
		}
		return jsonResource(uri, response)
	}
}
