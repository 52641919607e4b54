package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/appraisal/internal/services/valuation/app"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// valuationURIPrefix addresses stored valuations as valuation://{id}.
const valuationURIPrefix = "valuation://"

// PropertyValuationInput represents the MCP tool input for appraising a property.
type PropertyValuationInput struct {
	Area         float64 `json:"area" jsonschema:"usable area in square meters (required, > 0)"`
	PropertyType string  `json:"property_type" jsonschema:"house, flat, plot or commercial (required)"`
	Location     string  `json:"location,omitempty" jsonschema:"location tier such as premium, good, average or general"`
	Bedrooms     *int    `json:"bedrooms,omitempty" jsonschema:"number of bedrooms"`
	Bathrooms    *int    `json:"bathrooms,omitempty" jsonschema:"number of bathrooms"`
	Condition    string  `json:"condition,omitempty" jsonschema:"new, like_new, used_good or needs_renovation"`
	Age          *int    `json:"age,omitempty" jsonschema:"building age in years"`
	Floor        *int    `json:"floor,omitempty" jsonschema:"floor number; 0 is ground level"`
	Parking      string  `json:"parking,omitempty" jsonschema:"none, street, covered or garage"`

	AmenitiesScore     *float64 `json:"amenities_score,omitempty" jsonschema:"amenities score from 0 to 5"`
	DemandScore        *float64 `json:"demand_score,omitempty" jsonschema:"market demand score from 0 to 5"`
	OccupancyRate      *float64 `json:"occupancy_rate,omitempty" jsonschema:"occupancy rate from 0 to 1; values above 1 are read as percentages"`
	MarketAppreciation *float64 `json:"market_appreciation_score,omitempty" jsonschema:"expected yearly appreciation from -0.5 to 0.5"`
	CrimeIndex         *float64 `json:"crime_index,omitempty" jsonschema:"crime index from 0 to 1"`
	MarketVolatility   *float64 `json:"market_volatility,omitempty" jsonschema:"market volatility from 0 to 1"`
	EconomicIndex      *float64 `json:"economic_index,omitempty" jsonschema:"economic index from 0 to 1"`
	DevelopmentIndex   *float64 `json:"development_index,omitempty" jsonschema:"planned development index from 0 to 1"`

	PurchasePrice *float64 `json:"purchase_price,omitempty" jsonschema:"original purchase price"`
	CurrentPrice  *float64 `json:"current_price,omitempty" jsonschema:"current asking price"`
	AnnualRent    *float64 `json:"annual_rent,omitempty" jsonschema:"actual annual rent"`
	Expenses      *float64 `json:"expenses,omitempty" jsonschema:"annual expenses"`
}

// attributes converts the input into the raw attribute map the service validates.
func (in PropertyValuationInput) attributes() (map[string]any, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// TraceStep is one rule adjustment in a valuation summary.
type TraceStep struct {
	Rule         string  `json:"rule" jsonschema:"rule name"`
	Factor       float64 `json:"factor" jsonschema:"multiplicative factor applied"`
	ValueBefore  float64 `json:"value_before" jsonschema:"price before the rule"`
	ValueAfter   float64 `json:"value_after" jsonschema:"price after the rule"`
	DeltaPercent float64 `json:"delta_percent" jsonschema:"relative change in percent"`
	Reason       string  `json:"reason" jsonschema:"why the rule applied"`
}

// ValuationSummary is the structured valuation returned by valuation tools.
type ValuationSummary struct {
	ID           string  `json:"id" jsonschema:"valuation identifier"`
	CreatedAt    string  `json:"created_at" jsonschema:"RFC 3339 creation time"`
	PropertyType string  `json:"property_type" jsonschema:"property type"`
	Location     string  `json:"location" jsonschema:"location tier"`
	Area         float64 `json:"area" jsonschema:"area in square meters"`

	ExpertPrice      float64  `json:"expert_price" jsonschema:"rule-based price"`
	BasePrice        float64  `json:"base_price" jsonschema:"price before adjustments"`
	PredictedPrice   *float64 `json:"predicted_price,omitempty" jsonschema:"model or simulated price, when available"`
	PredictionSource string   `json:"prediction_source" jsonschema:"model, simulation or unavailable"`
	FinalPrice       float64  `json:"final_price" jsonschema:"blended price"`
	BlendMethod      string   `json:"blend_method" jsonschema:"expert_only, expert_preferred or confidence_weighted"`
	BlendReason      string   `json:"blend_reason" jsonschema:"explanation of the blend decision"`
	ExpertWeight     float64  `json:"expert_weight" jsonschema:"weight of the expert price"`
	MLWeight         float64  `json:"ml_weight" jsonschema:"weight of the predicted price"`

	EstimatedRent float64 `json:"estimated_rent" jsonschema:"estimated annual rent"`
	ROI           float64 `json:"roi" jsonschema:"return on investment in percent"`
	RiskScore     float64 `json:"risk_score" jsonschema:"risk score from 0 to 1"`
	FuturePrice1Y float64 `json:"future_price_1yr" jsonschema:"forecast price in one year"`
	FuturePrice3Y float64 `json:"future_price_3yr" jsonschema:"forecast price in three years"`

	Simulated         bool        `json:"simulated" jsonschema:"predictions came from simulation"`
	UsingDefaultRules bool        `json:"using_default_rules" jsonschema:"built-in rule defaults were used"`
	RulesVersion      string      `json:"rules_version" jsonschema:"rule set version"`
	Warnings          []string    `json:"warnings,omitempty" jsonschema:"validation warnings"`
	Trace             []TraceStep `json:"trace" jsonschema:"ordered rule adjustments"`
}

func summarize(v app.Valuation) ValuationSummary {
	prediction := v.PricePrediction()
	summary := ValuationSummary{
		ID:                v.ID,
		PropertyType:      string(v.Attributes.PropertyType),
		Location:          v.Attributes.Location,
		Area:              v.Attributes.Area,
		ExpertPrice:       v.Expert.Price,
		BasePrice:         v.Expert.BasePrice,
		PredictedPrice:    prediction.Value,
		PredictionSource:  string(prediction.Source),
		FinalPrice:        v.FinalPrice,
		BlendMethod:       string(v.Blend.Method),
		BlendReason:       v.Blend.Reason,
		ExpertWeight:      v.Blend.ExpertWeight,
		MLWeight:          v.Blend.MLWeight,
		EstimatedRent:     v.Expert.EstimatedRent,
		ROI:               v.Expert.ROI,
		RiskScore:         v.Expert.Risk,
		FuturePrice1Y:     v.Expert.FuturePrice1Y,
		FuturePrice3Y:     v.Expert.FuturePrice3Y,
		Simulated:         v.Simulated,
		UsingDefaultRules: v.UsingDefaultRules,
		RulesVersion:      v.RulesVersion,
		Warnings:          v.Warnings,
		Trace:             make([]TraceStep, 0, len(v.Expert.Trace.Steps)),
	}
	if !v.CreatedAt.IsZero() {
		summary.CreatedAt = v.CreatedAt.UTC().Format(time.RFC3339)
	}
	for _, step := range v.Expert.Trace.Steps {
		summary.Trace = append(summary.Trace, TraceStep{
			Rule:         step.Rule,
			Factor:       step.Factor,
			ValueBefore:  step.ValueBefore,
			ValueAfter:   step.ValueAfter,
			DeltaPercent: step.DeltaPercent,
			Reason:       step.Reason,
		})
	}
	return summary
}

// PropertyValuationTool defines the MCP tool schema for appraising a property.
func PropertyValuationTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "property_valuation",
		Description: "Appraises a property from its attributes and returns the blended price with the rule adjustment trace",
	}
}

// PropertyValuationHandler executes a property appraisal.
func PropertyValuationHandler(client ValuationClient, getContext func() Context) mcp.ToolHandlerFor[PropertyValuationInput, ValuationSummary] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PropertyValuationInput) (*mcp.CallToolResult, ValuationSummary, error) {
		if client == nil {
			return nil, ValuationSummary{}, fmt.Errorf("valuation client is not configured")
		}
		attrs, err := input.attributes()
		if err != nil {
			return nil, ValuationSummary{}, fmt.Errorf("encode attributes: %w", err)
		}

		callCtx, cancel := callContext(ctx, getContext)
		defer cancel()

		valuation, err := client.Appraise(callCtx, attrs)
		if err != nil {
			return nil, ValuationSummary{}, newCallError("property valuation", err)
		}
		return &mcp.CallToolResult{}, summarize(valuation), nil
	}
}

// ValuationGetInput represents the MCP tool input for reading a stored valuation.
type ValuationGetInput struct {
	ID string `json:"id" jsonschema:"valuation identifier (required)"`
}

// ValuationGetTool defines the MCP tool schema for reading a stored valuation.
func ValuationGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "valuation_get",
		Description: "Returns a previously stored valuation by id",
	}
}

// ValuationGetHandler reads a stored valuation.
func ValuationGetHandler(client ValuationClient, getContext func() Context) mcp.ToolHandlerFor[ValuationGetInput, ValuationSummary] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ValuationGetInput) (*mcp.CallToolResult, ValuationSummary, error) {
		if client == nil {
			return nil, ValuationSummary{}, fmt.Errorf("valuation client is not configured")
		}
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return nil, ValuationSummary{}, fmt.Errorf("id is required")
		}

		callCtx, cancel := callContext(ctx, getContext)
		defer cancel()

		valuation, err := client.GetValuation(callCtx, id)
		if err != nil {
			return nil, ValuationSummary{}, newCallError("valuation get", err)
		}
		return &mcp.CallToolResult{}, summarize(valuation), nil
	}
}

// ValuationListInput represents the MCP tool input for listing stored valuations.
type ValuationListInput struct {
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum results per page (default 20, max 100)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter over property_type, location, blend_method, simulated, final_price, expert_price and area"`
	OrderBy   string `json:"order_by,omitempty" jsonschema:"created_at or final_price, optionally followed by asc or desc"`
}

// ValuationListEntry is one row of a valuation listing.
type ValuationListEntry struct {
	ID           string  `json:"id" jsonschema:"valuation identifier"`
	CreatedAt    string  `json:"created_at" jsonschema:"RFC 3339 creation time"`
	PropertyType string  `json:"property_type" jsonschema:"property type"`
	Location     string  `json:"location" jsonschema:"location tier"`
	Area         float64 `json:"area" jsonschema:"area in square meters"`
	FinalPrice   float64 `json:"final_price" jsonschema:"blended price"`
	BlendMethod  string  `json:"blend_method" jsonschema:"blend policy branch"`
	Simulated    bool    `json:"simulated" jsonschema:"predictions came from simulation"`
}

// ValuationListResult represents the MCP tool output for listing valuations.
type ValuationListResult struct {
	Valuations    []ValuationListEntry `json:"valuations" jsonschema:"matching valuations"`
	NextPageToken string               `json:"next_page_token,omitempty" jsonschema:"token for the next page, empty on the last page"`
}

// ValuationListTool defines the MCP tool schema for listing stored valuations.
func ValuationListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "valuation_list",
		Description: "Lists stored valuations with optional filtering, ordering and paging",
	}
}

// ValuationListHandler lists stored valuations.
func ValuationListHandler(client ValuationClient, getContext func() Context) mcp.ToolHandlerFor[ValuationListInput, ValuationListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ValuationListInput) (*mcp.CallToolResult, ValuationListResult, error) {
		if client == nil {
			return nil, ValuationListResult{}, fmt.Errorf("valuation client is not configured")
		}

		callCtx, cancel := callContext(ctx, getContext)
		defer cancel()

		page, err := client.ListValuations(callCtx, storage.ListOptions{
			PageSize:  input.PageSize,
			PageToken: input.PageToken,
			Filter:    input.Filter,
			OrderBy:   input.OrderBy,
		})
		if err != nil {
			return nil, ValuationListResult{}, newCallError("valuation list", err)
		}

		result := ValuationListResult{
			Valuations:    make([]ValuationListEntry, 0, len(page.Valuations)),
			NextPageToken: page.NextPageToken,
		}
		for _, v := range page.Valuations {
			summary := summarize(v)
			result.Valuations = append(result.Valuations, ValuationListEntry{
				ID:           summary.ID,
				CreatedAt:    summary.CreatedAt,
				PropertyType: summary.PropertyType,
				Location:     summary.Location,
				Area:         summary.Area,
				FinalPrice:   summary.FinalPrice,
				BlendMethod:  summary.BlendMethod,
				Simulated:    summary.Simulated,
			})
		}
		return &mcp.CallToolResult{}, result, nil
	}
}

// ValuationResourceTemplate defines the readable stored valuation resource.
func ValuationResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "valuation",
		Title:       "Valuation",
		Description: "Readable stored valuation. URI format: valuation://{valuation_id}",
		MIMEType:    "application/json",
		URITemplate: valuationURIPrefix + "{valuation_id}",
	}
}

// ValuationResourceHandler returns the full stored valuation as JSON.
func ValuationResourceHandler(client ValuationClient, getContext func() Context) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if client == nil {
			return nil, fmt.Errorf("valuation client is not configured")
		}
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("valuation ID is required; use URI format valuation://{valuation_id}")
		}
		uri := req.Params.URI
		id, err := parseValuationIDFromURI(uri)
		if err != nil {
			return nil, fmt.Errorf("parse valuation ID from URI: %w", err)
		}

		callCtx, cancel := callContext(ctx, getContext)
		defer cancel()

		valuation, err := client.GetValuation(callCtx, id)
		if err != nil {
			return nil, newCallError("valuation get", err)
		}
		return jsonResource(uri, valuation)
	}
}

// parseValuationIDFromURI extracts the ID from valuation://{valuation_id}.
func parseValuationIDFromURI(uri string) (string, error) {
	id, ok := strings.CutPrefix(uri, valuationURIPrefix)
	if !ok {
		return "", fmt.Errorf("URI must start with %q", valuationURIPrefix)
	}
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("URI must be %s{valuation_id}", valuationURIPrefix)
	}
	return id, nil
}
