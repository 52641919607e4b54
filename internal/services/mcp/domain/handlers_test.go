package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/louisbranch/appraisal/internal/platform/requestctx"
	valuationgrpc "github.com/louisbranch/appraisal/internal/services/valuation/api/grpc/valuation"
	"github.com/louisbranch/appraisal/internal/services/valuation/app"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/attributes"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/blend"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/predict"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/rules"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

type fakeValuationClient struct {
	appraiseAttrs  map[string]any
	appraiseLocale string
	appraiseResp   app.Valuation
	appraiseErr    error

	getID   string
	getResp app.Valuation
	getErr  error

	listOpts storage.ListOptions
	listResp app.Page
	listErr  error

	rulesResp valuationgrpc.RulesResponse
	rulesErr  error
}

func (f *fakeValuationClient) Appraise(ctx context.Context, attrs map[string]any, _ ...grpc.CallOption) (app.Valuation, error) {
	f.appraiseAttrs = attrs
	f.appraiseLocale = requestctx.LocaleFromContext(ctx)
	return f.appraiseResp, f.appraiseErr
}

func (f *fakeValuationClient) GetValuation(_ context.Context, id string, _ ...grpc.CallOption) (app.Valuation, error) {
	f.getID = id
	return f.getResp, f.getErr
}

func (f *fakeValuationClient) ListValuations(_ context.Context, opts storage.ListOptions, _ ...grpc.CallOption) (app.Page, error) {
	f.listOpts = opts
	return f.listResp, f.listErr
}

func (f *fakeValuationClient) DescribeRules(_ context.Context, _ ...grpc.CallOption) (valuationgrpc.RulesResponse, error) {
	return f.rulesResp, f.rulesErr
}

func testValuation(id string) app.Valuation {
	predicted := 330000.0
	set := attributes.Defaults()
	set.Area = 100
	set.PropertyType = attributes.House
	set.Location = "premium"

	var trace rules.Trace
	trace.BasePrice = 300000
	trace.Add(rules.RuleParking, 1.05, 300000, 315000, "garage")
	trace.FinalPrice = 315000

	return app.Valuation{
		ID:         id,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Attributes: set,
		Warnings:   []string{"bedrooms missing"},
		Expert: rules.Result{
			Price:         315000,
			BasePrice:     300000,
			EstimatedRent: 15750,
			ROI:           4.5,
			Risk:          0.2,
			FuturePrice1Y: 320000,
			FuturePrice3Y: 340000,
			Trace:         trace,
		},
		Predictions: predict.Results{
			predict.QuantityPrice: {Quantity: predict.QuantityPrice, Value: &predicted, Confidence: 0.8, Source: predict.SourceModel},
		},
		FinalPrice: 327000,
		Blend: blend.Decision{
			Method:       blend.ConfidenceWeighted,
			ExpertWeight: 0.2,
			MLWeight:     0.8,
			MLConfidence: 0.8,
			Reason:       "Blended with 80% ML weight",
		},
		RulesVersion: rules.RulesVersion,
	}
}

func fixedContext(locale string) func() Context {
	return func() Context { return Context{Locale: locale} }
}

func TestPropertyValuationHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		bedrooms := 3
		client := &fakeValuationClient{appraiseResp: testValuation("val-1")}
		handler := PropertyValuationHandler(client, fixedContext("pt-BR"))
		toolResult, result, err := handler(context.Background(), nil, PropertyValuationInput{
			Area:         100,
			PropertyType: "house",
			Location:     "Premium",
			Bedrooms:     &bedrooms,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if toolResult == nil {
			t.Fatal("expected non-nil tool result")
		}
		if result.ID != "val-1" || result.FinalPrice != 327000 {
			t.Fatalf("result = %+v, want val-1 at 327000", result)
		}
		if result.PredictedPrice == nil || *result.PredictedPrice != 330000 || result.PredictionSource != "model" {
			t.Fatalf("prediction = %v/%q, want 330000 from model", result.PredictedPrice, result.PredictionSource)
		}
		if result.BlendMethod != "confidence_weighted" || result.MLWeight != 0.8 {
			t.Fatalf("blend = %q/%v, want confidence_weighted/0.8", result.BlendMethod, result.MLWeight)
		}
		if len(result.Trace) != 1 || result.Trace[0].Rule != rules.RuleParking || result.Trace[0].DeltaPercent != 5 {
			t.Fatalf("trace = %+v, want one parking step at 5%%", result.Trace)
		}
		if result.CreatedAt != "2026-03-01T12:00:00Z" {
			t.Fatalf("created_at = %q", result.CreatedAt)
		}

		if client.appraiseAttrs["area"] != 100.0 || client.appraiseAttrs["property_type"] != "house" {
			t.Fatalf("attrs = %v", client.appraiseAttrs)
		}
		if client.appraiseAttrs["bedrooms"] != 3.0 {
			t.Fatalf("bedrooms = %v, want 3", client.appraiseAttrs["bedrooms"])
		}
		if _, ok := client.appraiseAttrs["bathrooms"]; ok {
			t.Fatal("expected unset bathrooms to be omitted")
		}
		if client.appraiseLocale != "pt-BR" {
			t.Fatalf("locale = %q, want pt-BR", client.appraiseLocale)
		}
	})

	t.Run("gRPC error", func(t *testing.T) {
		client := &fakeValuationClient{appraiseErr: fmt.Errorf("connection refused")}
		handler := PropertyValuationHandler(client, nil)
		_, _, err := handler(context.Background(), nil, PropertyValuationInput{Area: 100, PropertyType: "house"})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("nil client", func(t *testing.T) {
		handler := PropertyValuationHandler(nil, nil)
		if _, _, err := handler(context.Background(), nil, PropertyValuationInput{}); err == nil {
			t.Fatal("expected error for nil client")
		}
	})
}

func TestValuationGetHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := &fakeValuationClient{getResp: testValuation("val-7")}
		handler := ValuationGetHandler(client, nil)
		_, result, err := handler(context.Background(), nil, ValuationGetInput{ID: " val-7 "})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.getID != "val-7" {
			t.Fatalf("requested id = %q, want trimmed val-7", client.getID)
		}
		if result.ID != "val-7" || result.ExpertPrice != 315000 {
			t.Fatalf("result = %+v", result)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		handler := ValuationGetHandler(&fakeValuationClient{}, nil)
		if _, _, err := handler(context.Background(), nil, ValuationGetInput{}); err == nil {
			t.Fatal("expected error for missing id")
		}
	})
}

func TestValuationListHandler(t *testing.T) {
	client := &fakeValuationClient{listResp: app.Page{
		Valuations:    []app.Valuation{testValuation("val-2"), testValuation("val-1")},
		NextPageToken: "next",
	}}
	handler := ValuationListHandler(client, nil)
	_, result, err := handler(context.Background(), nil, ValuationListInput{
		PageSize: 2,
		Filter:   `property_type = "house"`,
		OrderBy:  "final_price desc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := storage.ListOptions{PageSize: 2, Filter: `property_type = "house"`, OrderBy: "final_price desc"}
	if client.listOpts != want {
		t.Fatalf("list options = %+v, want %+v", client.listOpts, want)
	}
	if len(result.Valuations) != 2 || result.Valuations[0].ID != "val-2" || result.NextPageToken != "next" {
		t.Fatalf("result = %+v", result)
	}
	if result.Valuations[1].Location != "premium" || result.Valuations[1].FinalPrice != 327000 {
		t.Fatalf("entry = %+v", result.Valuations[1])
	}
}

func TestValuationRulesHandler(t *testing.T) {
	loadedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := &fakeValuationClient{rulesResp: valuationgrpc.RulesResponse{
		RulesVersion:  rules.RulesVersion,
		UsingDefaults: true,
		RulesInfo: app.RulesInfo{
			Metadata: rules.Metadata{RulesVersion: rules.RulesVersion, Steps: []string{rules.RuleFloor}, Locations: []string{"general"}},
			Simulate: true,
			Models: []predict.Status{
				{Quantity: predict.QuantityPrice, Available: true, Version: "v1", LoadedAt: loadedAt},
				{Quantity: predict.QuantityRent, Error: "model file not found"},
			},
		},
	}}
	handler := ValuationRulesHandler(client, nil)
	_, result, err := handler(context.Background(), nil, ValuationRulesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RulesVersion != rules.RulesVersion || !result.UsingDefaults || !result.Simulate {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Steps) != 1 || result.Steps[0] != rules.RuleFloor {
		t.Fatalf("steps = %v", result.Steps)
	}
	if len(result.Models) != 2 || result.Models[0].LoadedAt != "2026-03-01T12:00:00Z" || result.Models[1].Error == "" {
		t.Fatalf("models = %+v", result.Models)
	}

	client.rulesErr = fmt.Errorf("unavailable")
	if _, _, err := handler(context.Background(), nil, ValuationRulesInput{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBlendEstimatesHandler(t *testing.T) {
	predicted := 110.0
	far := 200.0
	tests := []struct {
		name   string
		input  BlendEstimatesInput
		value  float64
		method string
	}{
		{name: "no prediction", input: BlendEstimatesInput{Expert: 100}, value: 100, method: "expert_only"},
		{name: "weighted", input: BlendEstimatesInput{Expert: 100, Predicted: &predicted, Confidence: 0.5}, value: 105, method: "confidence_weighted"},
		{name: "disagreement", input: BlendEstimatesInput{Expert: 100, Predicted: &far, Confidence: 0.5}, value: 100, method: "expert_preferred"},
		{name: "low confidence", input: BlendEstimatesInput{Expert: 100, Predicted: &predicted, Confidence: 0.01}, value: 100, method: "expert_only"},
	}
	handler := BlendEstimatesHandler(fixedContext(""))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result, err := handler(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Value != tt.value || result.Method != tt.method {
				t.Fatalf("result = %v/%s, want %v/%s", result.Value, result.Method, tt.value, tt.method)
			}
		})
	}
}

func TestBlendEstimatesHandlerRejectsNonFinite(t *testing.T) {
	inf := math.Inf(1)
	handler := BlendEstimatesHandler(fixedContext("pt-BR"))

	_, _, err := handler(context.Background(), nil, BlendEstimatesInput{Expert: 100, Predicted: &inf})
	if err == nil || err.Error() != "A estimativa é inválida: predicted must be a finite number" {
		t.Fatalf("err = %v, want localized invalid estimate", err)
	}
	if _, _, err := BlendEstimatesHandler(fixedContext(""))(context.Background(), nil, BlendEstimatesInput{Expert: math.NaN()}); err == nil {
		t.Fatal("expected error for NaN expert")
	}
}

func TestSetLocaleHandler(t *testing.T) {
	var current Context
	set := func(c Context) { current = c }
	get := func() Context { return current }
	handler := SetLocaleHandler(set, get)

	_, result, err := handler(context.Background(), nil, SetLocaleInput{Locale: " pt-br "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Locale != "pt-BR" || current.Locale != "pt-BR" {
		t.Fatalf("locale = %q/%q, want pt-BR", result.Locale, current.Locale)
	}

	if _, _, err := handler(context.Background(), nil, SetLocaleInput{Locale: "not a locale!"}); err == nil {
		t.Fatal("expected error for invalid locale")
	}
	if current.Locale != "pt-BR" {
		t.Fatalf("locale changed to %q after invalid input", current.Locale)
	}

	if _, _, err := handler(context.Background(), nil, SetLocaleInput{}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if current.Locale != "" {
		t.Fatalf("locale = %q, want reset", current.Locale)
	}
}

func TestContextResourceHandler(t *testing.T) {
	handler := ContextResourceHandler(fixedContext("ja"))
	result, err := handler(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "context://current"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload ContextResourcePayload
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Context.Locale == nil || *payload.Context.Locale != "ja" {
		t.Fatalf("payload = %+v, want locale ja", payload)
	}

	if _, err := handler(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "context://other"}}); err == nil {
		t.Fatal("expected error for unknown URI")
	}
}

func TestValuationResourceHandler(t *testing.T) {
	client := &fakeValuationClient{getResp: testValuation("val-3")}
	handler := ValuationResourceHandler(client, nil)
	result, err := handler(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "valuation://val-3"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.getID != "val-3" {
		t.Fatalf("requested id = %q, want val-3", client.getID)
	}
	var decoded app.Valuation
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &decoded); err != nil {
		t.Fatalf("decode valuation: %v", err)
	}
	if decoded.ID != "val-3" || decoded.FinalPrice != 327000 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestParseValuationIDFromURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{uri: "valuation://abc", want: "abc"},
		{uri: "valuation://", wantErr: true},
		{uri: "valuation://abc/trace", wantErr: true},
		{uri: "rules://current", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseValuationIDFromURI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parse %q error = %v, wantErr %v", tt.uri, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parse %q = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
