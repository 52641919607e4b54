package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/appraisal/internal/platform/errors"
	"github.com/louisbranch/appraisal/internal/platform/id"
	"github.com/louisbranch/appraisal/internal/platform/otel"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/attributes"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/blend"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/predict"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/rules"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/appraisal/internal/services/valuation/app"

// errStoreUnavailable is returned by reads when no store is configured.
var errStoreUnavailable = apperrors.New(apperrors.CodeStoreUnavailable, "valuation store is not configured")

// Pipeline runs valuations. The zero value is not usable; Engine is required.
type Pipeline struct {
	Engine *rules.Engine
	// Predictor supplies model predictions. Nil means no models.
	Predictor predict.Predictor
	// Simulate enables simulated predictions when no model produced a value.
	Simulate bool
	// Store records valuations. Nil disables persistence.
	Store storage.ValuationStore

	now   func() time.Time
	newID func() (string, error)
}

// NewPipeline returns a pipeline over engine.
func NewPipeline(engine *rules.Engine, predictor predict.Predictor, simulate bool, store storage.ValuationStore) *Pipeline {
	return &Pipeline{
		Engine:    engine,
		Predictor: predictor,
		Simulate:  simulate,
		Store:     store,
	}
}

func (p *Pipeline) clock() time.Time {
	if p.now != nil {
		return p.now().UTC()
	}
	return time.Now().UTC()
}

func (p *Pipeline) nextID() (string, error) {
	if p.newID != nil {
		return p.newID()
	}
	return id.NewID()
}

// Appraise validates raw, runs the rules and predictions and blends the
// price. Invalid input yields a *ValidationError.
func (p *Pipeline) Appraise(ctx context.Context, raw map[string]any) (Valuation, error) {
	if p == nil || p.Engine == nil {
		return Valuation{}, fmt.Errorf("pipeline engine is required")
	}
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "valuation.appraise")
	defer span.End()

	checked := attributes.Validate(raw)
	if !checked.OK() {
		err := &ValidationError{Errors: checked.Errors, Warnings: checked.Warnings}
		recordError(span, err)
		return Valuation{}, err
	}
	set := checked.Set
	span.SetAttributes(
		attribute.String("valuation.property_type", string(set.PropertyType)),
		attribute.String("valuation.location", set.Location),
		attribute.Float64("valuation.area", set.Area),
	)

	_, evalSpan := tracer.Start(ctx, "valuation.evaluate")
	expert := p.Engine.Evaluate(set)
	evalSpan.SetAttributes(
		attribute.Float64("valuation.expert_price", expert.Price),
		attribute.Int("valuation.trace_steps", len(expert.Trace.Steps)),
	)
	evalSpan.End()

	predictions, simulated, err := p.predict(ctx, tracer, set, expert)
	if err != nil {
		recordError(span, err)
		return Valuation{}, err
	}

	_, blendSpan := tracer.Start(ctx, "valuation.blend")
	price := predictions[predict.QuantityPrice]
	finalPrice, decision := blend.Blend(expert.Price, price.Value, price.Confidence)
	blendSpan.SetAttributes(
		attribute.String("valuation.blend_method", string(decision.Method)),
		attribute.Float64("valuation.final_price", finalPrice),
	)
	blendSpan.End()

	valuationID, err := p.nextID()
	if err != nil {
		recordError(span, err)
		return Valuation{}, err
	}
	v := Valuation{
		ID:                valuationID,
		CreatedAt:         p.clock(),
		Attributes:        set,
		Warnings:          checked.Warnings,
		Expert:            expert,
		Predictions:       predictions,
		FinalPrice:        finalPrice,
		Blend:             decision,
		Simulated:         simulated,
		UsingDefaultRules: p.Engine.UsingDefaults(),
		RulesVersion:      rules.RulesVersion,
	}
	span.SetAttributes(attribute.String("valuation.id", v.ID))

	if p.Store != nil {
		record, err := toRecord(v)
		if err == nil {
			err = p.Store.PutValuation(ctx, record)
		}
		if err != nil {
			err = fmt.Errorf("store valuation: %w", err)
			recordError(span, err)
			return Valuation{}, err
		}
	}
	return v, nil
}

func (p *Pipeline) predict(ctx context.Context, tracer trace.Tracer, set attributes.Set, expert rules.Result) (predict.Results, bool, error) {
	ctx, span := tracer.Start(ctx, "valuation.predict")
	defer span.End()

	var (
		results predict.Results
		err     error
	)
	if p.Predictor != nil {
		results, err = predict.PredictAll(ctx, p.Predictor, set)
		if err != nil {
			recordError(span, err)
			return nil, false, fmt.Errorf("predict: %w", err)
		}
	} else {
		results = make(predict.Results, len(predict.Quantities))
		for _, q := range predict.Quantities {
			results[q] = predict.Unavailable(q, "no models configured")
		}
	}

	simulated := false
	if !results.AnyAvailable() && p.Simulate {
		results, err = predict.PredictAll(ctx, predict.Simulation{Expert: expert}, set)
		if err != nil {
			recordError(span, err)
			return nil, false, fmt.Errorf("simulate: %w", err)
		}
		simulated = true
	}
	span.SetAttributes(attribute.Bool("valuation.simulated", simulated))
	return results, simulated, nil
}

// Get returns a stored valuation.
func (p *Pipeline) Get(ctx context.Context, valuationID string) (Valuation, error) {
	if p == nil || p.Store == nil {
		return Valuation{}, errStoreUnavailable
	}
	record, err := p.Store.GetValuation(ctx, valuationID)
	if err != nil {
		return Valuation{}, err
	}
	return fromRecord(record)
}

// Page is one page of stored valuations.
type Page struct {
	Valuations    []Valuation `json:"valuations"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

// List returns stored valuations matching opts.
func (p *Pipeline) List(ctx context.Context, opts storage.ListOptions) (Page, error) {
	if p == nil || p.Store == nil {
		return Page{}, errStoreUnavailable
	}
	page, err := p.Store.ListValuations(ctx, opts)
	if err != nil {
		return Page{}, err
	}
	out := Page{
		Valuations:    make([]Valuation, 0, len(page.Valuations)),
		NextPageToken: page.NextPageToken,
	}
	for _, record := range page.Valuations {
		v, err := fromRecord(record)
		if err != nil {
			return Page{}, err
		}
		out.Valuations = append(out.Valuations, v)
	}
	return out, nil
}

// RulesInfo describes the rule set and model slots the pipeline runs with.
type RulesInfo struct {
	Metadata rules.Metadata   `json:"metadata"`
	Config   rules.Config     `json:"config"`
	Models   []predict.Status `json:"models,omitempty"`
	Simulate bool             `json:"simulate"`
}

// Rules returns the pipeline's rule metadata and configuration.
func (p *Pipeline) Rules() RulesInfo {
	info := RulesInfo{
		Metadata: p.Engine.Describe(),
		Config:   p.Engine.Config(),
		Simulate: p.Simulate,
	}
	if reporter, ok := p.Predictor.(interface{ Status() []predict.Status }); ok {
		info.Models = reporter.Status()
	}
	return info
}

func toRecord(v Valuation) (storage.ValuationRecord, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return storage.ValuationRecord{}, fmt.Errorf("encode valuation: %w", err)
	}
	return storage.ValuationRecord{
		ID:           v.ID,
		PropertyType: string(v.Attributes.PropertyType),
		Location:     v.Attributes.Location,
		Area:         v.Attributes.Area,
		ExpertPrice:  v.Expert.Price,
		FinalPrice:   v.FinalPrice,
		BlendMethod:  string(v.Blend.Method),
		Simulated:    v.Simulated,
		RulesVersion: v.RulesVersion,
		Payload:      payload,
		CreatedAt:    v.CreatedAt,
	}, nil
}

func fromRecord(record storage.ValuationRecord) (Valuation, error) {
	var v Valuation
	if err := json.Unmarshal(record.Payload, &v); err != nil {
		return Valuation{}, fmt.Errorf("decode valuation %s: %w", record.ID, err)
	}
	return v, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	var validation *ValidationError
	if errors.As(err, &validation) {
		span.SetStatus(codes.Error, "invalid attributes")
		return
	}
	span.SetStatus(codes.Error, err.Error())
}
