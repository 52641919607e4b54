package otel

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestSetupIsNoopWhenInactive(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		enabled  string
	}{
		{name: "no endpoint", endpoint: "", enabled: "true"},
		{name: "disabled", endpoint: "http://localhost:4318", enabled: "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APPRAISAL_OTEL_ENDPOINT", tt.endpoint)
			t.Setenv("APPRAISAL_OTEL_ENABLED", tt.enabled)

			shutdown, err := Setup(context.Background(), "test-service")
			if err != nil {
				t.Fatalf("setup: %v", err)
			}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			if err := shutdown(ctx); err != nil {
				t.Fatalf("noop shutdown: %v", err)
			}
		})
	}
}

func TestSetupRejectsBadSettings(t *testing.T) {
	t.Setenv("APPRAISAL_OTEL_SAMPLE_RATIO", "half")
	if _, err := Setup(context.Background(), "test-service"); err == nil {
		t.Fatal("expected settings error")
	}
}

func TestSetupWithEndpoint(t *testing.T) {
	// Non-routable address; nothing is exported before shutdown.
	t.Setenv("APPRAISAL_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("APPRAISAL_OTEL_ENABLED", "true")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestProviderRecordsServiceSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp, err := newProvider(context.Background(), "valuation", 1, sdktrace.WithSyncer(exporter))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "valuation.appraise")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "valuation.appraise" {
		t.Fatalf("spans = %+v", spans)
	}
	if got, ok := spans[0].Resource.Set().Value(semconv.ServiceNameKey); !ok || got.AsString() != "valuation" {
		t.Fatalf("service name = %v", got)
	}
}

func TestProviderDropsUnsampledRoots(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp, err := newProvider(context.Background(), "valuation", 0, sdktrace.WithSyncer(exporter))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "valuation.appraise")
	span.End()
	if got := len(exporter.GetSpans()); got != 0 {
		t.Fatalf("spans = %d, want 0", got)
	}
}

func TestTracerWithoutProvider(t *testing.T) {
	ctx, span := Tracer("test").Start(context.Background(), "valuation.appraise")
	defer span.End()
	if ctx == nil {
		t.Fatal("expected context")
	}
}
