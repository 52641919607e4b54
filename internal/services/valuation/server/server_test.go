package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	platformgrpc "github.com/louisbranch/appraisal/internal/platform/grpc"
	valuationgrpc "github.com/louisbranch/appraisal/internal/services/valuation/api/grpc/valuation"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/predict"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage"
)

func TestServerServesValuationsUntilCanceled(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(rulesPath, []byte("location_base_rates:\n  general: 3500\n"), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	srv, err := New(context.Background(), Options{
		Addr:      "127.0.0.1:0",
		DBPath:    filepath.Join(dir, "data", "valuations.db"),
		RulesPath: rulesPath,
		Simulate:  true,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	conn, err := platformgrpc.DialWithHealth(context.Background(), srv.Addr(), platformgrpc.DialConfig{
		Service: valuationgrpc.ServiceName,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		cancel()
		t.Fatalf("dial server: %v", err)
	}
	defer conn.Close()

	client := valuationgrpc.NewClient(conn)
	v, err := client.Appraise(context.Background(), map[string]any{"area": 60, "property_type": "flat"})
	if err != nil {
		t.Fatalf("appraise: %v", err)
	}
	if v.UsingDefaultRules {
		t.Fatal("expected rule document to be applied")
	}
	if !v.Simulated {
		t.Fatal("expected simulated predictions")
	}
	page, err := client.ListValuations(context.Background(), storage.ListOptions{})
	if err != nil {
		t.Fatalf("list valuations: %v", err)
	}
	if len(page.Valuations) != 1 || page.Valuations[0].ID != v.ID {
		t.Fatalf("page = %+v", page)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerLoadsModels(t *testing.T) {
	dir := t.TempDir()
	coefficients := make([]float64, predict.FeatureCount)
	coefficients[0] = 2500
	data, err := json.Marshal(predict.LinearModel{Name: "price", Coefficients: coefficients})
	if err != nil {
		t.Fatalf("marshal model: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, predict.ModelFileName(predict.QuantityPrice)), data, 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}

	srv, err := New(context.Background(), Options{Addr: "127.0.0.1:0", ModelsDir: dir})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	conn, err := platformgrpc.DialWithHealth(context.Background(), srv.Addr(), platformgrpc.DialConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("dial server: %v", err)
	}
	defer conn.Close()

	client := valuationgrpc.NewClient(conn)
	v, err := client.Appraise(context.Background(), map[string]any{"area": 100, "property_type": "house", "bedrooms": 3, "bathrooms": 2})
	if err != nil {
		t.Fatalf("appraise: %v", err)
	}
	price := v.PricePrediction()
	if price.Source != predict.SourceModel || price.Value == nil || *price.Value != 250000 {
		t.Fatalf("price prediction = %+v, want model value 250000", price)
	}
	if v.Simulated {
		t.Fatal("model predictions must not be simulated")
	}

	rules, err := client.DescribeRules(context.Background())
	if err != nil {
		t.Fatalf("describe rules: %v", err)
	}
	if !rules.Models[0].Available {
		t.Fatalf("price model status = %+v", rules.Models[0])
	}
}

func TestNewRejectsBadAddress(t *testing.T) {
	if _, err := New(context.Background(), Options{Addr: "not-an-address"}); err == nil {
		t.Fatal("expected listen error")
	}
}

func TestRunWithCanceledContextStopsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dbPath := filepath.Join(t.TempDir(), "nested", "valuations.db")
	if err := Run(ctx, Options{Addr: "127.0.0.1:0", DBPath: dbPath}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected store to be created: %v", err)
	}
}
