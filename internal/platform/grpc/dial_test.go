package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	gogrpc "google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const valuationService = "appraisal.valuation.v1.ValuationService"

func TestDialWithHealth(t *testing.T) {
	fixture := newHealthFixture(t, valuationService)

	tests := []struct {
		name    string
		service string
		wantErr bool
	}{
		{name: "server", service: ""},
		{name: "named service", service: valuationService},
		{name: "unknown service", service: "unknown.Service", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := DialWithHealth(context.Background(), fixture.addr, DialConfig{
				Service: tt.service,
				Timeout: 300 * time.Millisecond,
			})
			if tt.wantErr {
				if err == nil {
					_ = conn.Close()
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("dial with health: %v", err)
			}
			_ = conn.Close()
		})
	}
}

func TestDialWithHealthTimeoutBoundsWait(t *testing.T) {
	fixture := newHealthFixture(t)
	fixture.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	start := time.Now()
	_, err := DialWithHealth(context.Background(), fixture.addr, DialConfig{Timeout: 150 * time.Millisecond})

	var dialErr *DialError
	if !errors.As(err, &dialErr) || dialErr.Stage != DialStageHealth {
		t.Fatalf("err = %v, want health stage DialError", err)
	}
	if elapsed := time.Since(start); elapsed > 600*time.Millisecond {
		t.Fatalf("health wait took %v", elapsed)
	}
}

func TestDialWithHealthConnectFailure(t *testing.T) {
	boom := errors.New("dial failure")
	_, err := DialWithHealth(context.Background(), "unused", DialConfig{
		NewClient: func(string, ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
			return nil, boom
		},
	})

	var dialErr *DialError
	if !errors.As(err, &dialErr) || dialErr.Stage != DialStageConnect {
		t.Fatalf("err = %v, want connect stage DialError", err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("expected cause in chain")
	}
	if got := err.Error(); got != "gRPC connect error: dial failure" {
		t.Fatalf("message = %q", got)
	}
}
