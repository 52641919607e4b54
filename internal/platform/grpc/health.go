package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// healthBackoff bounds the delay between health probes.
var healthBackoff = struct {
	initial, max, probe time.Duration
}{
	initial: 200 * time.Millisecond,
	max:     time.Second,
	probe:   time.Second,
}

// RegisterHealth serves the standard health service on srv and reports the
// server and each named service as SERVING.
func RegisterHealth(srv *gogrpc.Server, services ...string) *health.Server {
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	for _, name := range append([]string{""}, services...) {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	return hs
}

// WaitForHealth probes service on conn until it reports SERVING or ctx ends.
// Each unsuccessful probe is reported through logf when set.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return errors.New("gRPC connection is not configured")
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := healthpb.NewHealthClient(conn)
	delay := healthBackoff.initial
	for {
		err := probeHealth(ctx, client, service)
		if err == nil {
			logf("gRPC health check is SERVING")
			return nil
		}
		logf("waiting for gRPC health: %v", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("wait for gRPC health: %w", ctx.Err())
		case <-timer.C:
		}
		delay = min(delay*2, healthBackoff.max)
	}
}

func probeHealth(ctx context.Context, client healthpb.HealthClient, service string) error {
	ctx, cancel := context.WithTimeout(ctx, healthBackoff.probe)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return err
	}
	if status := resp.GetStatus(); status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("status %s", status)
	}
	return nil
}
