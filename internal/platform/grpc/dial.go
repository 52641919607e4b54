// Package grpc holds client and server plumbing shared by the valuation
// service and its callers.
package grpc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DialStage names the step of DialWithHealth that failed.
type DialStage string

const (
	DialStageConnect DialStage = "connect"
	DialStageHealth  DialStage = "health"
)

// DialError reports a DialWithHealth failure and the stage it happened in.
type DialError struct {
	Stage DialStage
	Err   error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("gRPC %s error: %v", e.Stage, e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}

// DefaultClientDialOptions returns plaintext credentials and the OTel client
// stats handler, which propagates trace context on outbound calls.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// DefaultServerOptions returns the OTel server stats handler.
func DefaultServerOptions() []gogrpc.ServerOption {
	return []gogrpc.ServerOption{
		gogrpc.StatsHandler(otelgrpc.NewServerHandler()),
	}
}

// DialConfig controls DialWithHealth.
type DialConfig struct {
	// NewClient defaults to grpc.NewClient.
	NewClient func(target string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error)
	// Service is the health service to wait for; empty checks the whole server.
	Service string
	// Timeout bounds the health wait. Zero waits until ctx ends.
	Timeout time.Duration
	Logf    func(string, ...any)
	// Options default to DefaultClientDialOptions.
	Options []gogrpc.DialOption
}

// DialWithHealth creates a client for addr and returns it once the health
// service reports SERVING. The client is closed when that never happens.
func DialWithHealth(ctx context.Context, addr string, cfg DialConfig) (*gogrpc.ClientConn, error) {
	newClient := cfg.NewClient
	if newClient == nil {
		newClient = gogrpc.NewClient
	}
	opts := cfg.Options
	if len(opts) == 0 {
		opts = DefaultClientDialOptions()
	}

	conn, err := newClient(addr, opts...)
	if err != nil {
		return nil, &DialError{Stage: DialStageConnect, Err: err}
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := WaitForHealth(ctx, conn, cfg.Service, cfg.Logf); err != nil {
		_ = conn.Close()
		return nil, &DialError{Stage: DialStageHealth, Err: err}
	}
	return conn, nil
}
