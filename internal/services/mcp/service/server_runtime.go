package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/appraisal/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/appraisal/internal/platform/grpc"
	"github.com/louisbranch/appraisal/internal/platform/timeouts"
	valuationgrpc "github.com/louisbranch/appraisal/internal/services/valuation/api/grpc/valuation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// healthCheckInterval spaces the valuation probes made while serving HTTP.
const healthCheckInterval = 30 * time.Second

// Run serves MCP over cfg.Transport until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	switch cfg.Transport {
	case "", TransportStdio:
		return runWithTransport(ctx, cfg.GRPCAddr, &mcp.StdioTransport{})
	case TransportHTTP:
		return runHTTP(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

func runHTTP(ctx context.Context, cfg Config) error {
	s, err := New(ctx, cfg.GRPCAddr)
	if err != nil {
		return err
	}
	defer s.Close()

	go s.monitorHealth(ctx, healthCheckInterval)
	return NewHTTPTransport(discovery.Resolve(cfg.HTTPAddr, discovery.ServiceMCP), s.mcpServer).Start(ctx)
}

func runWithTransport(ctx context.Context, grpcAddr string, transport mcp.Transport) error {
	s, err := New(ctx, grpcAddr)
	if err != nil {
		return err
	}
	return s.serveWithTransport(ctx, transport)
}

// monitorHealth logs when the valuation service stops reporting SERVING. The
// HTTP server keeps running; tool calls surface their own errors.
func (s *Server) monitorHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.conn == nil {
				continue
			}
			if err := s.probeValuation(ctx); err != nil {
				log.Printf("valuation health: %v", err)
			}
		}
	}
}

func (s *Server) probeValuation(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCDial)
	defer cancel()
	resp, err := healthpb.NewHealthClient(s.conn).Check(callCtx, &healthpb.HealthCheckRequest{Service: valuationgrpc.ServiceName})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("status %s", resp.GetStatus())
	}
	return nil
}

// Serve runs the server on stdio until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the valuation connection.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	conn := s.conn
	s.conn = nil
	return conn.Close()
}

// serveWithTransport runs the MCP session and always closes the valuation
// connection afterwards. Context cancellation is a clean stop.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		err = fmt.Errorf("serve MCP: %w", err)
	}
	if closeErr := s.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close valuation connection: %w", closeErr))
	}
	return err
}

func dialValuationGRPC(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	opts := append(
		platformgrpc.DefaultClientDialOptions(),
		grpc.WithChainUnaryInterceptor(valuationgrpc.LocaleUnaryClientInterceptor()),
	)
	conn, err := platformgrpc.DialWithHealth(ctx, addr, platformgrpc.DialConfig{
		Service: valuationgrpc.ServiceName,
		Timeout: timeouts.GRPCDial,
		Logf: func(format string, args ...any) {
			log.Printf("valuation "+format, args...)
		},
		Options: opts,
	})
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) && dialErr.Stage == platformgrpc.DialStageConnect {
			return nil, fmt.Errorf("connect to valuation service at %s: %w", addr, dialErr.Err)
		}
		return nil, fmt.Errorf("wait for valuation service at %s: %w", addr, err)
	}
	return conn, nil
}

func grpcAddress(addr string) string {
	return discovery.Resolve(addr, discovery.ServiceValuation)
}
