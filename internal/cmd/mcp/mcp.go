// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/appraisal/internal/platform/cmd"
	"github.com/louisbranch/appraisal/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Addr      string `env:"VALUATION_ADDR"  envDefault:"localhost:8082"`
	HTTPAddr  string `env:"MCP_HTTP_ADDR"   envDefault:"localhost:8085"`
	Transport string `env:"MCP_TRANSPORT"   envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, func(fs *flag.FlagSet, cfg *Config) {
		fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "valuation server address")
		fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
		fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	})
	if err != nil {
		return Config{}, err
	}
	switch service.TransportKind(cfg.Transport) {
	case service.TransportStdio, service.TransportHTTP:
	default:
		return Config{}, fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, service.Config{
			GRPCAddr:  cfg.Addr,
			Transport: service.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
		})
	})
}
