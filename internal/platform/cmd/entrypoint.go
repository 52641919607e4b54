// Package cmd holds the startup plumbing shared by the appraisal commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"

	"github.com/louisbranch/appraisal/internal/platform/config"
	"github.com/louisbranch/appraisal/internal/platform/otel"
	"github.com/louisbranch/appraisal/internal/platform/timeouts"
)

// Service names, used as telemetry resources.
const (
	ServiceAppraisal = "appraisal"
	ServiceValuation = "valuation"
	ServiceMCP       = "mcp"
)

// ParseConfigFromArgs fills cfg from APPRAISAL_ variables, then parses args
// with the flags register adds to fs. register runs after the env pass so
// flag defaults show the env values.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string, register func(*flag.FlagSet, *T)) error {
	switch {
	case cfg == nil:
		return errors.New("config target is required")
	case fs == nil:
		return errors.New("flag parser is required")
	}
	if err := config.ParseEnv(cfg); err != nil {
		return err
	}
	if register != nil {
		register(fs, cfg)
	}
	return fs.Parse(args)
}

// RunWithTelemetry runs fn with tracing set up for service and flushes
// pending spans once fn returns.
func RunWithTelemetry(ctx context.Context, service string, fn func(context.Context) error) error {
	service = strings.TrimSpace(service)
	switch {
	case service == "":
		return errors.New("service name is required")
	case fn == nil:
		return errors.New("run function is required")
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("%s telemetry shutdown: %v", service, err)
		}
	}()
	return fn(ctx)
}
