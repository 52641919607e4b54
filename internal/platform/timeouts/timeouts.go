// Package timeouts defines shared timeout constants used across the
// appraisal commands.
package timeouts

import "time"

// GRPCDial caps the wait for a valuation service to report healthy.
const GRPCDial = 2 * time.Second

// GRPCRequest caps a single valuation request made by the MCP bridge.
const GRPCRequest = 10 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long a server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second
