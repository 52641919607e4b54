package domain

import "github.com/louisbranch/appraisal/internal/platform/timeouts"

// grpcCallTimeout caps the time for a single valuation call from an MCP tool handler.
const grpcCallTimeout = timeouts.GRPCRequest
