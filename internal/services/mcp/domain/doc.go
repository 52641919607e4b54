// Package domain translates MCP tool and resource calls into valuation
// service requests.
//
// Handlers validate tool input, call the valuation gRPC client with the
// session locale attached, and reshape valuations into structured results
// that MCP clients can render. blend_estimates is the one tool evaluated
// locally.
package domain
