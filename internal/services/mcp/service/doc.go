// Package service wires MCP transports to the valuation domain handlers.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio or HTTP and how to reach the valuation service, and delegates tool
// meaning to the handlers in the domain package.
package service
