// Package discovery holds the local addresses the appraisal services listen on
// when no address is configured.
package discovery

import (
	"net"
	"strconv"
	"strings"
)

// Service identities.
const (
	ServiceValuation = "valuation"
	ServiceMCP       = "mcp"
)

// DefaultHost is the host of every default address.
const DefaultHost = "localhost"

// ports maps a service to its conventional listen port. The valuation service
// speaks gRPC; the MCP service speaks streamable HTTP.
var ports = map[string]int{
	ServiceValuation: 8082,
	ServiceMCP:       8085,
}

// Addr returns the default host:port of service, or "" when it is unknown.
func Addr(service string) string {
	port, ok := ports[strings.TrimSpace(service)]
	if !ok {
		return ""
	}
	return net.JoinHostPort(DefaultHost, strconv.Itoa(port))
}

// Resolve returns the trimmed addr, or the default address of service when
// addr is blank.
func Resolve(addr, service string) string {
	if addr = strings.TrimSpace(addr); addr != "" {
		return addr
	}
	return Addr(service)
}
