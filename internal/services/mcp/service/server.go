package service

import (
	"context"
	"sync"

	"github.com/louisbranch/appraisal/internal/services/mcp/domain"
	valuationgrpc "github.com/louisbranch/appraisal/internal/services/valuation/api/grpc/valuation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

const (
	serverName    = "Appraisal MCP"
	serverVersion = "0.1.0"
)

// TransportKind selects how MCP clients reach the server.
type TransportKind string

const (
	// TransportStdio serves a single client over standard input/output.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves remote clients over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	// GRPCAddr is the valuation service address. Empty uses the local default.
	GRPCAddr  string
	Transport TransportKind
	// HTTPAddr is the listen address for TransportHTTP. Empty uses the local
	// default.
	HTTPAddr string
}

// Server exposes the valuation service as MCP tools and resources. It holds
// the per-session locale used on every valuation call.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn

	mu  sync.RWMutex
	ctx domain.Context
}

// New dials the valuation service at grpcAddr and binds the MCP handlers to it.
func New(ctx context.Context, grpcAddr string) (*Server, error) {
	conn, err := dialValuationGRPC(ctx, grpcAddress(grpcAddr))
	if err != nil {
		return nil, err
	}
	return newServer(conn), nil
}

// newServer binds the MCP handlers over conn, which the server then owns. A
// nil conn leaves the valuation tools answering with errors.
func newServer(conn *grpc.ClientConn) *Server {
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil),
		conn:      conn,
	}
	var client domain.ValuationClient
	if conn != nil {
		client = valuationgrpc.NewClient(conn)
	}
	for _, r := range s.registrations(client) {
		r.add(s.mcpServer)
	}
	return s
}

func (s *Server) setContext(ctx domain.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
}

func (s *Server) getContext() domain.Context {
	if s == nil {
		return domain.Context{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}
