package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/louisbranch/appraisal/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var listenTCP = net.Listen

// HTTPTransport serves one MCP server over streamable HTTP at /mcp, with a
// liveness probe at /mcp/health.
type HTTPTransport struct {
	addr       string
	server     *mcp.Server
	httpServer *http.Server
	// ready receives the bound address once the listener is open.
	ready chan<- string
}

// NewHTTPTransport creates an HTTP transport for server listening on addr.
func NewHTTPTransport(addr string, server *mcp.Server) *HTTPTransport {
	return &HTTPTransport{addr: addr, server: server}
}

// Handler returns the HTTP routes of the transport.
func (t *HTTPTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return t.server
	}, nil))
	mux.HandleFunc("/mcp/health", handleHealth)
	return mux
}

// Start listens on the transport address and serves until ctx ends.
func (t *HTTPTransport) Start(ctx context.Context) error {
	if t == nil || t.server == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}
	t.httpServer = &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	log.Printf("Starting MCP HTTP server on %s", listener.Addr())
	if t.ready != nil {
		t.ready <- listener.Addr().String()
	}

	errChan := make(chan error, 1)
	go func() {
		if err := t.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
