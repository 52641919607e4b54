package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"

	platformgrpc "github.com/louisbranch/appraisal/internal/platform/grpc"
	valuationgrpc "github.com/louisbranch/appraisal/internal/services/valuation/api/grpc/valuation"
	"github.com/louisbranch/appraisal/internal/services/valuation/app"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/predict"
	"github.com/louisbranch/appraisal/internal/services/valuation/domain/rules"
	"github.com/louisbranch/appraisal/internal/services/valuation/storage/sqlite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// Options configures a valuation server.
type Options struct {
	// Addr is the listen address. Port is used when Addr is empty.
	Addr string
	Port int
	// DBPath is the SQLite valuation log. Empty disables persistence.
	DBPath    string
	RulesPath string
	ModelsDir string
	Simulate  bool
}

// Server hosts the valuation service.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *sqlite.Store
}

// New creates a configured valuation server.
func New(ctx context.Context, opts Options) (*Server, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		addr = fmt.Sprintf(":%d", opts.Port)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	// Startup work outlives a cancellation that arrives before Serve; Serve
	// then stops cleanly.
	setupCtx := context.WithoutCancel(ctx)
	var store *sqlite.Store
	if path := strings.TrimSpace(opts.DBPath); path != "" {
		store, err = openStore(setupCtx, path)
		if err != nil {
			_ = listener.Close()
			return nil, err
		}
	}

	engine := rules.NewEngine(rules.LoadConfig(opts.RulesPath))
	if engine.UsingDefaults() {
		log.Printf("using default valuation rules")
	}
	registry := predict.LoadRegistry(opts.ModelsDir)
	for _, status := range registry.Status() {
		if !status.Available && opts.ModelsDir != "" {
			log.Printf("model %s unavailable: %s", status.Quantity, status.Error)
		}
	}

	pipeline := app.NewPipeline(engine, registry, opts.Simulate, nil)
	if store != nil {
		pipeline.Store = store
	}

	serverOpts := append(platformgrpc.DefaultServerOptions(),
		grpc.ChainUnaryInterceptor(valuationgrpc.LocaleUnaryServerInterceptor()),
	)
	grpcServer := grpc.NewServer(serverOpts...)
	valuationgrpc.RegisterValuationServiceServer(grpcServer, valuationgrpc.NewService(pipeline))
	healthServer := platformgrpc.RegisterHealth(grpcServer, valuationgrpc.ServiceName)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a valuation server until the context ends.
func Run(ctx context.Context, opts Options) error {
	srv, err := New(ctx, opts)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// Serve starts the server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("valuation server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		return handleErr(err)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func (s *Server) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close valuation store: %v", err)
	}
}

func openStore(ctx context.Context, path string) (*sqlite.Store, error) {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}
