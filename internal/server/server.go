// Package server exposes validation, backtesting and code generation over
// HTTP for the strategy editor.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-strategy/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-strategy/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-strategy/internal/codegen"
	"github.com/rxtech-lab/argo-strategy/internal/logger"
	"github.com/rxtech-lab/argo-strategy/internal/validator"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds request bodies; bar arrays dominate the size.
const DefaultMaxBodyBytes = 32 << 20

// EngineFactory creates the engine of one backtest request.
type EngineFactory func() engine.Engine

// Server serves the editor API.
type Server struct {
	log          *logger.Logger
	validator    *validator.Validator
	generator    *codegen.Generator
	newEngine    EngineFactory
	metrics      *metrics
	maxBodyBytes int64

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// Option customises a Server.
type Option func(*Server)

// WithEngineFactory replaces the backtest engine constructor.
func WithEngineFactory(f EngineFactory) Option {
	return func(s *Server) {
		s.newEngine = f
	}
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

func New(log *logger.Logger, opts ...Option) *Server {
	v := validator.New()

	s := &Server{
		log:          log,
		validator:    v,
		generator:    codegen.NewWithValidator(v),
		newEngine:    engine_v1.NewBacktestEngineV1,
		metrics:      newMetrics(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router returns the HTTP handler of every endpoint.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.metrics.middleware)
	api.HandleFunc("/validate", s.handleValidate).Methods(http.MethodPost)
	api.HandleFunc("/backtest", s.handleBacktest).Methods(http.MethodPost)
	api.HandleFunc("/compile/{dialect}", s.handleCompile).Methods(http.MethodPost)
	api.HandleFunc("/config/schema", s.handleConfigSchema).Methods(http.MethodGet)
	api.HandleFunc("/strategy/schema", s.handleStrategySchema).Methods(http.MethodGet)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return router
}

// Start listens on address and serves in the background. An empty address
// or ":0" picks a free port.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	s.log.Info("Strategy server listening", zap.String("address", listener.Addr().String()))

	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}

	return httpServer.Shutdown(ctx)
}

// Address returns the listening address once started.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}
