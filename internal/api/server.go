package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/locus-home/locus-core/internal/event"
	"github.com/locus-home/locus-core/internal/geo"
	"github.com/locus-home/locus-core/internal/infrastructure/config"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
	"github.com/locus-home/locus-core/internal/prediction"
	"github.com/locus-home/locus-core/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// PositionBuffer is the ingestion surface the server writes through.
type PositionBuffer interface {
	Enqueue(ctx context.Context, p telemetry.Position) error
	Latest(ctx context.Context, fromStore func(context.Context) (*telemetry.Position, error)) (*telemetry.Position, error)
}

// PositionStore reads persisted positions.
type PositionStore interface {
	LatestFromStore(ctx context.Context) (*telemetry.Position, error)
}

// PredictionStore reads current pollution probabilities.
type PredictionStore interface {
	CurrentByHome(ctx context.Context, homeID int64) ([]prediction.Prediction, error)
}

// EventStore reads recent sensor events.
type EventStore interface {
	ListTodayByHome(ctx context.Context, homeID int64) ([]event.SensorEvent, error)
}

// HealthChecker reports the liveness of an infrastructure dependency.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	WS          config.WebSocketConfig
	Logger      *logging.Logger
	Buffer      PositionBuffer
	Positions   PositionStore
	Predictions PredictionStore
	Events      EventStore
	Transformer *geo.Transformer
	Hub         *Hub // If set, the server uses this hub instead of creating its own
	Health      map[string]HealthChecker
	Version     string
}

// Server is the HTTP and WebSocket front of the telemetry core.
//
// It is created with New() and started with Start(); Close() drains
// in-flight requests and disconnects websocket clients.
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	buffer      PositionBuffer
	positions   PositionStore
	predictions PredictionStore
	events      EventStore
	transformer *geo.Transformer
	health      map[string]HealthChecker
	version     string
	server      *http.Server
	hub         *Hub
	cancel      context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Buffer == nil {
		return nil, fmt.Errorf("position buffer is required")
	}
	if deps.Transformer == nil {
		return nil, fmt.Errorf("coordinate transformer is required")
	}

	s := &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		logger:      deps.Logger.With("component", "api"),
		buffer:      deps.Buffer,
		positions:   deps.Positions,
		predictions: deps.Predictions,
		events:      deps.Events,
		transformer: deps.Transformer,
		health:      deps.Health,
		version:     deps.Version,
	}

	if deps.Hub != nil {
		s.hub = deps.Hub
	} else {
		s.hub = NewHub(deps.WS, s.logger)
	}

	return s, nil
}

// Hub returns the websocket hub, for fanout registration.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It returns immediately; the listener runs on its own goroutine and
// logs a fatal error if it stops unexpectedly.
func (s *Server) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.hub.Run(runCtx)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.buildRouter(),
		ReadTimeout:  time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped unexpectedly", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// handleHealth reports the service version and dependency liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.health))
	status := http.StatusOK

	for name, checker := range s.health {
		if err := checker.HealthCheck(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, status, map[string]any{
		"status":  http.StatusText(status),
		"version": s.version,
		"checks":  checks,
		"clients": s.hub.ClientCount(),
	})
}
