// Package httpapi provides the HTTP/JSON API for the battle calculator:
// the unit type listing, direct battle resolution, and the attack order
// optimiser.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Artemis21/polycalc-api/internal/config"
	"github.com/Artemis21/polycalc-api/internal/game/unit"
)

// Server serves the battle calculator API. It implements server.Service.
type Server struct {
	cfg          config.HTTPConfig
	catalog      *unit.Catalog
	maxAttackers int
	logger       *zap.Logger

	httpSrv  *http.Server
	mu       sync.Mutex
	listener net.Listener
	running  bool
}

// NewServer creates a Server routing the API endpoints against the given
// unit catalog.
//
// Precondition: catalog and logger must be non-nil.
// Postcondition: Returns a Server ready to be started with Start.
func NewServer(cfg config.HTTPConfig, battleCfg config.BattleConfig, catalog *unit.Catalog, logger *zap.Logger) *Server {
	s := &Server{
		cfg:          cfg,
		catalog:      catalog,
		maxAttackers: battleCfg.MaxOptimiseAttackers,
		logger:       logger,
	}

	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.HandleFunc("/units", s.handleListUnits).Methods(http.MethodGet)
	router.HandleFunc("/battle", s.handleBattle).Methods(http.MethodPost)
	router.HandleFunc("/optim", s.handleOptimise).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.httpSrv = &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Start listens on the configured address and serves requests until Stop is
// called. This method blocks, implementing server.Service.
//
// Precondition: The server must not already be running.
// Postcondition: The listener is closed when this method returns.
func (s *Server) Start() error {
	start := time.Now()

	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.logger.Info("http server listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := s.httpSrv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down, waiting up to the configured
// shutdown timeout for in-flight requests to finish.
//
// Postcondition: No new requests are accepted after this method returns.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown incomplete, forcing close", zap.Error(err))
		_ = s.httpSrv.Close()
	}
}

// Addr returns the bound listen address, or "" if the server has not
// started. Useful when the configured port is 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Handler returns the root handler, for tests that drive the API without a
// network listener.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}
