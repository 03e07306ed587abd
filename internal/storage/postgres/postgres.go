// Package postgres stores the unit type catalog in PostgreSQL. The Pool
// backs the unit_types repository and the serving process's periodic
// health checks.
package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Artemis21/polycalc-api/internal/config"
)

// connectTimeout bounds the startup ping so a misconfigured database fails
// the process quickly instead of hanging it.
const connectTimeout = 10 * time.Second

// Pool wraps a pgx connection pool with health-check and lifecycle methods.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to PostgreSQL with the given settings and verifies the
// connection with a ping. The catalog is small and read-mostly, so the
// pool limits come straight from configuration.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a Pool ready for queries, or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Health checks that the database answers a ping within the given timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases all pool resources. The pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}

// HealthService periodically pings the database so connectivity problems
// surface in the logs before a request trips over them. It implements the
// lifecycle Service interface; stopping it also releases the pool.
type HealthService struct {
	pool     *Pool
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHealthService creates a HealthService that pings pool every interval,
// each ping bounded by timeout.
//
// Precondition: pool and logger must be non-nil; interval and timeout must
// be positive.
func NewHealthService(pool *Pool, logger *zap.Logger, interval, timeout time.Duration) *HealthService {
	return &HealthService{
		pool:     pool,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the ping loop until Stop is called. Failed pings are logged
// and the loop keeps going, since the database may recover on its own.
func (h *HealthService) Start() error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := h.pool.Health(context.Background(), h.timeout); err != nil {
				h.logger.Warn("database health check failed", zap.Error(err))
			}
		case <-h.stopCh:
			return nil
		}
	}
}

// Stop ends the ping loop and closes the pool.
func (h *HealthService) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		h.pool.Close()
	})
}
