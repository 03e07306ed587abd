// Package server coordinates the long-running pieces of the API process.
// Services start in registration order, run until a shutdown trigger, and
// stop in reverse order within a configurable grace period.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component managed by the Lifecycle. Start must
// block until the service exits; Stop must cause Start to return.
type Service interface {
	Start() error
	Stop()
}

// Lifecycle runs registered services and tears them down in reverse order
// when a SIGINT/SIGTERM arrives, the context is cancelled, or a service
// fails. Each stop is bounded by the grace period so one wedged service
// cannot stall process exit.
type Lifecycle struct {
	logger      *zap.Logger
	gracePeriod time.Duration

	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name string
	svc  Service
}

// NewLifecycle creates a Lifecycle that allows each service gracePeriod to
// stop. A zero or negative grace period waits on stops indefinitely.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger, gracePeriod time.Duration) *Lifecycle {
	return &Lifecycle{
		logger:      logger,
		gracePeriod: gracePeriod,
	}
}

// Add registers a named service. Services start in the order they are added
// and stop in the reverse order.
//
// Precondition: name must be non-empty; svc must be non-nil. Add must not
// be called after Run.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, svc: svc})
}

// Run starts every registered service and blocks until a termination signal
// (SIGINT or SIGTERM) arrives, ctx is cancelled, or a service fails. All
// services are then stopped in reverse order. Run returns the failure that
// triggered shutdown, or nil after a clean signal or cancellation.
//
// Postcondition: Every registered service has been asked to stop when Run
// returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	services := make([]namedService, len(l.services))
	copy(services, l.services)
	l.mu.Unlock()

	failures := make(chan error, len(services))
	for _, ns := range services {
		go func() {
			l.logger.Info("starting service",
				zap.String("service", ns.name),
			)
			svcStart := time.Now()
			if err := ns.svc.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				failures <- fmt.Errorf("service %s: %w", ns.name, err)
				cancel()
			}
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case runErr = <-failures:
		l.logger.Error("service error, shutting down",
			zap.Error(runErr),
		)
	case <-ctx.Done():
		// A failing service sends its error before cancelling, so report
		// the failure rather than a bare cancellation when both raced.
		select {
		case runErr = <-failures:
			l.logger.Error("service error, shutting down",
				zap.Error(runErr),
			)
		default:
			l.logger.Info("context cancelled, shutting down")
		}
	}

	l.stopAll(services)

	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return runErr
}

// stopAll stops services in reverse registration order, abandoning any stop
// that outlives the grace period.
func (l *Lifecycle) stopAll(services []namedService) {
	shutdownStart := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		l.logger.Info("stopping service",
			zap.String("service", ns.name),
		)

		stopped := make(chan struct{})
		go func() {
			ns.svc.Stop()
			close(stopped)
		}()

		if l.gracePeriod > 0 {
			select {
			case <-stopped:
			case <-time.After(l.gracePeriod):
				l.logger.Warn("service stop exceeded grace period, abandoning",
					zap.String("service", ns.name),
					zap.Duration("grace_period", l.gracePeriod),
				)
				continue
			}
		} else {
			<-stopped
		}

		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}
