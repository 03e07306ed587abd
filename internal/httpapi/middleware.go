package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Artemis21/polycalc-api/internal/observability"
)

type contextKey int

const loggerKey contextKey = 0

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests assigns every request an ID, exposes a request-scoped logger
// through the context, and logs one line per request served. The ID is
// echoed back in the X-Request-Id header.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		logger := observability.RequestLogger(s.logger, requestID)

		w.Header().Set("X-Request-Id", requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), loggerKey, logger)
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Info("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// requestLog returns the request-scoped logger, falling back to base when
// the middleware did not run.
func requestLog(r *http.Request, base *zap.Logger) *zap.Logger {
	if logger, ok := r.Context().Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return base
}
