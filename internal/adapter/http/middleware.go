package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chahinez-moualek/meteo-expert-m2/internal/observability"
)

// correlationID tags every request and response with an X-Correlation-ID
// header, generating one when the caller did not supply it.
func correlationID(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get("X-Correlation-ID")
		if corrID == "" {
			corrID = uuid.New().String()
		}
		w.Header().Set("X-Correlation-ID", corrID)

		logger.Debug("request received",
			"method", r.Method,
			"path", r.URL.Path,
			"correlation_id", corrID,
		)
		next.ServeHTTP(w, r)
	})
}

// instrument records per-route request counts and latencies.
func instrument(metrics *observability.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		route := routeLabel(r.URL.Path)
		metrics.HTTPRequests.WithLabelValues(route, statusClass(recorder.statusCode)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// routeLabel collapses paths to a bounded label set so cardinality stays flat.
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/api/v1/") {
		return path
	}
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return path
	}
	return "other"
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
