package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seminar_registrations_total",
			Help: "Seminar registrations by outcome (registered, duplicate, rejected, failed)",
		},
		[]string{"outcome"},
	)

	emailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seminar_emails_total",
			Help: "Outbound emails by kind and delivery status",
		},
		[]string{"kind", "status"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps label cardinality bounded for unmatched paths.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordRegistration(outcome string) {
	registrationsTotal.WithLabelValues(outcome).Inc()
}

func RecordEmail(kind string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	emailsSentTotal.WithLabelValues(kind, status).Inc()
}

// Recorder exposes the package counters to the registration use case.
type Recorder struct{}

func (Recorder) RecordRegistration(outcome string) { RecordRegistration(outcome) }
func (Recorder) RecordEmail(kind string, err error) { RecordEmail(kind, err) }
