package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		},
		[]string{"method", "endpoint"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "endpoint"},
	)

	// Database metrics
	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	dbConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	dbQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// Business metrics
	eventRequestsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_requests_submitted_total",
			Help: "Total number of event requests submitted",
		},
		[]string{"category"},
	)

	trackingCodeCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_code_collisions_total",
			Help: "Total number of tracking code collisions resolved by regeneration",
		},
	)

	statusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_request_status_changes_total",
			Help: "Total number of event request status changes",
		},
		[]string{"status"},
	)

	trackingLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_lookups_total",
			Help: "Total number of tracking code lookups",
		},
		[]string{"result"}, // found, not_found
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notification deliveries",
		},
		[]string{"channel", "status"},
	)

	inspirationImagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspiration_images_stored_total",
			Help: "Total number of inspiration images stored",
		},
		[]string{"backend"}, // inline, s3
	)
)

// PrometheusMiddleware creates a middleware that records Prometheus metrics
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip metrics endpoint itself
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		// Wrap response writer to capture status code and size
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		route := routeLabel(r.URL.Path)

		// Record request size
		if r.ContentLength > 0 {
			httpRequestSize.WithLabelValues(r.Method, route).Observe(float64(r.ContentLength))
		}

		// Handle request
		next.ServeHTTP(wrapped, r)

		// Record metrics
		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, route, statusCode).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route, statusCode).Observe(duration)
		httpResponseSize.WithLabelValues(r.Method, route).Observe(float64(wrapped.size))
	})
}

// routeLabel replaces numeric path segments with {id} to keep label cardinality bounded
func routeLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseUint(seg, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// RecordSubmission records a new event request
func RecordSubmission(category string) {
	if category == "" {
		category = "unspecified"
	}
	eventRequestsSubmittedTotal.WithLabelValues(category).Inc()
}

// RecordTrackingCodeCollision records a tracking code that had to be regenerated
func RecordTrackingCodeCollision() {
	trackingCodeCollisionsTotal.Inc()
}

// RecordStatusChange records a status update to the given status
func RecordStatusChange(status string) {
	statusChangesTotal.WithLabelValues(status).Inc()
}

// RecordTrackingLookup records a tracking page lookup
func RecordTrackingLookup(found bool) {
	result := "not_found"
	if found {
		result = "found"
	}
	trackingLookupsTotal.WithLabelValues(result).Inc()
}

// RecordNotification records a notification attempt on a channel
func RecordNotification(channel string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	notificationsTotal.WithLabelValues(channel, status).Inc()
}

// RecordImageStored records an inspiration image handled by a storage backend
func RecordImageStored(backend string) {
	inspirationImagesTotal.WithLabelValues(backend).Inc()
}

// RecordDBQuery records a database query
func RecordDBQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	dbQueriesTotal.WithLabelValues(operation, status).Inc()
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnections updates database connection metrics
func UpdateDBConnections(active, idle int) {
	dbConnectionsActive.Set(float64(active))
	dbConnectionsIdle.Set(float64(idle))
}

