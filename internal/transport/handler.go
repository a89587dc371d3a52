package transport

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goahttp "goa.design/goa/v3/http"
	"goa.design/goa/v3/http/middleware"

	"fasplanners/internal/config"
	"fasplanners/internal/metrics"
)

// NewHandler mounts the endpoints on a goa muxer and wraps it with the
// middleware chain: Security -> CORS -> Logging -> Prometheus -> Handler.
// /metrics is served by Prometheus.
func NewHandler(cfg *config.Config, endpoints *Endpoints) http.Handler {
	mux := goahttp.NewMuxer()

	server := New(endpoints, mux, goahttp.RequestDecoder, goahttp.ResponseEncoder, ErrorHandler, cfg.Submission.MaxBodyBytes)
	server.Use(middleware.RequestID())
	server.Use(middleware.PopulateRequestContext())
	server.Mount(mux)

	metricsHandler := promhttp.Handler()
	rootHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			metricsHandler.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	return SecurityHeaders(CORS(RequestLogging(metrics.PrometheusMiddleware(rootHandler)), cfg), cfg)
}
