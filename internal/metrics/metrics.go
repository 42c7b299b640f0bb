// Package metrics exposes Prometheus instrumentation for the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks HTTP request latency by method, route pattern, and status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// ProductsCreated counts products submitted through the API.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// VotesToggled counts vote toggle operations by outcome (cast or withheld).
	VotesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_toggled_total",
		Help: "The total number of vote toggles",
	}, []string{"outcome"})

	// CommentsCreated counts comments posted on products.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "comments_created_total",
		Help: "The total number of comments created",
	})

	// SearchesExecuted counts full-text search queries.
	SearchesExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "searches_executed_total",
		Help: "The total number of search queries executed",
	})

	// AvatarsMirrored counts remote avatar mirror operations by result.
	AvatarsMirrored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avatars_mirrored_total",
		Help: "The total number of avatar mirror attempts",
	}, []string{"result"})
)

// Handler returns the Prometheus scrape handler for mounting at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request duration for every routed request.
// Uses the chi route pattern rather than the raw path to keep
// cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(
			r.Method,
			route,
			strconv.Itoa(ww.Status()),
		).Observe(time.Since(start).Seconds())
	})
}
