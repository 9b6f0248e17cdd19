package shortcodes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// result label values
const (
	resultOK        = "ok"
	resultInvalid   = "invalid"
	resultExhausted = "exhausted"
	resultError     = "error"
	resultHit       = "hit"
	resultMiss      = "miss"
)

// Metrics holds the service's Prometheus collectors. Each instance has its
// own registry, so several servers can live in one process.
type Metrics struct {
	registry        *prometheus.Registry
	shortened       *prometheus.CounterVec
	resolved        *prometheus.CounterVec
	collisions      prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		shortened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortcodes_shorten_total",
			Help: "Shorten operations by result.",
		}, []string{"result"}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortcodes_resolve_total",
			Help: "Resolve operations by result.",
		}, []string{"result"}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortcodes_code_collisions_total",
			Help: "Generated codes that were already taken.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shortcodes_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		m.shortened,
		m.resolved,
		m.collisions,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware observes the latency of every request, labelled by the matched
// route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
