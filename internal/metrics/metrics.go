// Package metrics exposes Prometheus collectors for the HTTP surface and the
// seed job. Every recorder is nil-safe so callers can run without a registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "salesdash"

// HTTP records request counts and latencies per route.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP registers the HTTP metrics on reg. A nil reg yields a no-op recorder.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	if reg == nil {
		return &HTTP{}
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by route, method and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	reg.MustRegister(requests, duration)

	return &HTTP{requests: requests, duration: duration}
}

// Observe records one finished request.
func (m *HTTP) Observe(route, method string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}

	labels := []string{normalizeRoute(route), method, strconv.Itoa(status)}

	m.requests.WithLabelValues(labels...).Inc()
	m.duration.WithLabelValues(labels...).Observe(elapsed.Seconds())
}

// Middleware labels each request with its chi route pattern rather than the
// raw path, keeping label cardinality bounded.
func (m *HTTP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		var route string
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.Observe(route, r.Method, status, time.Since(start))
	})
}

func normalizeRoute(route string) string {
	if route == "" {
		return "unmatched"
	}

	return route
}

// Seed records the outcome of feed imports.
type Seed struct {
	runs     *prometheus.CounterVec
	records  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewSeed registers the seed metrics on reg. A nil reg yields a no-op recorder.
func NewSeed(reg prometheus.Registerer) *Seed {
	if reg == nil {
		return &Seed{}
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seed_runs_total",
		Help:      "Seed runs, by result.",
	}, []string{"result"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seed_records_total",
		Help:      "Seed records processed, by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "seed_duration_seconds",
		Help:      "Duration of seed runs in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	reg.MustRegister(runs, records, duration)

	return &Seed{runs: runs, records: records, duration: duration}
}

// ObserveRun records a finished run. The record counts are ignored on failure.
func (s *Seed) ObserveRun(err error, inserted, skipped, rejected int64, elapsed time.Duration) {
	if s == nil || s.runs == nil {
		return
	}

	s.duration.Observe(elapsed.Seconds())

	if err != nil {
		s.runs.WithLabelValues("failure").Inc()
		return
	}

	s.runs.WithLabelValues("success").Inc()
	s.records.WithLabelValues("inserted").Add(float64(inserted))
	s.records.WithLabelValues("skipped").Add(float64(skipped))
	s.records.WithLabelValues("rejected").Add(float64(rejected))
}
