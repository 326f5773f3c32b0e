package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/salesdash/internal/http/analytics"
	"github.com/MrJamesThe3rd/salesdash/internal/http/health"
	"github.com/MrJamesThe3rd/salesdash/internal/http/requestid"
	"github.com/MrJamesThe3rd/salesdash/internal/metrics"
)

const rateLimitWindow = time.Minute

type Options struct {
	CORSOrigins []string
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
	Metrics   *metrics.HTTP
	Gatherer  prometheus.Gatherer
}

func New(
	analyticsV1 *analytics.Handler,
	healthH *health.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(requestid.Middleware)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestid.Header},
		ExposedHeaders: []string{requestid.Header},
		MaxAge:         300,
	}))
	router.Use(opts.Metrics.Middleware)

	if opts.RateLimit > 0 {
		router.Use(httprate.Limit(
			opts.RateLimit,
			rateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(tooManyRequests),
		))
	}

	router.Route("/healthz", healthH.Routes)

	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Group(analyticsV1.Routes)

	return router
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Too Many Requests"}` + "\n"))
}
