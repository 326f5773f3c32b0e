package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTP_MiddlewareLabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTP(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/statistics", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Get("/transactions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	for _, target := range []string{"/statistics?month=x", "/statistics", "/transactions", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	mfs, err := reg.Gather()
	require.NoError(t, err)

	requests := findMetricFamily(mfs, "salesdash_http_requests_total")
	require.NotNil(t, requests)

	assert.Equal(t, 2.0, counterValue(requests, map[string]string{"route": "/statistics", "status": "400"}))
	assert.Equal(t, 1.0, counterValue(requests, map[string]string{"route": "/transactions", "status": "200"}))
	assert.Equal(t, 1.0, counterValue(requests, map[string]string{"route": "unmatched", "status": "404"}))

	duration := findMetricFamily(mfs, "salesdash_http_request_duration_seconds")
	require.NotNil(t, duration)
	assert.Len(t, duration.GetMetric(), 3)
}

func TestSeed_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewSeed(reg)

	s.ObserveRun(nil, 58, 2, 1, 150*time.Millisecond)
	s.ObserveRun(errors.New("feed unavailable"), 0, 0, 0, time.Second)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	runs := findMetricFamily(mfs, "salesdash_seed_runs_total")
	require.NotNil(t, runs)
	assert.Equal(t, 1.0, counterValue(runs, map[string]string{"result": "success"}))
	assert.Equal(t, 1.0, counterValue(runs, map[string]string{"result": "failure"}))

	records := findMetricFamily(mfs, "salesdash_seed_records_total")
	require.NotNil(t, records)
	assert.Equal(t, 58.0, counterValue(records, map[string]string{"outcome": "inserted"}))
	assert.Equal(t, 2.0, counterValue(records, map[string]string{"outcome": "skipped"}))
	assert.Equal(t, 1.0, counterValue(records, map[string]string{"outcome": "rejected"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.runs.WithLabelValues("success")))
	assert.Equal(t, 1, testutil.CollectAndCount(s.duration))
}

func TestNilRegistererIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewHTTP(nil).Observe("/", http.MethodGet, http.StatusOK, time.Millisecond)
		NewSeed(nil).ObserveRun(nil, 1, 0, 0, time.Millisecond)

		var h *HTTP
		h.Observe("/", http.MethodGet, http.StatusOK, time.Millisecond)

		var s *Seed
		s.ObserveRun(nil, 1, 0, 0, time.Millisecond)
	})
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}

	return nil
}

// counterValue sums every series of mf whose labels include want.
func counterValue(mf *dto.MetricFamily, want map[string]string) float64 {
	var total float64

	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), want) {
			total += metric.GetCounter().GetValue()
		}
	}

	return total
}

func matchesLabels(labels []*dto.LabelPair, want map[string]string) bool {
	matched := 0

	for _, l := range labels {
		if v, ok := want[l.GetName()]; ok && v == l.GetValue() {
			matched++
		}
	}

	return matched == len(want)
}
