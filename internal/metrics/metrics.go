package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obsidianstack/valvecalc/internal/valve"
)

// Collector names.
const (
	CalculationsName = "valvecalc_calculations_total"
	RequestsName     = "valvecalc_http_requests_total"
	LatencyName      = "valvecalc_http_request_duration_milliseconds"
)

// Result label values for CalculationsName.
const (
	ResultOK           = "ok"
	ResultInvalidInput = "invalid_input"
	ResultError        = "error"
)

var latencyBuckets = []float64{1, 5, 25, 100, 500}

// Metrics owns a private registry so several servers (and tests) can coexist
// in one process.
type Metrics struct {
	reg          *prometheus.Registry
	calculations *prometheus.CounterVec
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New builds the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}

	m.calculations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: CalculationsName,
		Help: "Valve calculations partitioned by mode and result.",
	}, []string{"mode", "result"})

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: RequestsName,
		Help: "Number of HTTP requests partitioned by status code, method and route.",
	}, []string{"code", "method", "path"})

	m.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    LatencyName,
		Help:    "Time spent on the request partitioned by status code, method and route.",
		Buckets: latencyBuckets,
	}, []string{"code", "method", "path"})

	m.reg.MustRegister(
		m.calculations, m.requests, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCalculation counts one calculation. err is classified as invalid
// input when it wraps one of the valve sentinel errors.
func (m *Metrics) ObserveCalculation(mode string, err error) {
	m.calculations.WithLabelValues(mode, Result(err)).Inc()
}

// Result maps a calculation error to its result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, valve.ErrInvalidMachineCount),
		errors.Is(err, valve.ErrInvalidSplitPoint),
		errors.Is(err, valve.ErrInvalidRateList),
		errors.Is(err, valve.ErrZeroSuffixSum),
		errors.Is(err, valve.ErrInvalidBypass):
		return ResultInvalidInput
	default:
		return ResultError
	}
}

// Middleware counts requests by chi route pattern, so /api/v1/valves?x=1
// and /api/v1/valves?x=2 share a series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		code := strconv.Itoa(ww.Status())
		m.requests.WithLabelValues(code, r.Method, path).Inc()
		m.latency.WithLabelValues(code, r.Method, path).Observe(float64(time.Since(start).Milliseconds()))
	}
	return http.HandlerFunc(fn)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Calculations returns the calculation counter, labelled by mode and result.
func (m *Metrics) Calculations() *prometheus.CounterVec {
	return m.calculations
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
