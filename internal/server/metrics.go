package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics are registered on a per-server registry so several servers, as in
// tests, never collide on the default one.
type metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	issues          *prometheus.CounterVec
	backtestTrades  prometheus.Histogram
	backtestBars    prometheus.Counter
	compilations    *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argo_strategy",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "argo_strategy",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"route"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argo_strategy",
			Subsystem: "validator",
			Name:      "issues_total",
			Help:      "Validation issues reported, by severity and category",
		}, []string{"severity", "category"}),
		backtestTrades: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "argo_strategy",
			Subsystem: "backtest",
			Name:      "trades",
			Help:      "Trades produced per completed backtest",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		backtestBars: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "argo_strategy",
			Subsystem: "backtest",
			Name:      "bars_total",
			Help:      "Bars interpreted by completed backtests",
		}),
		compilations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "argo_strategy",
			Subsystem: "codegen",
			Name:      "compilations_total",
			Help:      "Compilations by dialect and outcome",
		}, []string{"dialect", "status"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.issues,
		m.backtestTrades,
		m.backtestBars,
		m.compilations,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// middleware records the count and latency of every routed request under
// its route template.
func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
