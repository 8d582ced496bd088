package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iwvelando/premium-forecast/internal/planner"
	"github.com/iwvelando/premium-forecast/pkg/strategy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PlansGenerated  prometheus.Counter
	RiskAlerts      *prometheus.CounterVec
}

// NewMetrics creates the metrics on a private registry so that several
// handlers can coexist in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "premium_forecast_requests_total",
				Help: "Total number of API requests by endpoint and status code",
			},
			[]string{"endpoint", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "premium_forecast_request_duration_seconds",
				Help:    "Duration of API requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"endpoint"},
		),

		PlansGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "premium_forecast_plans_generated_total",
				Help: "Total number of monthly plans generated",
			},
		),

		RiskAlerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "premium_forecast_risk_alerts_total",
				Help: "Total number of risk alerts raised by alert code",
			},
			[]string{"code"},
		),
	}

	for _, code := range strategy.AlertCodes {
		m.RiskAlerts.WithLabelValues(string(code))
	}

	m.registry.MustRegister(m.Requests, m.RequestDuration, m.PlansGenerated, m.RiskAlerts)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveForecasts counts the plans and alerts of a completed run.
func (m *Metrics) ObserveForecasts(results []planner.Forecast) {
	for _, f := range results {
		m.PlansGenerated.Add(float64(len(f.Plans)))
		for _, alert := range f.Alerts {
			m.RiskAlerts.WithLabelValues(string(strategy.ThresholdAlertCode(alert))).Inc()
		}
	}
}

// ObserveDailyCheck counts the alerts of a daily check.
func (m *Metrics) ObserveDailyCheck(report strategy.DailyRiskReport) {
	for _, alert := range report.Alerts {
		code := alert.Code
		if code == "" {
			code = strategy.CodeOther
		}
		m.RiskAlerts.WithLabelValues(string(code)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records the request count and latency of next under endpoint.
func (m *Metrics) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		m.Requests.WithLabelValues(endpoint, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
