package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kadeface/ai-class-scheduling/internal/scheduling"
)

// MetricsService encapsulates Prometheus instrumentation for scheduling runs
// and the HTTP surface.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	runTotal      *prometheus.CounterVec
	runDuration   prometheus.Histogram
	runIterations prometheus.Histogram
	assignedVars  prometheus.Histogram
	scheduleScore prometheus.Gauge
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	runTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduling_runs_total",
		Help: "Total scheduling runs by outcome",
	}, []string{"outcome"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduling_run_duration_seconds",
		Help:    "Wall-clock duration of scheduling runs",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	})

	runIterations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduling_run_unassigned_variables",
		Help:    "Unassigned variables left per run",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	assignedVars := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduling_run_assigned_variables",
		Help:    "Assigned variables per run",
		Buckets: []float64{0, 10, 50, 100, 250, 500, 1000, 2500},
	})

	scheduleScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduling_last_score",
		Help: "Quality score of the most recent scheduling run",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, runTotal, runDuration, runIterations, assignedVars, scheduleScore, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runTotal:        runTotal,
		runDuration:     runDuration,
		runIterations:   runIterations,
		assignedVars:    assignedVars,
		scheduleScore:   scheduleScore,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveRequest records one HTTP request.
func (m *MetricsService) ObserveRequest(method, path, status string, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
	m.requestTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveRun records the outcome of one scheduling run.
func (m *MetricsService) ObserveRun(result *scheduling.Result, elapsed time.Duration) {
	outcome := "failed"
	switch {
	case result == nil:
	case result.Success && result.UnassignedVariables == 0:
		outcome = "complete"
	case result.Success:
		outcome = "partial"
	}
	m.runTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(elapsed.Seconds())
	if result != nil {
		m.runIterations.Observe(float64(result.UnassignedVariables))
		m.assignedVars.Observe(float64(result.AssignedVariables))
		m.scheduleScore.Set(float64(result.TotalScore))
	}
}
