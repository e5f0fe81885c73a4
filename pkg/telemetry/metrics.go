package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for confgate.
type Metrics struct {
	config MetricsConfig

	// Validation metrics
	validationsTotal   *prometheus.CounterVec
	violationsTotal    *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec

	// Schema set metrics
	schemaReloads   *prometheus.CounterVec
	documentsLoaded prometheus.Gauge

	// Watch metrics
	watchEvents *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of validation runs",
			},
			[]string{"document", "result"},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Total number of violations reported, by kind",
			},
			[]string{"document", "kind"},
		),
		validationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   buckets,
			},
			[]string{"document"},
		),

		schemaReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_reloads_total",
				Help:      "Total number of schema set reloads",
			},
			[]string{"result"},
		),
		documentsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "documents_loaded",
				Help:      "Number of schema documents in the active set",
			},
		),

		watchEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "watch_events_total",
				Help:      "Total number of filesystem events observed in watch mode",
			},
			[]string{"op"},
		),
	}

	registry.MustRegister(
		m.validationsTotal,
		m.violationsTotal,
		m.validationDuration,
		m.schemaReloads,
		m.documentsLoaded,
		m.watchEvents,
	)

	return m, nil
}

// RecordValidation records one validation run against a document.
func (m *Metrics) RecordValidation(document string, valid bool, duration time.Duration) {
	if m.validationsTotal == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.validationsTotal.WithLabelValues(document, result).Inc()
	m.validationDuration.WithLabelValues(document).Observe(duration.Seconds())
}

// RecordViolations adds to the per-kind violation counters.
func (m *Metrics) RecordViolations(document string, counts map[string]int) {
	if m.violationsTotal == nil {
		return
	}
	for kind, n := range counts {
		m.violationsTotal.WithLabelValues(document, kind).Add(float64(n))
	}
}

// RecordSchemaReload records the outcome of a schema set reload.
func (m *Metrics) RecordSchemaReload(ok bool) {
	if m.schemaReloads == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.schemaReloads.WithLabelValues(result).Inc()
}

// SetDocumentsLoaded sets the size of the active schema set.
func (m *Metrics) SetDocumentsLoaded(count int) {
	if m.documentsLoaded == nil {
		return
	}
	m.documentsLoaded.Set(float64(count))
}

// RecordWatchEvent counts a filesystem event seen in watch mode.
func (m *Metrics) RecordWatchEvent(op string) {
	if m.watchEvents == nil {
		return
	}
	m.watchEvents.WithLabelValues(op).Inc()
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't fail the application
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
