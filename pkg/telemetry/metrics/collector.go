package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains metrics configuration.
type Config struct {
	// Namespace is the metric name prefix. Defaults to "sqlferry".
	Namespace string

	// Subsystem is the metric subsystem. Defaults to "export".
	Subsystem string

	// DurationBuckets are histogram buckets for export wall time in
	// seconds. Defaults cover sub-second probes through long bulk pulls.
	DurationBuckets []float64
}

// Collector records export outcomes as Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	runsTotal  *prometheus.CounterVec
	rowsTotal  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	costTokens prometheus.Histogram
}

// NewCollector creates a collector and registers its metrics with the given
// registry. A nil registry creates a private one.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "sqlferry"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "export"
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800}
	}

	c := &Collector{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of export runs by terminal state",
			},
			[]string{"format", "state"},
		),
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rows_total",
				Help:      "Total number of data rows written",
			},
			[]string{"format"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "duration_seconds",
				Help:      "Export wall time in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"format"},
		),
		costTokens: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_tokens",
				Help:      "Token cost of costed delimited-text exports",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
		),
	}

	registry.MustRegister(c.runsTotal, c.rowsTotal, c.duration, c.costTokens)
	return c
}

// RecordExport records the outcome of one export invocation.
func (c *Collector) RecordExport(format, state string, rows int64, cost int, d time.Duration) {
	c.runsTotal.WithLabelValues(format, state).Inc()
	c.duration.WithLabelValues(format).Observe(d.Seconds())
	if rows > 0 {
		c.rowsTotal.WithLabelValues(format).Add(float64(rows))
	}
	if cost > 0 {
		c.costTokens.Observe(float64(cost))
	}
}
