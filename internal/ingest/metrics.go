package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricRowsTotal    = "engagemix_ingest_rows_total"
	MetricRowErrors    = "engagemix_ingest_row_errors_total"
	MetricInteractions = "engagemix_ingest_interactions_total"
	MetricRunDuration  = "engagemix_ingest_run_duration_seconds"
	MetricLastRun      = "engagemix_ingest_last_run_timestamp_seconds"
)

// Row outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Metrics contains Prometheus metrics for ingestion runs.
type Metrics struct {
	rows         *prometheus.CounterVec
	rowErrors    *prometheus.CounterVec
	interactions prometheus.Counter
	runDuration  prometheus.Histogram
	lastRun      prometheus.Gauge
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRowsTotal,
			Help: "Total number of log rows processed, by outcome",
		}, []string{"outcome"}),
		rowErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRowErrors,
			Help: "Total number of rejected rows, by error kind",
		}, []string{"kind"}),
		interactions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricInteractions,
			Help: "Total number of interactions linked into the catalog",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRunDuration,
			Help:    "Histogram of ingestion run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastRun,
			Help: "Unix time of the last ingestion run that read its source to the end",
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncAccepted counts an accepted row and its interaction.
func (m *Metrics) IncAccepted() {
	m.rows.WithLabelValues(OutcomeAccepted).Inc()
	m.interactions.Inc()
}

// IncRejected counts a rejected row under its error kind.
func (m *Metrics) IncRejected(kind string) {
	m.rows.WithLabelValues(OutcomeRejected).Inc()
	m.rowErrors.WithLabelValues(kind).Inc()
}

// ObserveRun records a completed run.
func (m *Metrics) ObserveRun(seconds float64, finishedAtUnix float64) {
	m.runDuration.Observe(seconds)
	m.lastRun.Set(finishedAtUnix)
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rows,
		m.rowErrors,
		m.interactions,
		m.runDuration,
		m.lastRun,
	}
}
