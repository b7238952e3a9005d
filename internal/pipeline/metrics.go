package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the extraction pipeline's operational counters.
type Metrics struct {
	runs     *prometheus.CounterVec
	rows     *prometheus.CounterVec
	warnings *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediapulse_extraction_runs_total",
			Help: "Extraction runs by campaign and outcome.",
		}, []string{"campaign", "status"}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediapulse_extracted_rows_total",
			Help: "Canonical records produced per campaign.",
		}, []string{"campaign"}),
		warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediapulse_extraction_warnings_total",
			Help: "Non-fatal extraction degradations by kind.",
		}, []string{"campaign", "kind"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mediapulse_extraction_duration_seconds",
			Help:    "Wall time of extraction runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"campaign"}),
	}
}

func (m *Metrics) observeRun(campaign, status string, seconds float64, records int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(campaign, status).Inc()
	m.duration.WithLabelValues(campaign).Observe(seconds)
	m.rows.WithLabelValues(campaign).Add(float64(records))
}

func (m *Metrics) observeWarning(campaign, kind string) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(campaign, kind).Inc()
}
