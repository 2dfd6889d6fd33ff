package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a viewer session.
type Metrics struct {
	RowsIngested  prometheus.Counter
	RowsSkipped   prometheus.Counter
	SessionLoaded prometheus.Gauge

	// Recompute metrics.
	Recomputes        prometheus.Counter
	RecomputeDuration prometheus.Histogram
	VisiblePoints     *prometheus.GaugeVec // labels: tier={low,medium,high,extreme}

	Exports         prometheus.Counter
	FramesPublished *prometheus.CounterVec // labels: renderer, outcome={success,error}
}

// NewMetrics creates and registers all viewer metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsIngested,
		m.RowsSkipped,
		m.SessionLoaded,
		m.Recomputes,
		m.RecomputeDuration,
		m.VisiblePoints,
		m.Exports,
		m.FramesPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_altitude",
			Name:      "rows_ingested_total",
			Help:      "Rows accepted into the point collection.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_altitude",
			Name:      "rows_skipped_total",
			Help:      "Rows dropped because lat, lon or alt was not a finite number.",
		}),
		SessionLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_altitude",
			Name:      "session_loaded",
			Help:      "1 when the initial load succeeded, 0 otherwise.",
		}),
		Recomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_altitude",
			Name:      "recomputes_total",
			Help:      "Visible subset recomputations.",
		}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_altitude",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of a filter, summary and frame recompute.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		VisiblePoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "storm_altitude",
			Name:      "visible_points",
			Help:      "Points in the visible subset by altitude tier.",
		}, []string{"tier"}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_altitude",
			Name:      "exports_total",
			Help:      "CSV exports of the visible subset.",
		}),
		FramesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_altitude",
			Name:      "frames_published_total",
			Help:      "Render frames handed to rendering collaborators by renderer and outcome.",
		}, []string{"renderer", "outcome"}),
	}
}
