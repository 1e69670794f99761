// Package telemetry exposes the engine's Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the registry of decision-pipeline instruments. A single
// instance is shared by the orchestrator and the HTTP server.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	PicksEmitted     prometheus.Counter
	StakeUnits       prometheus.Histogram
	ConsensusScore   prometheus.Histogram
	ModelSignals     *prometheus.CounterVec
}

// NewMetrics builds and registers the instrument set on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantum",
		Name:      "analyses_total",
		Help:      "Fixture analyses by outcome (pick, skip, timeout, error).",
	}, []string{"outcome"})

	m.AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quantum",
		Name:      "analysis_duration_seconds",
		Help:      "Wall-clock duration of one fixture analysis.",
		Buckets:   prometheus.DefBuckets,
	})

	m.PicksEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quantum",
		Name:      "picks_emitted_total",
		Help:      "Picks that survived every validator and carried a stake.",
	})

	m.StakeUnits = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quantum",
		Name:      "stake_units",
		Help:      "Stake size of emitted picks in units.",
		Buckets:   []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5},
	})

	m.ConsensusScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quantum",
		Name:      "consensus_score",
		Help:      "Weighted positive share of the seven-model vote.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	m.ModelSignals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantum",
		Name:      "model_signals_total",
		Help:      "Signals cast, by model and signal.",
	}, []string{"model", "signal"})

	m.registry.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.PicksEmitted,
		m.StakeUnits,
		m.ConsensusScore,
		m.ModelSignals,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
