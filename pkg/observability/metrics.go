// Package observability exposes the engine's Prometheus instrumentation.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's collectors. Create one per process with
// NewMetrics; tests pass their own registry to keep runs isolated.
type Metrics struct {
	ExtractionDuration prometheus.Histogram
	SubgraphNodes      prometheus.Gauge
	SubgraphEdges      prometheus.Gauge
	SimulationTicks    prometheus.Counter
	ConvergenceTicks   prometheus.Histogram
	StaleFramesDropped prometheus.Counter
	CatalogFailures    prometheus.Counter
}

// NewMetrics creates and registers the engine collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExtractionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kith",
			Subsystem: "egonet",
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting an ego network from the full dataset.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		SubgraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kith",
			Subsystem: "egonet",
			Name:      "subgraph_nodes",
			Help:      "Node count of the most recent extraction.",
		}),
		SubgraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kith",
			Subsystem: "egonet",
			Name:      "subgraph_edges",
			Help:      "Edge count of the most recent extraction.",
		}),
		SimulationTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kith",
			Subsystem: "layout",
			Name:      "simulation_ticks_total",
			Help:      "Physics ticks executed across all simulations.",
		}),
		ConvergenceTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kith",
			Subsystem: "layout",
			Name:      "convergence_ticks",
			Help:      "Ticks needed for a simulation to freeze.",
			Buckets:   prometheus.LinearBuckets(50, 100, 8),
		}),
		StaleFramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kith",
			Subsystem: "layout",
			Name:      "stale_frames_dropped_total",
			Help:      "Frames discarded because their generation was superseded.",
		}),
		CatalogFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kith",
			Subsystem: "catalog",
			Name:      "fetch_failures_total",
			Help:      "Relationship catalog fetches that failed or timed out.",
		}),
	}

	reg.MustRegister(
		m.ExtractionDuration,
		m.SubgraphNodes,
		m.SubgraphEdges,
		m.SimulationTicks,
		m.ConvergenceTicks,
		m.StaleFramesDropped,
		m.CatalogFailures,
	)
	return m
}
