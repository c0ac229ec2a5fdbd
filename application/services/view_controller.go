// Package services hosts the application-level orchestration around the
// ego-network engine.
package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"kith-backend/application/ports"
	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/valueobjects"
	"kith-backend/domain/egonet"
	"kith-backend/domain/layout"
	apperrors "kith-backend/pkg/errors"
	"kith-backend/pkg/observability"
)

// ViewPhase describes what the rendering layer should show.
type ViewPhase string

const (
	// PhaseLoading is shown while a catalog fetch is outstanding.
	PhaseLoading ViewPhase = "loading"
	// PhaseReady means a subgraph was extracted and frames will follow.
	PhaseReady ViewPhase = "ready"
	// PhaseEmpty means extraction produced zero nodes; an explicit empty
	// state, not an error.
	PhaseEmpty ViewPhase = "empty"
	// PhaseFailed means the catalog fetch failed; the previously rendered
	// subgraph stays visible and a retry affordance is offered.
	PhaseFailed ViewPhase = "failed"
)

// ViewEvent announces a phase change for one filter generation.
type ViewEvent struct {
	Generation uint64    `json:"generation"`
	Phase      ViewPhase `json:"phase"`
	Filter     string    `json:"filter"`
	NodeCount  int       `json:"node_count"`
	EdgeCount  int       `json:"edge_count"`
	Retryable  bool      `json:"retryable,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// FrameSink receives layout frames and view events. The controller only
// forwards frames belonging to the current generation, so sinks never see
// output of a superseded simulation.
type FrameSink interface {
	PublishFrame(layout.Frame)
	PublishView(ViewEvent)
}

// ViewController owns the filter state and drives the
// fetch → extract → simulate pipeline. It is the single writer of filter
// state; the simulation is the single writer of positions; the sink only
// reads. Every successful Apply/Recenter/Reset bumps a generation, cancels
// the in-flight work of older generations before the new simulation's first
// tick, and reseeds the new simulation from the latest positions so shared
// nodes do not jump.
type ViewController struct {
	catalog ports.Catalog
	sink    FrameSink
	metrics *observability.Metrics
	logger  *zap.Logger

	generation atomic.Uint64

	mu            sync.Mutex
	baseCtx       context.Context
	tuning        layout.Tuning
	filter        egonet.Filter
	cancel        context.CancelFunc
	sim           *layout.Simulation
	current       *aggregates.Subgraph
	lastPositions layout.Snapshot
}

// NewViewController creates a controller in the default filter state.
// Nothing is fetched until Start or the first transition.
func NewViewController(
	catalog ports.Catalog,
	sink FrameSink,
	tuning layout.Tuning,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ViewController {
	return &ViewController{
		catalog: catalog,
		sink:    sink,
		metrics: metrics,
		logger:  logger,
		baseCtx: context.Background(),
		tuning:  tuning,
		filter:  egonet.DefaultFilter(),
	}
}

// Start binds the controller to a lifecycle context and loads the initial
// whole-network view.
func (c *ViewController) Start(ctx context.Context) error {
	c.mu.Lock()
	c.baseCtx = ctx
	f := c.filter
	c.mu.Unlock()
	return c.transition(f)
}

// Filter returns the current filter state.
func (c *ViewController) Filter() egonet.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// CurrentSubgraph returns the last successfully extracted subgraph, which
// stays in place across failed fetches.
func (c *ViewController) CurrentSubgraph() *aggregates.Subgraph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Generation returns the current filter generation.
func (c *ViewController) Generation() uint64 {
	return c.generation.Load()
}

// Apply replaces the filter state and rederives the view.
func (c *ViewController) Apply(filter egonet.Filter) error {
	return c.transition(filter)
}

// Reset restores the default filter (no center, depth 2, no category).
func (c *ViewController) Reset() error {
	return c.transition(egonet.DefaultFilter())
}

// Recenter keeps depth and category and moves the center to the given
// person, the "drill into a neighborhood" operation wired to node clicks.
func (c *ViewController) Recenter(id valueobjects.PersonID) error {
	c.mu.Lock()
	next := c.filter.Recenter(id)
	c.mu.Unlock()
	return c.transition(next)
}

// Retry re-runs the current filter after a failed fetch.
func (c *ViewController) Retry() error {
	c.mu.Lock()
	f := c.filter
	c.mu.Unlock()
	return c.transition(f)
}

// SetTuning swaps the simulation tuning; it applies from the next
// transition onward. Called by the config hot-reload watcher.
func (c *ViewController) SetTuning(t layout.Tuning) {
	c.mu.Lock()
	c.tuning = t
	c.mu.Unlock()
}

// Stop cancels any in-flight fetch or simulation.
func (c *ViewController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// transition is the single state-machine step: validate, supersede the old
// generation, then fetch/extract/simulate for the new one.
func (c *ViewController) transition(next egonet.Filter) error {
	if err := next.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	c.mu.Lock()
	// Cancel before the new simulation can tick; a superseded simulation
	// must stop cleanly rather than race the new one.
	if c.cancel != nil {
		c.cancel()
	}
	if c.sim != nil {
		// Carry the in-flight positions forward even when the old run had
		// not converged, so shared nodes stay continuous.
		c.lastPositions = c.sim.Snapshot()
		c.sim = nil
	}
	gen := c.generation.Add(1)
	c.filter = next
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancel = cancel
	prev := c.lastPositions
	tuning := c.tuning
	c.mu.Unlock()

	c.sink.PublishView(ViewEvent{
		Generation: gen,
		Phase:      PhaseLoading,
		Filter:     next.EncodeString(),
	})

	go c.load(ctx, gen, next, prev, tuning)
	return nil
}

func (c *ViewController) load(ctx context.Context, gen uint64, filter egonet.Filter, prev layout.Snapshot, tuning layout.Tuning) {
	network, err := c.catalog.Snapshot(ctx)
	if err != nil {
		c.metrics.CatalogFailures.Inc()
		if ctx.Err() != nil || gen != c.generation.Load() {
			// A late failure of a superseded query is simply discarded.
			return
		}
		c.logger.Error("Catalog fetch failed, keeping last rendered view",
			zap.Uint64("generation", gen),
			zap.Error(err),
		)
		fetchErr := apperrors.NewDataFetchError(err)
		event := ViewEvent{
			Generation: gen,
			Phase:      PhaseFailed,
			Filter:     filter.EncodeString(),
			Retryable:  fetchErr.Retryable,
			Error:      fetchErr.Message,
		}
		if current := c.CurrentSubgraph(); current != nil {
			event.NodeCount = current.NodeCount()
			event.EdgeCount = current.EdgeCount()
		}
		c.sink.PublishView(event)
		return
	}
	if ctx.Err() != nil || gen != c.generation.Load() {
		// Late success of a superseded query: never applied.
		return
	}

	start := time.Now()
	sub := egonet.Extract(network, filter)
	c.metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	c.metrics.SubgraphNodes.Set(float64(sub.NodeCount()))
	c.metrics.SubgraphEdges.Set(float64(sub.EdgeCount()))

	c.mu.Lock()
	if gen != c.generation.Load() {
		c.mu.Unlock()
		return
	}
	c.current = sub
	sim := layout.NewSimulation(sub, prev, gen, tuning, c.logger)
	c.sim = sim
	c.mu.Unlock()

	phase := PhaseReady
	if sub.IsEmpty() {
		phase = PhaseEmpty
	}
	c.sink.PublishView(ViewEvent{
		Generation: gen,
		Phase:      phase,
		Filter:     filter.EncodeString(),
		NodeCount:  sub.NodeCount(),
		EdgeCount:  sub.EdgeCount(),
	})

	lastTick := 0
	sim.Run(ctx, func(frame layout.Frame) {
		if frame.Generation != c.generation.Load() {
			c.metrics.StaleFramesDropped.Inc()
			return
		}
		c.metrics.SimulationTicks.Add(float64(frame.Tick - lastTick))
		lastTick = frame.Tick
		c.sink.PublishFrame(frame)
	})

	if sim.Frozen() && gen == c.generation.Load() {
		c.mu.Lock()
		if gen == c.generation.Load() {
			c.lastPositions = sim.Snapshot()
		}
		c.mu.Unlock()
		c.metrics.ConvergenceTicks.Observe(float64(lastTick))
	}
}
