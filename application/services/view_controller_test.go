package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kith-backend/domain/core/aggregates"
	"kith-backend/domain/core/valueobjects"
	"kith-backend/domain/egonet"
	"kith-backend/domain/layout"
	"kith-backend/infrastructure/persistence/memory"
	"kith-backend/pkg/observability"
)

// recordingSink captures everything the controller publishes.
type recordingSink struct {
	mu     sync.Mutex
	frames []layout.Frame
	events []ViewEvent
}

func (s *recordingSink) PublishFrame(frame layout.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

func (s *recordingSink) PublishView(event ViewEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) lastEventWithPhase(phase ViewPhase) (ViewEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Phase == phase {
			return s.events[i], true
		}
	}
	return ViewEvent{}, false
}

func (s *recordingSink) lastFrame() (layout.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return layout.Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// flakyCatalog wraps another catalog and fails on demand.
type flakyCatalog struct {
	inner *memory.Catalog
	mu    sync.Mutex
	fail  bool
}

func (c *flakyCatalog) setFail(fail bool) {
	c.mu.Lock()
	c.fail = fail
	c.mu.Unlock()
}

func (c *flakyCatalog) Snapshot(ctx context.Context) (*aggregates.Network, error) {
	c.mu.Lock()
	fail := c.fail
	c.mu.Unlock()
	if fail {
		return nil, errors.New("catalog unavailable")
	}
	return c.inner.Snapshot(ctx)
}

func testDataset() memory.Dataset {
	return memory.Dataset{
		RelationshipTypes: []memory.TypeRecord{
			{Name: "Friend", Category: "social"},
			{Name: "Colleague", Category: "professional"},
		},
		Persons: []memory.PersonRecord{
			{ID: "alice", DisplayName: "Alice"},
			{ID: "bob", DisplayName: "Bob"},
			{ID: "carol", DisplayName: "Carol"},
			{ID: "dave", DisplayName: "Dave"},
		},
		Relationships: []memory.RelationshipRecord{
			{SourceID: "alice", TargetID: "bob", RelationshipType: "Friend"},
			{SourceID: "bob", TargetID: "carol", RelationshipType: "Friend"},
			{SourceID: "carol", TargetID: "dave", RelationshipType: "Colleague"},
		},
	}
}

func fastTuning() layout.Tuning {
	tuning := layout.DefaultTuning()
	tuning.FrameInterval = time.Millisecond
	tuning.MaxTicks = 400
	return tuning
}

func newTestController(t *testing.T, catalog *flakyCatalog) (*ViewController, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	controller := NewViewController(catalog, sink, fastTuning(), metrics, zap.NewNop())
	return controller, sink
}

func awaitPhase(t *testing.T, sink *recordingSink, phase ViewPhase) ViewEvent {
	t.Helper()
	var event ViewEvent
	require.Eventually(t, func() bool {
		e, ok := sink.lastEventWithPhase(phase)
		if ok {
			event = e
		}
		return ok
	}, 5*time.Second, 5*time.Millisecond, "phase %s never published", phase)
	return event
}

func awaitFrozenFrame(t *testing.T, sink *recordingSink, generation uint64) layout.Frame {
	t.Helper()
	var frame layout.Frame
	require.Eventually(t, func() bool {
		f, ok := sink.lastFrame()
		if ok && f.Frozen && f.Generation == generation {
			frame = f
			return true
		}
		return false
	}, 5*time.Second, 5*time.Millisecond, "generation %d never froze", generation)
	return frame
}

func TestViewController_StartPublishesReadyAndConverges(t *testing.T) {
	catalog := &flakyCatalog{inner: memory.NewCatalogFromDataset(testDataset())}
	controller, sink := newTestController(t, catalog)
	defer controller.Stop()

	require.NoError(t, controller.Start(context.Background()))

	ready := awaitPhase(t, sink, PhaseReady)
	assert.Equal(t, 4, ready.NodeCount)
	assert.Equal(t, 3, ready.EdgeCount)
	assert.Equal(t, "", ready.Filter)

	frame := awaitFrozenFrame(t, sink, controller.Generation())
	assert.Len(t, frame.Positions, 4)
}

func TestViewController_ApplySupersedesOlderGeneration(t *testing.T) {
	catalog := &flakyCatalog{inner: memory.NewCatalogFromDataset(testDataset())}
	controller, sink := newTestController(t, catalog)
	defer controller.Stop()

	require.NoError(t, controller.Start(context.Background()))
	awaitPhase(t, sink, PhaseReady)

	// Two rapid transitions; only the second may win.
	first, err := egonet.DecodeFilterString("center=bob&depth=1")
	require.NoError(t, err)
	second, err := egonet.DecodeFilterString("center=carol&depth=1")
	require.NoError(t, err)
	require.NoError(t, controller.Apply(first))
	require.NoError(t, controller.Apply(second))

	finalGen := controller.Generation()
	frame := awaitFrozenFrame(t, sink, finalGen)

	// carol's depth-1 neighborhood is bob, carol, dave.
	assert.Len(t, frame.Positions, 3)
	assert.Contains(t, frame.Positions, "carol")
	assert.Contains(t, frame.Positions, "dave")

	current := controller.CurrentSubgraph()
	require.NotNil(t, current)
	require.NotNil(t, current.CenterID())
	assert.Equal(t, "carol", current.CenterID().String())
}

func TestViewController_FetchFailureKeepsLastView(t *testing.T) {
	catalog := &flakyCatalog{inner: memory.NewCatalogFromDataset(testDataset())}
	controller, sink := newTestController(t, catalog)
	defer controller.Stop()

	require.NoError(t, controller.Start(context.Background()))
	awaitPhase(t, sink, PhaseReady)
	awaitFrozenFrame(t, sink, controller.Generation())

	catalog.setFail(true)
	require.NoError(t, controller.Retry())

	failed := awaitPhase(t, sink, PhaseFailed)
	assert.True(t, failed.Retryable)
	assert.NotEmpty(t, failed.Error)
	// The previously rendered subgraph stays in place.
	assert.Equal(t, 4, failed.NodeCount)
	require.NotNil(t, controller.CurrentSubgraph())

	// A retry after recovery restores the ready flow.
	catalog.setFail(false)
	require.NoError(t, controller.Retry())
	awaitFrozenFrame(t, sink, controller.Generation())
}

func TestViewController_RecenterPreservesDepthAndCategory(t *testing.T) {
	catalog := &flakyCatalog{inner: memory.NewCatalogFromDataset(testDataset())}
	controller, sink := newTestController(t, catalog)
	defer controller.Stop()

	require.NoError(t, controller.Start(context.Background()))
	filter, err := egonet.DecodeFilterString("depth=3&category=social")
	require.NoError(t, err)
	require.NoError(t, controller.Apply(filter))
	awaitFrozenFrame(t, sink, controller.Generation())

	target, err := valueobjects.NewPersonIDFromString("bob")
	require.NoError(t, err)
	require.NoError(t, controller.Recenter(target))

	got := controller.Filter()
	assert.Equal(t, 3, got.Depth)
	require.NotNil(t, got.Category)
	assert.Equal(t, "social", got.Category.String())
	require.NotNil(t, got.CenterID)
	assert.Equal(t, "bob", got.CenterID.String())
}

func TestViewController_SharedNodesKeepPositionsAcrossTransitions(t *testing.T) {
	catalog := &flakyCatalog{inner: memory.NewCatalogFromDataset(testDataset())}
	controller, sink := newTestController(t, catalog)
	defer controller.Stop()

	require.NoError(t, controller.Start(context.Background()))
	before := awaitFrozenFrame(t, sink, controller.Generation())

	// Slow the next run's integration right down so the first emitted frame
	// sits within a whisker of the seed positions.
	slow := fastTuning()
	slow.TimeStep = 0.01
	slow.TicksPerFrame = 1
	controller.SetTuning(slow)

	filter, err := egonet.DecodeFilterString("center=bob&depth=1")
	require.NoError(t, err)
	require.NoError(t, controller.Apply(filter))
	gen := controller.Generation()

	// The first frame of the new generation must reuse bob's converged
	// position; it may only move from there through simulation ticks.
	var firstFrame layout.Frame
	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		for _, f := range sink.frames {
			if f.Generation == gen {
				firstFrame = f
				return true
			}
		}
		return false
	}, 5*time.Second, 5*time.Millisecond)

	require.Contains(t, firstFrame.Positions, "bob")
	prev := before.Positions["bob"]
	got := firstFrame.Positions["bob"]
	assert.InDelta(t, prev.X, got.X, 1)
	assert.InDelta(t, prev.Y, got.Y, 1)
}

func TestViewController_RejectsInvalidFilter(t *testing.T) {
	catalog := &flakyCatalog{inner: memory.NewCatalogFromDataset(testDataset())}
	controller, _ := newTestController(t, catalog)
	defer controller.Stop()

	err := controller.Apply(egonet.Filter{Depth: 0})

	assert.Error(t, err)
}

func TestViewController_EmptyExtractionPublishesEmptyPhase(t *testing.T) {
	catalog := &flakyCatalog{inner: memory.NewCatalogFromDataset(memory.Dataset{})}
	controller, sink := newTestController(t, catalog)
	defer controller.Stop()

	require.NoError(t, controller.Start(context.Background()))

	event := awaitPhase(t, sink, PhaseEmpty)
	assert.Zero(t, event.NodeCount)
	assert.Zero(t, event.EdgeCount)
}
