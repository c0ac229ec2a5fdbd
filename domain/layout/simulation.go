// Package layout assigns 2D positions to subgraph nodes with an iterative
// force-directed simulation: pairwise repulsion, edge springs, weak
// centering gravity and an anchored center node. The simulation streams
// frames until the total kinetic energy falls under a threshold or a tick
// budget runs out, and cancels cooperatively between ticks.
package layout

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"kith-backend/domain/core/aggregates"
)

// minSeparation avoids singular repulsion when two nodes coincide.
const minSeparation = 0.01

type simNode struct {
	id       string
	pos      r2.Vec
	vel      r2.Vec
	anchored bool
}

type spring struct {
	a, b int
}

// Simulation is one run of the layout engine over a fixed subgraph. It is
// stepped either by Run (frame-driven) or StepOnce (deterministic tests);
// the two must not be mixed on the same instance.
type Simulation struct {
	mu         sync.Mutex
	generation uint64
	nodes      []*simNode
	index      map[string]int
	springs    []spring
	tuning     Tuning
	logger     *zap.Logger

	tick     int
	energy   float64
	frozen   bool
	diverged bool
}

// NewSimulation builds a simulation for the subgraph. Nodes present in
// previous keep their prior position as the initial condition; only new
// nodes are ring-seeded, so small filter changes do not make the whole
// graph jump. The subgraph's center (if any) is anchored toward the origin
// with a force stronger than ordinary gravity.
func NewSimulation(sub *aggregates.Subgraph, previous Snapshot, generation uint64, tuning Tuning, logger *zap.Logger) *Simulation {
	if logger == nil {
		logger = zap.NewNop()
	}
	tuning = tuning.normalized()

	s := &Simulation{
		generation: generation,
		index:      make(map[string]int),
		tuning:     tuning,
		logger:     logger,
	}

	centerKey := ""
	if c := sub.CenterID(); c != nil {
		centerKey = c.String()
	}

	ids := sub.NodeIDs()
	var fresh []int
	for _, id := range ids {
		key := id.String()
		n := &simNode{id: key, anchored: key == centerKey}
		if pos, ok := previous[key]; ok {
			n.pos = pos
		} else if n.anchored {
			// A center with no history starts where it will be anchored.
			n.pos = r2.Vec{}
		} else {
			fresh = append(fresh, len(s.nodes))
		}
		s.index[key] = len(s.nodes)
		s.nodes = append(s.nodes, n)
	}
	s.seedRing(fresh)

	for _, edge := range sub.Edges() {
		a, okA := s.index[edge.SourceID.String()]
		b, okB := s.index[edge.TargetID.String()]
		if okA && okB {
			s.springs = append(s.springs, spring{a: a, b: b})
		}
	}

	if len(s.nodes) == 0 {
		s.frozen = true
	}
	return s
}

// seedRing places nodes without a previous position on a ring around the
// origin. Placement depends only on the sorted node order, keeping layouts
// reproducible.
func (s *Simulation) seedRing(fresh []int) {
	if len(fresh) == 0 {
		return
	}
	radius := s.tuning.SpringLength * 1.5
	for k, i := range fresh {
		angle := 2 * math.Pi * float64(k) / float64(len(fresh))
		s.nodes[i].pos = r2.Vec{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		}
	}
}

// Generation returns the filter generation this simulation serves.
func (s *Simulation) Generation() uint64 {
	return s.generation
}

// Frozen reports whether the simulation has stopped changing positions.
func (s *Simulation) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

// Diverged reports whether the tick budget ran out before the energy
// threshold was reached.
func (s *Simulation) Diverged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diverged
}

// StepOnce advances exactly one physics tick and returns the resulting
// frame. Once frozen, further calls return the final frame unchanged.
func (s *Simulation) StepOnce() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.frozen {
		s.step()
	}
	return s.frameLocked()
}

// Run steps the simulation on the frame interval, handing each frame to
// sink, until it converges, exhausts its tick budget or ctx is cancelled.
// Cancellation is cooperative: the context is checked every frame and no
// frame is emitted after it fires.
func (s *Simulation) Run(ctx context.Context, sink func(Frame)) {
	ticker := time.NewTicker(s.tuning.FrameInterval)
	defer ticker.Stop()

	for {
		s.mu.Lock()
		ticks := s.tuning.TicksPerFrame
		if len(s.nodes) > s.tuning.DegradeNodeCount {
			ticks = 1
		}
		for i := 0; i < ticks && !s.frozen; i++ {
			s.step()
		}
		frame := s.frameLocked()
		done := s.frozen
		s.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		sink(frame)
		if done {
			if s.Diverged() {
				s.logger.Warn("Layout simulation force-frozen without convergence",
					zap.Uint64("generation", s.generation),
					zap.Int("ticks", frame.Tick),
					zap.Float64("energy", frame.Energy),
				)
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Snapshot returns a copy of the current positions for seeding the next
// simulation.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(Snapshot, len(s.nodes))
	for _, n := range s.nodes {
		snap[n.id] = n.pos
	}
	return snap
}

// step applies one tick of forces and integration. Caller holds s.mu.
func (s *Simulation) step() {
	t := s.tuning
	forces := make([]r2.Vec, len(s.nodes))

	// Pairwise repulsion, magnitude Repulsion / d^2.
	for i := 0; i < len(s.nodes); i++ {
		for j := i + 1; j < len(s.nodes); j++ {
			delta := r2.Sub(s.nodes[i].pos, s.nodes[j].pos)
			dist := r2.Norm(delta)
			if dist < minSeparation {
				// Coincident nodes get a deterministic nudge apart.
				delta = r2.Vec{X: minSeparation, Y: 0}
				dist = minSeparation
			}
			push := r2.Scale(t.Repulsion/(dist*dist*dist), delta)
			forces[i] = r2.Add(forces[i], push)
			forces[j] = r2.Sub(forces[j], push)
		}
	}

	// Edge springs toward the rest length.
	for _, sp := range s.springs {
		delta := r2.Sub(s.nodes[sp.b].pos, s.nodes[sp.a].pos)
		dist := r2.Norm(delta)
		if dist < minSeparation {
			continue
		}
		stretch := dist - t.SpringLength
		pull := r2.Scale(t.SpringStrength*stretch/dist, delta)
		forces[sp.a] = r2.Add(forces[sp.a], pull)
		forces[sp.b] = r2.Sub(forces[sp.b], pull)
	}

	// Centering gravity; the anchored center gets the stronger pull.
	for i, n := range s.nodes {
		g := t.Gravity
		if n.anchored {
			g = t.AnchorStrength
		}
		forces[i] = r2.Sub(forces[i], r2.Scale(g, n.pos))
	}

	// Damped Euler integration.
	var energy float64
	for i, n := range s.nodes {
		n.vel = r2.Scale(t.Damping, r2.Add(n.vel, r2.Scale(t.TimeStep, forces[i])))
		n.pos = r2.Add(n.pos, r2.Scale(t.TimeStep, n.vel))
		energy += r2.Norm2(n.vel)
	}
	s.energy = energy
	s.tick++

	if energy < t.EnergyThreshold {
		s.frozen = true
	} else if s.tick >= t.MaxTicks {
		s.frozen = true
		s.diverged = true
	}
}

// frameLocked builds the current frame. Caller holds s.mu.
func (s *Simulation) frameLocked() Frame {
	positions := make(map[string]Position, len(s.nodes))
	for _, n := range s.nodes {
		positions[n.id] = Position{X: n.pos.X, Y: n.pos.Y}
	}
	return Frame{
		Generation: s.generation,
		Tick:       s.tick,
		Energy:     s.energy,
		Frozen:     s.frozen,
		Positions:  positions,
	}
}
