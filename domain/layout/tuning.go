package layout

import "time"

// Tuning holds the physics and scheduling constants of the simulation.
// Values are hot-reloadable through the config watcher; zero fields fall
// back to the defaults below.
type Tuning struct {
	// Repulsion scales the pairwise anti-overlap force (magnitude
	// Repulsion / distance^2).
	Repulsion float64 `yaml:"repulsion"`
	// SpringLength is the rest length of edge springs.
	SpringLength float64 `yaml:"spring_length"`
	// SpringStrength scales the edge spring force.
	SpringStrength float64 `yaml:"spring_strength"`
	// Gravity pulls every node weakly toward the viewport center so the
	// graph cannot drift off-screen.
	Gravity float64 `yaml:"gravity"`
	// AnchorStrength pulls the designated center node toward the origin,
	// stronger than ordinary gravity.
	AnchorStrength float64 `yaml:"anchor_strength"`
	// Damping is the per-tick velocity decay factor.
	Damping float64 `yaml:"damping"`
	// TimeStep is the integration step.
	TimeStep float64 `yaml:"time_step"`
	// EnergyThreshold is the total kinetic energy below which the layout
	// is considered converged.
	EnergyThreshold float64 `yaml:"energy_threshold"`
	// MaxTicks bounds the simulation regardless of convergence.
	MaxTicks int `yaml:"max_ticks"`
	// TicksPerFrame is how many physics ticks run per emitted frame.
	TicksPerFrame int `yaml:"ticks_per_frame"`
	// DegradeNodeCount is the subgraph size beyond which the engine drops
	// to one tick per frame to keep interaction responsive.
	DegradeNodeCount int `yaml:"degrade_node_count"`
	// FrameInterval is the wall-clock spacing of emitted frames.
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		Repulsion:        6000,
		SpringLength:     120,
		SpringStrength:   0.08,
		Gravity:          0.01,
		AnchorStrength:   0.4,
		Damping:          0.85,
		TimeStep:         1,
		EnergyThreshold:  0.05,
		MaxTicks:         600,
		TicksPerFrame:    4,
		DegradeNodeCount: 200,
		FrameInterval:    16 * time.Millisecond,
	}
}

// normalized fills zero-valued fields from the defaults so partial tuning
// files stay usable.
func (t Tuning) normalized() Tuning {
	d := DefaultTuning()
	if t.Repulsion <= 0 {
		t.Repulsion = d.Repulsion
	}
	if t.SpringLength <= 0 {
		t.SpringLength = d.SpringLength
	}
	if t.SpringStrength <= 0 {
		t.SpringStrength = d.SpringStrength
	}
	if t.Gravity <= 0 {
		t.Gravity = d.Gravity
	}
	if t.AnchorStrength <= 0 {
		t.AnchorStrength = d.AnchorStrength
	}
	if t.Damping <= 0 || t.Damping >= 1 {
		t.Damping = d.Damping
	}
	if t.TimeStep <= 0 {
		t.TimeStep = d.TimeStep
	}
	if t.EnergyThreshold <= 0 {
		t.EnergyThreshold = d.EnergyThreshold
	}
	if t.MaxTicks <= 0 {
		t.MaxTicks = d.MaxTicks
	}
	if t.TicksPerFrame <= 0 {
		t.TicksPerFrame = d.TicksPerFrame
	}
	if t.DegradeNodeCount <= 0 {
		t.DegradeNodeCount = d.DegradeNodeCount
	}
	if t.FrameInterval <= 0 {
		t.FrameInterval = d.FrameInterval
	}
	return t
}
