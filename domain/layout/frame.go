package layout

import "gonum.org/v1/gonum/spatial/r2"

// Position is a 2D node coordinate as exposed to consumers.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is one emitted state of a running simulation. Generation ties the
// frame to the filter transition that started the simulation; sinks must
// drop frames whose generation is no longer current.
type Frame struct {
	Generation uint64              `json:"generation"`
	Tick       int                 `json:"tick"`
	Energy     float64             `json:"energy"`
	Frozen     bool                `json:"frozen"`
	Positions  map[string]Position `json:"positions"`
}

// Snapshot is the raw position state of a simulation, keyed by person ID.
// It seeds the next simulation so nodes shared across filter changes keep
// their positions instead of jumping.
type Snapshot map[string]r2.Vec
