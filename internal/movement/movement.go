// Package movement maps behavior action names to steering routines and keeps
// each actor's per-behavior runtime state across frames.
package movement

import (
	"math/rand"

	"vira-wilds/sim/internal/behavior"
	"vira-wilds/sim/internal/geom"
	"vira-wilds/sim/internal/targeting"
)

// Action names with a built-in implementation.
const (
	Idle         = "idle"
	Wander       = "wander"
	Seek         = "seek"
	Flee         = "flee"
	DashAtTarget = "dash_at_target"
	VirabirdAI   = "virabird_ai"
)

// Mover is the slice of an actor a behavior may see. Behaviors write Vel and
// nothing else.
type Mover struct {
	Pos   geom.Vec2
	Vel   geom.Vec2
	Speed float64
}

// Input is the read-only per-frame data handed to every behavior.
type Input struct {
	DT     float64
	Target targeting.Target
	Rand   *rand.Rand
}

// State is the runtime record of one active behavior. It survives across
// frames only while the same action (name and params) stays selected.
type State struct {
	Name     string
	Behavior Behavior
	Params   behavior.Params

	Timer    float64
	Dir      geom.Vec2
	Cooldown float64
}

// Behavior steers a mover for one frame using its own runtime state.
type Behavior interface {
	Move(m *Mover, st *State, in Input)
}

// Func adapts a plain function to Behavior.
type Func func(m *Mover, st *State, in Input)

func (f Func) Move(m *Mover, st *State, in Input) {
	f(m, st, in)
}

// Dasher is implemented by behaviors with a burst phase. Dashing reports
// whether the burst is active and MaxSpeed the speed cap it needs.
type Dasher interface {
	Dashing(st *State) bool
	MaxSpeed(st *State) float64
}
