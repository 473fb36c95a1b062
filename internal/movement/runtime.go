package movement

import (
	"math"

	"vira-wilds/sim/internal/behavior"
)

// Runtime holds an actor's active behaviors in selection order.
type Runtime struct {
	states []*State
}

// Sync reconciles the running behaviors with desired. Actions without an
// implementation are dropped; an empty result falls back to idle. A running
// entry is reused at most once and only for an identical name and params.
func (rt *Runtime) Sync(reg *Registry, desired []behavior.Action) {
	known := make([]behavior.Action, 0, len(desired))
	for _, action := range desired {
		if reg.Has(action.Name) {
			known = append(known, action)
		}
	}
	if len(known) == 0 {
		known = append(known, behavior.Action{Name: Idle})
	}

	old := rt.states
	next := make([]*State, 0, len(known))
	for _, action := range known {
		if i := indexOf(old, action); i >= 0 {
			next = append(next, old[i])
			old = append(old[:i:i], old[i+1:]...)
			continue
		}
		b, ok := reg.Lookup(action.Name)
		if !ok {
			b = Func(idle)
		}
		next = append(next, &State{
			Name:     action.Name,
			Behavior: b,
			Params:   action.Params.Clone(),
		})
	}
	rt.states = next
}

func indexOf(states []*State, action behavior.Action) int {
	for i, st := range states {
		if st.Name == action.Name && st.Params.Equal(action.Params) {
			return i
		}
	}
	return -1
}

// Run executes every active behavior once, in order.
func (rt *Runtime) Run(m *Mover, in Input) {
	for _, st := range rt.states {
		st.Behavior.Move(m, st, in)
	}
}

// States returns the active behaviors. Callers must not retain them across
// a Sync.
func (rt *Runtime) States() []*State {
	return rt.states
}

// Names lists the active action names.
func (rt *Runtime) Names() []string {
	names := make([]string, len(rt.states))
	for i, st := range rt.states {
		names[i] = st.Name
	}
	return names
}

// IsDashing reports whether any active behavior is in a burst phase.
func (rt *Runtime) IsDashing() bool {
	for _, st := range rt.states {
		if d, ok := st.Behavior.(Dasher); ok && d.Dashing(st) {
			return true
		}
	}
	return false
}

// MaxSpeed is max(speed, 1), raised by any dashing behavior's cap.
func (rt *Runtime) MaxSpeed(speed float64) float64 {
	limit := math.Max(speed, 1)
	for _, st := range rt.states {
		d, ok := st.Behavior.(Dasher)
		if !ok || !d.Dashing(st) {
			continue
		}
		limit = math.Max(limit, d.MaxSpeed(st))
	}
	return limit
}

// ClampVelocity limits the mover's velocity to MaxSpeed.
func (rt *Runtime) ClampVelocity(m *Mover) {
	limit := rt.MaxSpeed(m.Speed)
	length := m.Vel.Len()
	if length > limit && length > 0 {
		m.Vel = m.Vel.Scale(limit / length)
	}
}
