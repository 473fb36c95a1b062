package movement

import (
	"math"
	"math/rand"

	"vira-wilds/sim/internal/geom"
	"vira-wilds/sim/internal/world"
)

const (
	wanderAccel    = 10.0
	wanderInterval = 1.5
	minWanderReset = 0.1
	steerAccel     = 12.0

	dashSpeed    = 1100.0
	dashDuration = 0.07
	dashCooldown = 0.5
	// dashSpeedCap is the clamp used when dash_at_target has no dash_speed.
	dashSpeedCap = 2200.0

	orbitRadius      = 120.0
	orbitDiveReach   = 1.25
	diveSpeed        = 900.0
	diveDuration     = 0.18
	diveCooldown     = 1.6
	headingThreshold = 1e-4
)

func idle(m *Mover, _ *State, _ Input) {
	m.Vel = geom.Vec2{}
}

// heading is the direction the mover already travels in, or fallback when it
// is nearly stationary.
func heading(m *Mover, fallback geom.Vec2) geom.Vec2 {
	if m.Vel.LenSq() > headingThreshold {
		return m.Vel.Normalize()
	}
	return fallback
}

func steerBlend(accel, dt float64) float64 {
	return geom.Clamp(accel*dt, 0, 1)
}

func randomDir(rng *rand.Rand) geom.Vec2 {
	angle := world.RandomAngle(rng)
	return geom.V(math.Cos(angle), math.Sin(angle))
}

// wander drifts toward a random heading that changes every interval seconds.
func wander(m *Mover, st *State, in Input) {
	speed := st.Params.Get("speed", m.Speed)
	accel := st.Params.Get("accel", wanderAccel)
	interval := st.Params.Get("interval", wanderInterval)

	st.Timer -= in.DT
	if st.Timer <= 0 || st.Dir.IsZero() {
		st.Timer = math.Max(interval, minWanderReset)
		st.Dir = randomDir(in.Rand)
	}

	current := heading(m, st.Dir)
	next := current.Lerp(st.Dir, steerBlend(accel, in.DT)).Normalize()
	if next.IsZero() {
		next = st.Dir
	}
	m.Vel = next.Scale(speed)
}

func seek(m *Mover, st *State, in Input) {
	steer(m, st, in, 1)
}

func flee(m *Mover, st *State, in Input) {
	steer(m, st, in, -1)
}

// steer turns toward (sign 1) or away from (sign -1) the target. Without a
// target the mover keeps whatever velocity earlier behaviors gave it.
func steer(m *Mover, st *State, in Input, sign float64) {
	if !in.Target.Valid() {
		return
	}
	desired := in.Target.Pos.Sub(m.Pos).Normalize().Scale(sign)
	if desired.IsZero() {
		return
	}
	speed := st.Params.Get("speed", m.Speed)
	accel := st.Params.Get("accel", steerAccel)

	// Only velocity already set this frame bends the heading. A mover at rest
	// faces the target directly.
	current := heading(m, desired)
	st.Dir = current.Lerp(desired, steerBlend(accel, in.DT)).Normalize()
	if st.Dir.IsZero() {
		st.Dir = desired
	}
	m.Vel = st.Dir.Scale(speed)
}

// dashAtTarget bursts toward the target for dash_duration seconds whenever
// its cooldown has expired. It adds to the velocity so it can ride on top of
// another movement action.
type dashAtTarget struct{}

func (dashAtTarget) Move(m *Mover, st *State, in Input) {
	st.Cooldown = math.Max(st.Cooldown-in.DT, 0)
	st.Timer = math.Max(st.Timer-in.DT, 0)

	if st.Timer == 0 && st.Cooldown == 0 && in.Target.Valid() {
		dir := in.Target.Pos.Sub(m.Pos).Normalize()
		if !dir.IsZero() {
			st.Dir = dir
			st.Timer = st.Params.Get("dash_duration", dashDuration)
			st.Cooldown = st.Params.Get("dash_cooldown", dashCooldown)
		}
	}
	if st.Timer > 0 {
		m.Vel = m.Vel.Add(st.Dir.Scale(st.Params.Get("dash_speed", dashSpeed)))
	}
}

func (dashAtTarget) Dashing(st *State) bool {
	return st.Timer > 0
}

func (dashAtTarget) MaxSpeed(st *State) float64 {
	return math.Abs(st.Params.Get("dash_speed", dashSpeedCap))
}

// virabird circles its target counter-clockwise on a ring of orbit_radius and
// dives straight through it once the dive cooldown has expired.
type virabird struct{}

func (virabird) Move(m *Mover, st *State, in Input) {
	st.Cooldown = math.Max(st.Cooldown-in.DT, 0)
	speed := st.Params.Get("dash_speed", diveSpeed)

	if st.Timer > 0 {
		st.Timer = math.Max(st.Timer-in.DT, 0)
		m.Vel = m.Vel.Add(st.Dir.Scale(speed))
		return
	}
	if !in.Target.Valid() {
		return
	}

	radius := math.Max(st.Params.Get("orbit_radius", orbitRadius), 1)
	offset := m.Pos.Sub(in.Target.Pos)
	dist := offset.Len()

	if st.Cooldown == 0 && dist > 0 && dist <= radius*orbitDiveReach {
		st.Dir = offset.Scale(-1 / dist)
		st.Timer = st.Params.Get("dash_duration", diveDuration)
		st.Cooldown = st.Params.Get("dash_cooldown", diveCooldown)
		m.Vel = m.Vel.Add(st.Dir.Scale(speed))
		return
	}

	radial := geom.V(1, 0)
	if dist > 0 {
		radial = offset.Scale(1 / dist)
	}
	correction := geom.Clamp((radius-dist)/radius, -1, 1)
	desired := radial.Perp().Add(radial.Scale(correction)).Normalize()
	cruise := st.Params.Get("speed", m.Speed)
	m.Vel = m.Vel.Add(desired.Scale(cruise))
}

func (virabird) Dashing(st *State) bool {
	return st.Timer > 0
}

func (virabird) MaxSpeed(st *State) float64 {
	return math.Abs(st.Params.Get("dash_speed", diveSpeed))
}
