package movement

import (
	"math"
	"math/rand"
	"testing"

	"vira-wilds/sim/internal/behavior"
	"vira-wilds/sim/internal/geom"
	"vira-wilds/sim/internal/targeting"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSyncFiltersUnknownAndFallsBackToIdle(t *testing.T) {
	reg := NewRegistry()
	var rt Runtime

	rt.Sync(reg, []behavior.Action{{Name: "teleport"}})
	if names := rt.Names(); len(names) != 1 || names[0] != Idle {
		t.Fatalf("expected idle fallback, got %v", names)
	}

	rt.Sync(reg, nil)
	if names := rt.Names(); len(names) != 1 || names[0] != Idle {
		t.Fatalf("expected idle for empty selection, got %v", names)
	}

	rt.Sync(reg, []behavior.Action{{Name: "teleport"}, {Name: Seek}})
	if names := rt.Names(); len(names) != 1 || names[0] != Seek {
		t.Fatalf("expected only seek to survive, got %v", names)
	}
}

func TestSyncPreservesMatchingState(t *testing.T) {
	reg := NewRegistry()
	var rt Runtime
	params := behavior.Params{"interval": 1.5}

	rt.Sync(reg, []behavior.Action{{Name: Wander, Params: params}})
	first := rt.States()[0]
	first.Timer = 0.75
	first.Dir = geom.V(0, 1)

	rt.Sync(reg, []behavior.Action{{Name: Wander, Params: behavior.Params{"interval": 1.5}}})
	if rt.States()[0] != first || first.Timer != 0.75 {
		t.Fatalf("expected identical action to keep its runtime state")
	}

	rt.Sync(reg, []behavior.Action{{Name: Wander, Params: behavior.Params{"interval": 2}}})
	fresh := rt.States()[0]
	if fresh == first || fresh.Timer != 0 || !fresh.Dir.IsZero() || fresh.Cooldown != 0 {
		t.Fatalf("expected changed params to reset state, got %+v", fresh)
	}
}

func TestSyncReusesEachEntryOnce(t *testing.T) {
	reg := NewRegistry()
	var rt Runtime
	dash := behavior.Action{Name: DashAtTarget}

	rt.Sync(reg, []behavior.Action{dash})
	original := rt.States()[0]
	original.Cooldown = 0.4

	rt.Sync(reg, []behavior.Action{dash, dash})
	states := rt.States()
	if len(states) != 2 {
		t.Fatalf("expected two entries, got %d", len(states))
	}
	if states[0] != original || states[1] == original {
		t.Fatalf("expected the old entry to be reused for the first match only")
	}
	if states[1].Cooldown != 0 {
		t.Fatalf("expected the second entry to start fresh, got cooldown %v", states[1].Cooldown)
	}
}

func TestWanderResetsTimerAndDirection(t *testing.T) {
	reg := NewRegistry()
	var rt Runtime
	rt.Sync(reg, []behavior.Action{{Name: Wander, Params: behavior.Params{"interval": 1.5}}})
	st := rt.States()[0]
	in := Input{DT: 0.4, Rand: rand.New(rand.NewSource(7))}

	m := &Mover{Speed: 40}
	rt.Run(m, in)
	if st.Timer != 1.5 || st.Dir.IsZero() {
		t.Fatalf("expected first frame to pick a direction, got timer=%v dir=%v", st.Timer, st.Dir)
	}

	for frame := 0; frame < 3; frame++ {
		m.Vel = geom.Vec2{}
		rt.Run(m, in)
	}
	if st.Timer <= 0 || st.Timer >= 1.5 {
		t.Fatalf("expected timer to count down, got %v", st.Timer)
	}

	m.Vel = geom.Vec2{}
	rt.Run(m, in)
	if st.Timer < 1.5-in.DT {
		t.Fatalf("expected timer reset after expiry, got %v", st.Timer)
	}
	if !near(st.Dir.Len(), 1) {
		t.Fatalf("expected unit direction after reset, got %v", st.Dir)
	}
	if !near(m.Vel.Len(), 40) {
		t.Fatalf("expected wander to move at actor speed, got %v", m.Vel.Len())
	}
}

func TestSeekAndFlee(t *testing.T) {
	target := targeting.PositionTarget(geom.V(100, 0))

	m := &Mover{Speed: 50}
	st := &State{Name: Seek}
	seek(m, st, Input{DT: 1, Target: target})
	if !near(m.Vel.X, 50) || !near(m.Vel.Y, 0) {
		t.Fatalf("expected seek toward +X, got %v", m.Vel)
	}

	m = &Mover{Speed: 50}
	st = &State{Name: Flee, Params: behavior.Params{"speed": 20}}
	flee(m, st, Input{DT: 1, Target: target})
	if !near(m.Vel.X, -20) {
		t.Fatalf("expected flee away from target at param speed, got %v", m.Vel)
	}

	m = &Mover{Speed: 50, Vel: geom.V(3, 4)}
	seek(m, &State{}, Input{DT: 1})
	if m.Vel != geom.V(3, 4) {
		t.Fatalf("expected seek without target to leave velocity alone, got %v", m.Vel)
	}
}

func TestSeekBlendsWithCurrentVelocity(t *testing.T) {
	m := &Mover{Speed: 10, Vel: geom.V(0, 10)}
	st := &State{}
	seek(m, st, Input{DT: 1.0 / 60, Target: targeting.PositionTarget(geom.V(100, 0))})
	if m.Vel.Y <= 0 || m.Vel.X <= 0 {
		t.Fatalf("expected blended heading, got %v", m.Vel)
	}
	if !near(m.Vel.Len(), 10) {
		t.Fatalf("expected speed 10, got %v", m.Vel.Len())
	}
}

func TestSteerFacesTargetThatMovedBehind(t *testing.T) {
	cases := []struct {
		name  string
		move  func(*Mover, *State, Input)
		wantX float64
	}{
		{name: "seek", move: seek, wantX: -50},
		{name: "flee", move: flee, wantX: 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &State{}
			m := &Mover{Speed: 50}
			tc.move(m, st, Input{DT: 1.0 / 60, Target: targeting.PositionTarget(geom.V(100, 0))})

			behind := Input{DT: 1.0 / 60, Target: targeting.PositionTarget(geom.V(-100, 0))}
			for i := 0; i < 120; i++ {
				m.Vel = geom.Vec2{}
				tc.move(m, st, behind)
			}
			if !near(m.Vel.X, tc.wantX) || !near(m.Vel.Y, 0) {
				t.Fatalf("expected velocity (%v, 0), got %v", tc.wantX, m.Vel)
			}
		})
	}
}

func TestSeekAtRestFacesTargetImmediately(t *testing.T) {
	m := &Mover{Speed: 10}
	st := &State{Dir: geom.V(1, 0)}
	seek(m, st, Input{DT: 1.0 / 60, Target: targeting.PositionTarget(geom.V(0, 100))})
	if !near(m.Vel.X, 0) || !near(m.Vel.Y, 10) {
		t.Fatalf("expected velocity straight at the target, got %v", m.Vel)
	}
}

func TestDashAtTargetCycle(t *testing.T) {
	reg := NewRegistry()
	var rt Runtime
	params := behavior.Params{"dash_speed": 1100, "dash_duration": 0.07, "dash_cooldown": 0.5}
	rt.Sync(reg, []behavior.Action{{Name: DashAtTarget, Params: params}})
	st := rt.States()[0]
	in := Input{DT: 1.0 / 60, Target: targeting.PositionTarget(geom.V(0, 100))}

	m := &Mover{Speed: 60}
	rt.Run(m, in)
	if !rt.IsDashing() {
		t.Fatalf("expected dash to start")
	}
	if !near(m.Vel.Y, 1100) {
		t.Fatalf("expected dash velocity, got %v", m.Vel)
	}
	if !near(rt.MaxSpeed(m.Speed), 1100) {
		t.Fatalf("expected speed cap raised to dash speed, got %v", rt.MaxSpeed(m.Speed))
	}
	rt.ClampVelocity(m)
	if !near(m.Vel.Len(), 1100) {
		t.Fatalf("expected dash to survive the clamp, got %v", m.Vel.Len())
	}

	for i := 0; i < 10 && st.Timer > 0; i++ {
		m.Vel = geom.Vec2{}
		rt.Run(m, in)
	}
	if rt.IsDashing() {
		t.Fatalf("expected dash to end")
	}
	if st.Cooldown <= 0 {
		t.Fatalf("expected cooldown to be running")
	}
	m.Vel = geom.Vec2{}
	rt.Run(m, in)
	if !m.Vel.IsZero() {
		t.Fatalf("expected no dash while cooling down, got %v", m.Vel)
	}
	if rt.MaxSpeed(m.Speed) != 60 {
		t.Fatalf("expected base cap outside dash, got %v", rt.MaxSpeed(m.Speed))
	}
}

func TestDashCapDefault(t *testing.T) {
	st := &State{Timer: 0.1}
	if got := (dashAtTarget{}).MaxSpeed(st); got != dashSpeedCap {
		t.Fatalf("expected default cap %v, got %v", dashSpeedCap, got)
	}
}

func TestClampVelocity(t *testing.T) {
	var rt Runtime
	rt.Sync(NewRegistry(), []behavior.Action{{Name: Idle}})

	m := &Mover{Speed: 10, Vel: geom.V(30, 40)}
	rt.ClampVelocity(m)
	if !near(m.Vel.X, 6) || !near(m.Vel.Y, 8) {
		t.Fatalf("expected clamp to speed 10, got %v", m.Vel)
	}

	m = &Mover{Speed: 0, Vel: geom.V(0, 5)}
	rt.ClampVelocity(m)
	if !near(m.Vel.Y, 1) {
		t.Fatalf("expected minimum cap of 1, got %v", m.Vel)
	}
}

func TestVirabirdOrbitsThenDives(t *testing.T) {
	target := targeting.PositionTarget(geom.V(0, 0))
	params := behavior.Params{"orbit_radius": 100}

	far := &Mover{Pos: geom.V(300, 0), Speed: 120}
	st := &State{Params: params}
	(virabird{}).Move(far, st, Input{DT: 1.0 / 60, Target: target})
	if far.Vel.X >= 0 {
		t.Fatalf("expected pull toward the ring from outside, got %v", far.Vel)
	}
	if far.Vel.Y <= 0 {
		t.Fatalf("expected counter-clockwise tangent, got %v", far.Vel)
	}
	if st.Timer != 0 {
		t.Fatalf("expected no dive outside reach")
	}

	inside := &Mover{Pos: geom.V(100, 0), Speed: 120}
	(virabird{}).Move(inside, st, Input{DT: 1.0 / 60, Target: target})
	if st.Timer <= 0 || !(virabird{}).Dashing(st) {
		t.Fatalf("expected a dive inside reach")
	}
	if !near(inside.Vel.X, -diveSpeed) {
		t.Fatalf("expected dive straight at the target, got %v", inside.Vel)
	}
	if st.Cooldown != diveCooldown {
		t.Fatalf("expected dive cooldown %v, got %v", diveCooldown, st.Cooldown)
	}

	idleBird := &Mover{Pos: geom.V(10, 10), Speed: 120}
	(virabird{}).Move(idleBird, &State{}, Input{DT: 1.0 / 60})
	if !idleBird.Vel.IsZero() {
		t.Fatalf("expected no movement without a target, got %v", idleBird.Vel)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{Idle, Wander, Seek, Flee, DashAtTarget, VirabirdAI} {
		if !reg.Has(name) {
			t.Fatalf("expected built-in %q", name)
		}
	}
	reg.Register("hover", Func(func(m *Mover, _ *State, _ Input) { m.Vel = geom.V(0, -1) }))
	if !reg.Has("hover") || len(reg.Names()) != 7 {
		t.Fatalf("expected custom behavior to register, got %v", reg.Names())
	}

	var rt Runtime
	rt.Sync(reg, []behavior.Action{{Name: "hover"}})
	m := &Mover{}
	rt.Run(m, Input{})
	if m.Vel != geom.V(0, -1) {
		t.Fatalf("expected custom behavior to run, got %v", m.Vel)
	}
}
