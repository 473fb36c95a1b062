package sim

import (
	"math"
	"math/rand"

	"vira-wilds/sim/internal/behavior"
	"vira-wilds/sim/internal/defs"
	"vira-wilds/sim/internal/geom"
	"vira-wilds/sim/internal/movement"
	"vira-wilds/sim/internal/targeting"
	"vira-wilds/sim/internal/world"
	"vira-wilds/sim/stats"
)

// ContactCooldown is the minimum time between two contact hits by one actor.
const ContactCooldown = 0.3

// PlayerState is the player as the frame driver reports it. Hitbox is in
// world space.
type PlayerState = targeting.PlayerSnapshot

// DamageTarget names who a DamageEvent hits: the player, or an actor by id.
type DamageTarget struct {
	Player  bool
	ActorID uint64
}

// DamageEvent is a deferred hit. The core only records it; the frame driver
// applies it after every actor has updated.
type DamageEvent struct {
	Source uint64
	Amount float64
	Target DamageTarget
}

// Frame is the shared, read-only context for one simulation step. Only the
// Damage list is appended to while actors update.
type Frame struct {
	DT         float64
	Tick       uint64
	Targets    *targeting.Context
	Cache      *targeting.Cache
	Registry   *movement.Registry
	Terrain    world.Terrain
	ViewHeight float64
	Rand       *rand.Rand

	Damage []DamageEvent
}

// Actor is one live, spawned instance of a template.
type Actor struct {
	id       uint64
	template *defs.ActorTemplate

	pos   geom.Vec2
	vel   geom.Vec2
	speed float64

	runtime   movement.Runtime
	stats     stats.Block
	health    float64
	maxHealth float64

	target          targeting.Target
	contactCooldown float64

	dynamic []geom.Rect
	tiles   []geom.Rect
}

func newActor(id uint64, template *defs.ActorTemplate, spawnStats stats.Block, pos geom.Vec2, reg *movement.Registry) *Actor {
	maxHealth := stats.MaxHealth(spawnStats)
	a := &Actor{
		id:        id,
		template:  template,
		pos:       pos,
		speed:     stats.Speed(spawnStats, template.Speed),
		stats:     spawnStats,
		health:    maxHealth,
		maxHealth: maxHealth,
	}
	var initial []behavior.Action
	if template.Behavior != nil {
		if name, ok := template.Behavior.FirstAction(reg.Has); ok {
			initial = append(initial, behavior.Action{Name: name})
		}
	}
	a.runtime.Sync(reg, initial)
	return a
}

func (a *Actor) ID() uint64 {
	return a.id
}

func (a *Actor) Template() *defs.ActorTemplate {
	return a.template
}

func (a *Actor) Pos() geom.Vec2 {
	return a.pos
}

func (a *Actor) Vel() geom.Vec2 {
	return a.vel
}

func (a *Actor) Speed() float64 {
	return a.speed
}

// Hitbox is the actor's hitbox in world space.
func (a *Actor) Hitbox() geom.Rect {
	return a.template.WorldHitbox(a.pos)
}

func (a *Actor) Health() float64 {
	return a.health
}

func (a *Actor) MaxHealth() float64 {
	return a.maxHealth
}

func (a *Actor) Alive() bool {
	return a.health > 0
}

// Stats returns the aggregated stat table. Callers must not modify it.
func (a *Actor) Stats() stats.Block {
	return a.stats
}

// Target is the target resolved during the last update.
func (a *Actor) Target() targeting.Target {
	return a.target
}

// IsDashing reports whether a dash-style behavior is mid-burst.
func (a *Actor) IsDashing() bool {
	return a.runtime.IsDashing()
}

// Behaviors lists the active movement action names.
func (a *Actor) Behaviors() []string {
	return a.runtime.Names()
}

// HealthApply subtracts amount, flooring health at zero, and returns the new
// health.
func (a *Actor) HealthApply(amount float64) float64 {
	a.health = stats.ApplyDamage(a.health, amount)
	return a.health
}

// Snapshot copies the fields other actors may read.
func (a *Actor) Snapshot() targeting.ActorSnapshot {
	return targeting.ActorSnapshot{
		ID:       a.id,
		Template: a.template.Index,
		Kind:     a.template.Kind,
		Pos:      a.pos,
		Hitbox:   a.Hitbox(),
		Alive:    a.Alive(),
	}
}

// Update runs one frame for the actor: target resolution, behavior selection,
// movement, speed clamp, collision sweep, and the contact damage check.
func (a *Actor) Update(f *Frame) {
	flags := a.template.Flags
	a.vel = geom.Vec2{}
	a.target = targeting.Resolve(f.Targets, f.Cache, targeting.Seeker{ID: a.id, Pos: a.pos, Flags: flags})
	a.contactCooldown = math.Max(a.contactCooldown-f.DT, 0)

	a.runtime.Sync(f.Registry, a.desiredActions(f))
	mover := movement.Mover{Pos: a.pos, Vel: a.vel, Speed: a.speed}
	a.runtime.Run(&mover, movement.Input{DT: f.DT, Target: a.target, Rand: f.Rand})
	a.runtime.ClampVelocity(&mover)
	a.vel = mover.Vel

	a.gatherDynamic(f.Targets)
	body := world.Body{Pos: a.pos, Vel: a.vel, Hitbox: a.template.Hitbox}
	a.tiles = world.Sweep(&body, f.DT, f.Terrain, a.template.Collides, a.dynamic, a.tiles)
	a.pos, a.vel = body.Pos, body.Vel

	a.checkContact(f)
}

func (a *Actor) desiredActions(f *Frame) []behavior.Action {
	if a.template.Behavior == nil {
		return nil
	}
	facts := behavior.Facts{
		Pos:        a.pos,
		Target:     a.target.Pos,
		HasTarget:  a.target.Valid(),
		ViewHeight: f.ViewHeight,
		HP:         a.health,
		MaxHP:      a.maxHealth,
		Speed:      a.speed,
		Stats:      a.stats,
	}
	return a.template.Behavior.Evaluate(facts)
}

// gatherDynamic fills the scratch list with the hitboxes this actor collides
// with. The current target is never an obstacle.
func (a *Actor) gatherDynamic(ctx *targeting.Context) {
	a.dynamic = a.dynamic[:0]
	flags := a.template.Flags
	if flags.NoEntityCollision() {
		return
	}
	if player, ok := ctx.LivePlayer(); ok && !flags.NoPlayerCollision() && !a.target.IsPlayer() {
		a.dynamic = append(a.dynamic, player.Hitbox)
	}
	targetID, hasActorTarget := a.target.ActorID()
	for _, other := range ctx.Actors() {
		if other.ID == a.id || !other.Alive {
			continue
		}
		if hasActorTarget && other.ID == targetID {
			continue
		}
		if flags.IgnoresKind(other.Kind) {
			continue
		}
		a.dynamic = append(a.dynamic, other.Hitbox)
	}
}

func (a *Actor) checkContact(f *Frame) {
	damage := a.stats.Get(stats.KeyDamage, 0)
	if damage <= 0 || a.contactCooldown > 0 || !a.target.Valid() {
		return
	}
	flags := a.template.Flags

	var (
		hitbox geom.Rect
		victim DamageTarget
	)
	switch a.target.Kind {
	case targeting.KindPlayer:
		player, ok := f.Targets.LivePlayer()
		if !ok || !flags.TargetsPlayer() {
			return
		}
		hitbox = player.Hitbox
		victim = DamageTarget{Player: true}
	case targeting.KindActor:
		current, ok := targeting.StillValid(f.Targets, a.target, flags.TargetMask())
		if !ok {
			return
		}
		hitbox = current.Hitbox
		victim = DamageTarget{ActorID: current.Actor.ID}
	default:
		return
	}

	if !a.Hitbox().Overlaps(hitbox) {
		return
	}
	f.Damage = append(f.Damage, DamageEvent{Source: a.id, Amount: damage, Target: victim})
	a.contactCooldown = ContactCooldown
}
