package sim

import (
	"context"
	"io"
	"math/rand"
	"strconv"

	"github.com/sirupsen/logrus"

	"vira-wilds/sim/internal/defs"
	"vira-wilds/sim/internal/geom"
	"vira-wilds/sim/internal/movement"
	"vira-wilds/sim/internal/targeting"
	"vira-wilds/sim/internal/world"
	"vira-wilds/sim/logging"
	loggingcombat "vira-wilds/sim/logging/combat"
	loggingsimulation "vira-wilds/sim/logging/simulation"
)

// Options configures a Simulation. Store is required; the rest default.
type Options struct {
	Store     *defs.Store
	Registry  *movement.Registry
	World     world.Config
	Terrain   world.Terrain
	Publisher logging.Publisher
	Logger    logrus.FieldLogger
}

// FrameInput carries the per-frame state owned by the frame driver.
type FrameInput struct {
	Player *PlayerState
	// Forced overrides every actor's targeting when set.
	Forced *targeting.Target
}

// FrameResult is what one Step hands back to the frame driver.
type FrameResult struct {
	Tick         uint64
	DamageEvents []DamageEvent
	// Snapshots reflect positions after the separator ran and seed the
	// next frame's targeting context.
	Snapshots []targeting.ActorSnapshot
	// Removed lists actors dropped at the start of the step because their
	// health had already reached zero.
	Removed []uint64
}

// DamageOutcome summarises one ApplyDamage call.
type DamageOutcome struct {
	PlayerDamage float64
	Removed      []uint64
}

// Simulation owns every live actor and drives them one frame at a time. It
// is not safe for concurrent use.
type Simulation struct {
	store    *defs.Store
	registry *movement.Registry
	config   world.Config
	terrain  world.Terrain
	pub      logging.Publisher
	log      logrus.FieldLogger

	cache     *targeting.Cache
	separator *world.Separator
	ids       *IDGenerator
	rng       *rand.Rand

	actors    []*Actor
	byID      map[uint64]*Actor
	snapshots []targeting.ActorSnapshot
	bodies    []world.Separable
	tick      uint64
}

// New builds an empty simulation. A nil store is replaced by an empty one.
func New(opts Options) *Simulation {
	cfg := opts.World.Normalized()
	store := opts.Store
	if store == nil {
		store = defs.Empty()
	}
	registry := opts.Registry
	if registry == nil {
		registry = movement.NewRegistry()
	}
	pub := opts.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Simulation{
		store:     store,
		registry:  registry,
		config:    cfg,
		terrain:   opts.Terrain,
		pub:       pub,
		log:       logger.WithField("component", "sim"),
		cache:     targeting.NewCache(),
		separator: world.NewSeparator(cfg.SeparatorCell, cfg.SeparatorPasses),
		ids:       NewIDGenerator(0),
		rng:       world.NewDeterministicRNG(cfg.Seed, "movement.wander"),
		byID:      make(map[uint64]*Actor),
	}
}

func (s *Simulation) Store() *defs.Store {
	return s.store
}

func (s *Simulation) Config() world.Config {
	return s.config
}

func (s *Simulation) Tick() uint64 {
	return s.tick
}

// Spawn places a new actor of template id at pos. It reports false and
// publishes a rejection when the id is unknown.
func (s *Simulation) Spawn(id string, pos geom.Vec2) (*Actor, bool) {
	ctx := context.Background()
	template, ok := s.store.TemplateByID(id)
	if !ok {
		s.log.WithField("template", id).Warn("spawn of unknown actor template")
		loggingsimulation.SpawnRejected(ctx, s.pub, s.tick, loggingsimulation.SpawnPayload{Template: id, X: pos.X, Y: pos.Y})
		return nil, false
	}
	actor := newActor(s.ids.Next(), template, s.store.SpawnStats(template), pos, s.registry)
	s.actors = append(s.actors, actor)
	s.byID[actor.id] = actor
	loggingsimulation.ActorSpawned(ctx, s.pub, s.tick, entityRef(actor), loggingsimulation.SpawnPayload{Template: id, X: pos.X, Y: pos.Y})
	return actor, true
}

// Actor looks up a live actor.
func (s *Simulation) Actor(id uint64) (*Actor, bool) {
	actor, ok := s.byID[id]
	return actor, ok
}

// Actors returns the live actors in spawn order. The slice is shared.
func (s *Simulation) Actors() []*Actor {
	return s.actors
}

// Snapshots returns a fresh snapshot list of every live actor.
func (s *Simulation) Snapshots() []targeting.ActorSnapshot {
	out := make([]targeting.ActorSnapshot, 0, len(s.actors))
	for _, actor := range s.actors {
		out = append(out, actor.Snapshot())
	}
	return out
}

// Step advances every actor by dt. Actors are updated in spawn order against
// a context built from frame-start snapshots, then the separator runs over
// all of them.
func (s *Simulation) Step(dt float64, input FrameInput) FrameResult {
	s.tick++
	result := FrameResult{Tick: s.tick}
	result.Removed = s.removeDead()

	s.snapshots = s.snapshots[:0]
	for _, actor := range s.actors {
		s.snapshots = append(s.snapshots, actor.Snapshot())
	}
	ctx := targeting.NewContext(s.snapshots, input.Player)
	if input.Forced != nil {
		ctx = ctx.WithForcedTarget(*input.Forced)
	}

	frame := Frame{
		DT:         dt,
		Tick:       s.tick,
		Targets:    ctx,
		Cache:      s.cache,
		Registry:   s.registry,
		Terrain:    s.terrain,
		ViewHeight: s.config.ViewHeight,
		Rand:       s.rng,
	}
	for _, actor := range s.actors {
		actor.Update(&frame)
	}

	s.separate()

	result.DamageEvents = frame.Damage
	result.Snapshots = s.Snapshots()
	return result
}

func (s *Simulation) separate() {
	s.bodies = s.bodies[:0]
	for _, actor := range s.actors {
		s.bodies = append(s.bodies, world.Separable{Pos: actor.pos, Hitbox: actor.template.Hitbox, Def: actor.template.Index})
	}
	var bounds geom.Rect
	if s.terrain != nil {
		bounds = s.terrain.Bounds()
	}
	if s.separator.Separate(s.bodies, bounds, s.collidable) == 0 {
		return
	}
	for i, actor := range s.actors {
		actor.pos = s.bodies[i].Pos
	}
}

// collidable reports whether actors of two templates push each other apart.
func (s *Simulation) collidable(a, b int) bool {
	ta, okA := s.store.Template(a)
	tb, okB := s.store.Template(b)
	if !okA || !okB {
		return false
	}
	if ta.Flags.NoEntityCollision() || tb.Flags.NoEntityCollision() {
		return false
	}
	return !ta.Flags.IgnoresKind(tb.Kind) && !tb.Flags.IgnoresKind(ta.Kind)
}

// ApplyDamage applies actor-targeted events through HealthApply, removes the
// actors that reach zero health, and sums the damage dealt to the player.
// Events naming actors that are already gone are ignored.
func (s *Simulation) ApplyDamage(ctx context.Context, events []DamageEvent) DamageOutcome {
	var outcome DamageOutcome
	for _, event := range events {
		source := s.sourceRef(event.Source)
		if event.Target.Player {
			outcome.PlayerDamage += event.Amount
			loggingcombat.ContactDamage(ctx, s.pub, s.tick, source, logging.EntityRef{ID: "player", Kind: logging.EntityKindPlayer},
				loggingcombat.ContactDamagePayload{Amount: event.Amount})
			continue
		}
		victim, ok := s.byID[event.Target.ActorID]
		if !ok || !victim.Alive() {
			continue
		}
		health := victim.HealthApply(event.Amount)
		loggingcombat.ContactDamage(ctx, s.pub, s.tick, source, entityRef(victim),
			loggingcombat.ContactDamagePayload{Amount: event.Amount, TargetHealth: health})
		if health > 0 {
			continue
		}
		loggingcombat.ActorDefeated(ctx, s.pub, s.tick, source, entityRef(victim), loggingcombat.DefeatPayload{Template: victim.template.ID})
		s.remove(victim.id)
		outcome.Removed = append(outcome.Removed, victim.id)
	}
	return outcome
}

func (s *Simulation) removeDead() []uint64 {
	var removed []uint64
	for _, actor := range s.actors {
		if !actor.Alive() {
			removed = append(removed, actor.id)
		}
	}
	for _, id := range removed {
		s.remove(id)
	}
	return removed
}

func (s *Simulation) remove(id uint64) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	s.cache.Forget(id)
	kept := s.actors[:0]
	for _, actor := range s.actors {
		if actor.id != id {
			kept = append(kept, actor)
		}
	}
	for i := len(kept); i < len(s.actors); i++ {
		s.actors[i] = nil
	}
	s.actors = kept
}

func (s *Simulation) sourceRef(id uint64) logging.EntityRef {
	if actor, ok := s.byID[id]; ok {
		return entityRef(actor)
	}
	return logging.EntityRef{ID: strconv.FormatUint(id, 10), Kind: logging.EntityKindUnknown}
}

func entityRef(a *Actor) logging.EntityRef {
	return logging.EntityRef{ID: strconv.FormatUint(a.id, 10), Kind: entityKind(a.template.Kind)}
}

func entityKind(kind defs.Kind) logging.EntityKind {
	switch kind {
	case defs.KindEnemy:
		return logging.EntityKindEnemy
	case defs.KindFriend:
		return logging.EntityKindFriend
	case defs.KindMisc:
		return logging.EntityKindMisc
	default:
		return logging.EntityKindUnknown
	}
}
