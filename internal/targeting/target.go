// Package targeting resolves which position, player, or actor each actor
// pursues during a frame.
package targeting

import (
	"vira-wilds/sim/internal/defs"
	"vira-wilds/sim/internal/geom"
)

// Kind tags the Target variant. The zero value means no target.
type Kind uint8

const (
	KindNone Kind = iota
	KindPosition
	KindPlayer
	KindActor
)

func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "position"
	case KindPlayer:
		return "player"
	case KindActor:
		return "actor"
	default:
		return "none"
	}
}

// ActorSnapshot is the frame-start copy of an actor other actors may read.
// Hitbox is in world space.
type ActorSnapshot struct {
	ID       uint64
	Template int
	Kind     defs.Kind
	Pos      geom.Vec2
	Hitbox   geom.Rect
	Alive    bool
}

// PlayerSnapshot is the frame-start copy of the player. Hitbox is in world
// space.
type PlayerSnapshot struct {
	Pos    geom.Vec2
	Hitbox geom.Rect
	Alive  bool
}

// Target is a tagged variant over a bare position, the player, or an actor.
type Target struct {
	Kind   Kind
	Pos    geom.Vec2
	Hitbox geom.Rect
	Actor  ActorSnapshot
}

// None is the empty target.
var None = Target{}

func PositionTarget(pos geom.Vec2) Target {
	return Target{Kind: KindPosition, Pos: pos, Hitbox: geom.Rect{X: pos.X, Y: pos.Y}}
}

func PlayerTarget(p PlayerSnapshot) Target {
	return Target{Kind: KindPlayer, Pos: p.Pos, Hitbox: p.Hitbox}
}

func ActorTarget(a ActorSnapshot) Target {
	return Target{Kind: KindActor, Pos: a.Pos, Hitbox: a.Hitbox, Actor: a}
}

// Valid reports whether t names anything.
func (t Target) Valid() bool {
	return t.Kind != KindNone
}

func (t Target) IsPlayer() bool {
	return t.Kind == KindPlayer
}

// ActorID returns the referenced actor id for actor targets.
func (t Target) ActorID() (uint64, bool) {
	if t.Kind != KindActor {
		return 0, false
	}
	return t.Actor.ID, true
}
