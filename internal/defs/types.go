package defs

import (
	"vira-wilds/sim/internal/behavior"
	"vira-wilds/sim/internal/geom"
	"vira-wilds/sim/stats"
)

// DefaultSpeed is the template speed used when a definition sets none.
const DefaultSpeed = 80.0

// TraitDef is a reusable modifier: stat contributions, flag names, and tags
// that templates inherit.
type TraitDef struct {
	Index int
	ID    string
	Stats stats.Block
	Flags []string
	Tags  map[string]any
}

// HasFlag reports whether the trait carries the named flag.
func (t *TraitDef) HasFlag(name string) bool {
	if t == nil {
		return false
	}
	for _, flag := range t.Flags {
		if flag == name {
			return true
		}
	}
	return false
}

// BehaviorDef is a named, compiled behavior tree that templates can reference.
type BehaviorDef struct {
	Index int
	ID    string
	Tree  *behavior.Tree
}

// ActorTemplate is the immutable description actors are spawned from.
type ActorTemplate struct {
	Index int
	ID    string
	Name  string
	Kind  Kind

	// Hitbox is relative to the actor position.
	Hitbox geom.Rect

	Traits   []int
	Tags     map[string]any
	Behavior *behavior.Tree
	Stats    stats.Block
	Speed    float64
	Collides bool
	Flags    Flags
	Sprite   string
}

// WorldHitbox places the template hitbox at pos.
func (t *ActorTemplate) WorldHitbox(pos geom.Vec2) geom.Rect {
	if t == nil {
		return geom.Rect{X: pos.X, Y: pos.Y}
	}
	return t.Hitbox.Offset(pos)
}
