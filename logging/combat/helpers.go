// Package combat publishes contact-damage and defeat events.
package combat

import (
	"context"

	"vira-wilds/sim/logging"
)

const (
	// EventContactDamage is emitted when an actor's contact check lands a hit.
	EventContactDamage logging.EventType = "combat.contact_damage"
	// EventActorDefeated is emitted when an actor's health reaches zero.
	EventActorDefeated logging.EventType = "combat.actor_defeated"
)

// ContactDamagePayload captures one applied damage event.
type ContactDamagePayload struct {
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
}

// DefeatPayload describes the actor that was removed.
type DefeatPayload struct {
	Template string `json:"template"`
}

// ContactDamage publishes a damage event from actor to target.
func ContactDamage(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload ContactDamagePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventContactDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// ActorDefeated publishes the removal of target, credited to actor.
func ActorDefeated(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload DefeatPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventActorDefeated,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
