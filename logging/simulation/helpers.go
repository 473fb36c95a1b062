// Package simulation publishes frame-driver events.
package simulation

import (
	"context"

	"vira-wilds/sim/logging"
)

const (
	// EventActorSpawned is emitted for every actor added to the world.
	EventActorSpawned logging.EventType = "simulation.actor_spawned"
	// EventSpawnRejected is emitted when a spawn names an unknown template.
	EventSpawnRejected logging.EventType = "simulation.spawn_rejected"
	// EventFrameBudgetOverrun is emitted when a step takes longer than its frame.
	EventFrameBudgetOverrun logging.EventType = "simulation.frame_budget_overrun"
)

type SpawnPayload struct {
	Template string  `json:"template"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// ActorSpawned publishes a spawn.
func ActorSpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SpawnPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventActorSpawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// SpawnRejected publishes a spawn request for an unknown template.
func SpawnRejected(ctx context.Context, pub logging.Publisher, tick uint64, payload SpawnPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSpawnRejected,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// FrameBudgetOverrunPayload captures timing details for a slow frame.
type FrameBudgetOverrunPayload struct {
	DurationMillis float64 `json:"durationMillis"`
	BudgetMillis   float64 `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// FrameBudgetOverrun publishes a warning for a frame that ran over budget.
func FrameBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload FrameBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventFrameBudgetOverrun,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}
