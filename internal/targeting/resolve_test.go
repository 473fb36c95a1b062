package targeting

import (
	"testing"

	"vira-wilds/sim/internal/defs"
	"vira-wilds/sim/internal/geom"
)

func snapshot(id uint64, kind defs.Kind, x, y float64) ActorSnapshot {
	return ActorSnapshot{
		ID:     id,
		Kind:   kind,
		Pos:    geom.V(x, y),
		Hitbox: geom.R(x-4, y-4, 8, 8),
		Alive:  true,
	}
}

func TestResolvePrefersEligibleKindOverNearer(t *testing.T) {
	ctx := NewContext([]ActorSnapshot{
		snapshot(1, defs.KindEnemy, 0, 0),
		snapshot(2, defs.KindEnemy, 10, 0),
		snapshot(3, defs.KindFriend, 1, 0),
	}, nil)

	seeker := Seeker{ID: 1, Pos: geom.V(0, 0), Flags: defs.FlagTargetNearestEnemy}
	target := Resolve(ctx, NewCache(), seeker)
	id, ok := target.ActorID()
	if !ok || id != 2 {
		t.Fatalf("expected enemy 2 to be targeted, got %+v", target)
	}

	seeker.Flags |= defs.FlagTargetNearestEntity
	target = Resolve(ctx, NewCache(), seeker)
	if id, _ := target.ActorID(); id != 2 {
		t.Fatalf("expected any-entity bit to stay restricted to enemies, got %d", id)
	}

	seeker.Flags = defs.FlagTargetNearestEntity
	target = Resolve(ctx, NewCache(), seeker)
	if id, _ := target.ActorID(); id != 3 {
		t.Fatalf("expected nearest of any kind to be 3, got %d", id)
	}
}

func TestResolveSkipsSelfAndDead(t *testing.T) {
	dead := snapshot(2, defs.KindFriend, 1, 0)
	dead.Alive = false
	ctx := NewContext([]ActorSnapshot{
		snapshot(1, defs.KindFriend, 0, 0),
		dead,
		snapshot(3, defs.KindFriend, 5, 0),
	}, nil)

	target := Resolve(ctx, nil, Seeker{ID: 1, Flags: defs.FlagTargetNearestFriend})
	if id, _ := target.ActorID(); id != 3 {
		t.Fatalf("expected live friend 3, got %+v", target)
	}
}

func TestResolveTiesKeepFirstSeen(t *testing.T) {
	ctx := NewContext([]ActorSnapshot{
		snapshot(7, defs.KindMisc, -3, 0),
		snapshot(8, defs.KindMisc, 3, 0),
	}, nil)

	target := Resolve(ctx, nil, Seeker{ID: 1, Flags: defs.FlagTargetNearestMisc})
	if id, _ := target.ActorID(); id != 7 {
		t.Fatalf("expected first-seen candidate 7, got %d", id)
	}
}

func TestResolvePlayerPriority(t *testing.T) {
	player := &PlayerSnapshot{Pos: geom.V(50, 50), Hitbox: geom.R(44, 40, 12, 12), Alive: true}
	ctx := NewContext([]ActorSnapshot{snapshot(2, defs.KindFriend, 1, 0)}, player)

	flags := defs.FlagTargetPlayer | defs.FlagTargetNearestFriend
	target := Resolve(ctx, NewCache(), Seeker{ID: 1, Flags: flags})
	if !target.IsPlayer() || target.Pos != player.Pos {
		t.Fatalf("expected player target, got %+v", target)
	}

	player.Alive = false
	ctx = NewContext(nil, player)
	if target := Resolve(ctx, NewCache(), Seeker{ID: 1, Flags: flags}); target.Valid() {
		t.Fatalf("expected no target for a dead player, got %+v", target)
	}
	if target := Resolve(NewContext(nil, nil), nil, Seeker{ID: 1, Flags: flags}); target.Valid() {
		t.Fatalf("expected no target without a player, got %+v", target)
	}
}

func TestResolveForcedTargetWins(t *testing.T) {
	ctx := NewContext([]ActorSnapshot{snapshot(2, defs.KindEnemy, 1, 0)}, &PlayerSnapshot{Alive: true})
	forced := PositionTarget(geom.V(9, 9))
	ctx = ctx.WithForcedTarget(forced)

	flags := defs.FlagTargetPlayer | defs.FlagTargetNearestEnemy
	if target := Resolve(ctx, NewCache(), Seeker{ID: 1, Flags: flags}); target != forced {
		t.Fatalf("expected forced target, got %+v", target)
	}
}

func TestResolveWithoutMask(t *testing.T) {
	ctx := NewContext([]ActorSnapshot{snapshot(2, defs.KindEnemy, 1, 0)}, nil)
	cache := NewCache()
	if target := Resolve(ctx, cache, Seeker{ID: 1}); target.Valid() {
		t.Fatalf("expected no target, got %+v", target)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected maskless resolution to skip the cache, got %d entries", cache.Len())
	}
}

func TestCachedNoneIsSticky(t *testing.T) {
	cache := NewCache()
	seeker := Seeker{ID: 1, Flags: defs.FlagTargetNearestEnemy}

	empty := NewContext([]ActorSnapshot{snapshot(1, defs.KindFriend, 0, 0)}, nil)
	if target := Resolve(empty, cache, seeker); target.Valid() {
		t.Fatalf("expected no target, got %+v", target)
	}

	crowded := NewContext([]ActorSnapshot{
		snapshot(1, defs.KindFriend, 0, 0),
		snapshot(2, defs.KindEnemy, 1, 0),
	}, nil)
	for frame := 0; frame < 3; frame++ {
		if target := Resolve(crowded, cache, seeker); target.Valid() {
			t.Fatalf("frame %d: expected cached none to persist, got %+v", frame, target)
		}
	}

	cache.Forget(1)
	if target := Resolve(crowded, cache, seeker); !target.Valid() {
		t.Fatalf("expected rescan after Forget to find the enemy")
	}
}

func TestCachedActorIsRevalidated(t *testing.T) {
	cache := NewCache()
	seeker := Seeker{ID: 1, Flags: defs.FlagTargetNearestEnemy}

	first := NewContext([]ActorSnapshot{
		snapshot(2, defs.KindEnemy, 5, 0),
		snapshot(3, defs.KindEnemy, 9, 0),
	}, nil)
	if id, _ := Resolve(first, cache, seeker).ActorID(); id != 2 {
		t.Fatalf("expected 2, got %d", id)
	}

	moved := NewContext([]ActorSnapshot{
		snapshot(2, defs.KindEnemy, 50, 0),
		snapshot(3, defs.KindEnemy, 9, 0),
	}, nil)
	target := Resolve(moved, cache, seeker)
	if id, _ := target.ActorID(); id != 2 {
		t.Fatalf("expected cached target 2 to be reused, got %d", id)
	}
	if target.Pos.X != 50 {
		t.Fatalf("expected cached target to carry the current position, got %v", target.Pos)
	}

	dead := snapshot(2, defs.KindEnemy, 5, 0)
	dead.Alive = false
	gone := NewContext([]ActorSnapshot{dead, snapshot(3, defs.KindEnemy, 9, 0)}, nil)
	if id, _ := Resolve(gone, cache, seeker).ActorID(); id != 3 {
		t.Fatalf("expected fallback to 3 after 2 died, got %d", id)
	}

	removed := NewContext([]ActorSnapshot{snapshot(4, defs.KindEnemy, 20, 0)}, nil)
	if id, _ := Resolve(removed, cache, seeker).ActorID(); id != 4 {
		t.Fatalf("expected rescan to find 4, got %d", id)
	}
}

func TestCacheKeyedByMask(t *testing.T) {
	cache := NewCache()
	ctx := NewContext([]ActorSnapshot{
		snapshot(2, defs.KindEnemy, 5, 0),
		snapshot(3, defs.KindFriend, 6, 0),
	}, nil)

	Resolve(ctx, cache, Seeker{ID: 1, Flags: defs.FlagTargetNearestEnemy})
	target := Resolve(ctx, cache, Seeker{ID: 1, Flags: defs.FlagTargetNearestFriend})
	if id, _ := target.ActorID(); id != 3 {
		t.Fatalf("expected friend mask to resolve independently, got %d", id)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected two cache entries, got %d", cache.Len())
	}
}

func TestStillValid(t *testing.T) {
	ctx := NewContext([]ActorSnapshot{snapshot(2, defs.KindEnemy, 5, 0)}, nil)
	target := ActorTarget(snapshot(2, defs.KindEnemy, 0, 0))

	current, ok := StillValid(ctx, target, defs.MaskEnemy)
	if !ok || current.Pos.X != 5 {
		t.Fatalf("expected live refreshed target, got %+v ok=%v", current, ok)
	}
	if _, ok := StillValid(ctx, target, defs.MaskFriend); ok {
		t.Fatalf("expected ineligible kind to be rejected")
	}
	if _, ok := StillValid(ctx, PositionTarget(geom.V(1, 1)), 0); !ok {
		t.Fatalf("expected position targets to stay valid")
	}
}
