package targeting

import (
	"vira-wilds/sim/internal/defs"
	"vira-wilds/sim/internal/geom"
)

// Seeker identifies the actor a target is resolved for.
type Seeker struct {
	ID    uint64
	Pos   geom.Vec2
	Flags defs.Flags
}

type cacheKey struct {
	actor uint64
	mask  defs.TargetMask
}

type cacheEntry struct {
	actor uint64
	found bool
}

// Cache remembers nearest-target results per (actor, mask) across frames.
// A recorded "no target" is sticky until the entry is forgotten.
type Cache struct {
	entries map[cacheKey]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// Forget drops every entry owned by actor, forcing a rescan next frame.
func (c *Cache) Forget(actor uint64) {
	if c == nil {
		return
	}
	for key := range c.entries {
		if key.actor == actor {
			delete(c.entries, key)
		}
	}
}

// Reset drops every entry.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	clear(c.entries)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func (c *Cache) lookup(key cacheKey) (cacheEntry, bool) {
	if c == nil || c.entries == nil {
		return cacheEntry{}, false
	}
	entry, ok := c.entries[key]
	return entry, ok
}

func (c *Cache) store(key cacheKey, entry cacheEntry) {
	if c == nil {
		return
	}
	if c.entries == nil {
		c.entries = make(map[cacheKey]cacheEntry)
	}
	c.entries[key] = entry
}

// Resolve picks this frame's target for self. A forced target wins, then the
// player for target_player actors, then the nearest eligible actor under the
// seeker's target mask. A nil cache disables caching.
func Resolve(ctx *Context, cache *Cache, self Seeker) Target {
	if forced, ok := ctx.Forced(); ok {
		return forced
	}
	if self.Flags.TargetsPlayer() {
		if player, ok := ctx.LivePlayer(); ok {
			return PlayerTarget(player)
		}
		return None
	}

	mask := self.Flags.TargetMask()
	if mask == 0 {
		return None
	}

	key := cacheKey{actor: self.ID, mask: mask}
	if entry, ok := cache.lookup(key); ok {
		if !entry.found {
			return None
		}
		if current, live := ctx.Lookup(entry.actor); live && current.Alive && mask.Eligible(current.Kind) {
			return ActorTarget(current)
		}
	}

	nearest, found := scan(ctx, self, mask)
	if !found {
		cache.store(key, cacheEntry{})
		return None
	}
	cache.store(key, cacheEntry{actor: nearest.ID, found: true})
	return ActorTarget(nearest)
}

func scan(ctx *Context, self Seeker, mask defs.TargetMask) (ActorSnapshot, bool) {
	var (
		best   ActorSnapshot
		bestSq float64
		found  bool
	)
	for _, candidate := range ctx.Actors() {
		if candidate.ID == self.ID || !candidate.Alive || !mask.Eligible(candidate.Kind) {
			continue
		}
		distSq := self.Pos.DistSq(candidate.Pos)
		if !found || distSq < bestSq {
			best, bestSq, found = candidate, distSq, true
		}
	}
	return best, found
}

// StillValid reports whether an actor target still refers to a live actor of
// an eligible kind in ctx. Non-actor targets are always valid.
func StillValid(ctx *Context, target Target, mask defs.TargetMask) (Target, bool) {
	id, ok := target.ActorID()
	if !ok {
		return target, target.Valid()
	}
	current, live := ctx.Lookup(id)
	if !live || !current.Alive || !mask.Eligible(current.Kind) {
		return None, false
	}
	return ActorTarget(current), true
}
