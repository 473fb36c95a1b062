package targeting

// Context is the read-only view of the world every actor resolves against
// during one frame. It is built from copies and never aliases live actors.
type Context struct {
	actors []ActorSnapshot
	index  map[uint64]int
	player *PlayerSnapshot
	forced *Target
}

// NewContext indexes the frame snapshot. A nil player means none is present.
func NewContext(actors []ActorSnapshot, player *PlayerSnapshot) *Context {
	ctx := &Context{
		actors: actors,
		index:  make(map[uint64]int, len(actors)),
	}
	for i := range actors {
		ctx.index[actors[i].ID] = i
	}
	if player != nil {
		p := *player
		ctx.player = &p
	}
	return ctx
}

// WithForcedTarget returns a copy of the context in which every actor
// resolves to target.
func (c *Context) WithForcedTarget(target Target) *Context {
	if c == nil {
		c = NewContext(nil, nil)
	}
	next := *c
	next.forced = &target
	return &next
}

// Actors returns the frame snapshot. Callers must not modify it.
func (c *Context) Actors() []ActorSnapshot {
	if c == nil {
		return nil
	}
	return c.actors
}

// Lookup returns the snapshot for id.
func (c *Context) Lookup(id uint64) (ActorSnapshot, bool) {
	if c == nil {
		return ActorSnapshot{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return ActorSnapshot{}, false
	}
	return c.actors[i], true
}

// Player returns the player snapshot when one is present.
func (c *Context) Player() (PlayerSnapshot, bool) {
	if c == nil || c.player == nil {
		return PlayerSnapshot{}, false
	}
	return *c.player, true
}

// LivePlayer returns the player only while they are alive.
func (c *Context) LivePlayer() (PlayerSnapshot, bool) {
	p, ok := c.Player()
	if !ok || !p.Alive {
		return PlayerSnapshot{}, false
	}
	return p, true
}

// Forced returns the externally forced target, if any.
func (c *Context) Forced() (Target, bool) {
	if c == nil || c.forced == nil {
		return Target{}, false
	}
	return *c.forced, true
}
