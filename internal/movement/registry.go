package movement

import (
	"sort"
	"sync"
)

// Registry maps action names to behaviors. It is built once at startup and
// read concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	behaviors map[string]Behavior
}

// NewRegistry returns a registry preloaded with the built-in behaviors.
func NewRegistry() *Registry {
	r := &Registry{behaviors: make(map[string]Behavior)}
	r.Register(Idle, Func(idle))
	r.Register(Wander, Func(wander))
	r.Register(Seek, Func(seek))
	r.Register(Flee, Func(flee))
	r.Register(DashAtTarget, dashAtTarget{})
	r.Register(VirabirdAI, virabird{})
	return r
}

// Register binds name to b, replacing any earlier binding.
func (r *Registry) Register(name string, b Behavior) {
	if r == nil || name == "" || b == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.behaviors == nil {
		r.behaviors = make(map[string]Behavior)
	}
	r.behaviors[name] = b
}

// Lookup resolves name to its behavior.
func (r *Registry) Lookup(name string) (Behavior, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.behaviors[name]
	return b, ok
}

// Has reports whether name has an implementation.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names lists registered action names in ascending order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.behaviors))
	for name := range r.behaviors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
