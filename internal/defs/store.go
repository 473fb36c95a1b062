package defs

import (
	"errors"
	"fmt"
	"sort"

	"vira-wilds/sim/stats"
)

var (
	// ErrMissingDefinition reports a reference to an unknown trait or behavior.
	ErrMissingDefinition = errors.New("defs: missing definition")
	// ErrDuplicateID reports two definitions of the same family sharing an id.
	ErrDuplicateID = errors.New("defs: duplicate id")
	// ErrInvalidDefinition reports a document that decodes but cannot be used.
	ErrInvalidDefinition = errors.New("defs: invalid definition")
)

// Store is the read-only catalog of traits, behaviors, and actor templates,
// addressable by index and by string id. It never changes after construction.
type Store struct {
	traits    []TraitDef
	behaviors []BehaviorDef
	templates []ActorTemplate

	traitLookup    map[string]int
	behaviorLookup map[string]int
	templateLookup map[string]int
}

// NewStore indexes the supplied definitions. Index fields are assigned from
// slice position; template trait indices must refer to traits.
func NewStore(traits []TraitDef, behaviors []BehaviorDef, templates []ActorTemplate) (*Store, error) {
	s := &Store{
		traits:         append([]TraitDef(nil), traits...),
		behaviors:      append([]BehaviorDef(nil), behaviors...),
		templates:      append([]ActorTemplate(nil), templates...),
		traitLookup:    make(map[string]int, len(traits)),
		behaviorLookup: make(map[string]int, len(behaviors)),
		templateLookup: make(map[string]int, len(templates)),
	}

	for i := range s.traits {
		def := &s.traits[i]
		def.Index = i
		if err := register(s.traitLookup, "trait", def.ID, i); err != nil {
			return nil, err
		}
	}
	for i := range s.behaviors {
		def := &s.behaviors[i]
		def.Index = i
		if err := register(s.behaviorLookup, "behavior", def.ID, i); err != nil {
			return nil, err
		}
		if def.Tree == nil {
			return nil, fmt.Errorf("%w: behavior %q has no tree", ErrInvalidDefinition, def.ID)
		}
	}
	for i := range s.templates {
		def := &s.templates[i]
		def.Index = i
		if err := register(s.templateLookup, "actor", def.ID, i); err != nil {
			return nil, err
		}
		if def.Hitbox.W < 0 || def.Hitbox.H < 0 {
			return nil, fmt.Errorf("%w: actor %q has a negative hitbox size", ErrInvalidDefinition, def.ID)
		}
		for _, idx := range def.Traits {
			if idx < 0 || idx >= len(s.traits) {
				return nil, fmt.Errorf("%w: actor %q trait index %d", ErrMissingDefinition, def.ID, idx)
			}
		}
		if def.Name == "" {
			def.Name = def.ID
		}
	}
	return s, nil
}

func register(lookup map[string]int, family, id string, index int) error {
	if id == "" {
		return fmt.Errorf("%w: %s at index %d has no id", ErrInvalidDefinition, family, index)
	}
	if _, exists := lookup[id]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateID, family, id)
	}
	lookup[id] = index
	return nil
}

// Empty returns a store with no definitions.
func Empty() *Store {
	s, _ := NewStore(nil, nil, nil)
	return s
}

// Template returns the template at index.
func (s *Store) Template(index int) (*ActorTemplate, bool) {
	if s == nil || index < 0 || index >= len(s.templates) {
		return nil, false
	}
	return &s.templates[index], true
}

// TemplateByID returns the template registered under id.
func (s *Store) TemplateByID(id string) (*ActorTemplate, bool) {
	if s == nil {
		return nil, false
	}
	index, ok := s.templateLookup[id]
	if !ok {
		return nil, false
	}
	return &s.templates[index], true
}

// TemplateCount reports the number of templates.
func (s *Store) TemplateCount() int {
	if s == nil {
		return 0
	}
	return len(s.templates)
}

// TemplateIDs lists template ids in ascending order.
func (s *Store) TemplateIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.templateLookup))
	for id := range s.templateLookup {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Trait returns the trait at index.
func (s *Store) Trait(index int) (*TraitDef, bool) {
	if s == nil || index < 0 || index >= len(s.traits) {
		return nil, false
	}
	return &s.traits[index], true
}

// TraitByID returns the trait registered under id.
func (s *Store) TraitByID(id string) (*TraitDef, bool) {
	if s == nil {
		return nil, false
	}
	index, ok := s.traitLookup[id]
	if !ok {
		return nil, false
	}
	return &s.traits[index], true
}

// TraitCount reports the number of traits.
func (s *Store) TraitCount() int {
	if s == nil {
		return 0
	}
	return len(s.traits)
}

// Behavior returns the behavior at index.
func (s *Store) Behavior(index int) (*BehaviorDef, bool) {
	if s == nil || index < 0 || index >= len(s.behaviors) {
		return nil, false
	}
	return &s.behaviors[index], true
}

// BehaviorByID returns the behavior registered under id.
func (s *Store) BehaviorByID(id string) (*BehaviorDef, bool) {
	if s == nil {
		return nil, false
	}
	index, ok := s.behaviorLookup[id]
	if !ok {
		return nil, false
	}
	return &s.behaviors[index], true
}

// BehaviorCount reports the number of behaviors.
func (s *Store) BehaviorCount() int {
	if s == nil {
		return 0
	}
	return len(s.behaviors)
}

// SpawnStats folds a template's base stats with its traits' contributions.
func (s *Store) SpawnStats(t *ActorTemplate) stats.Block {
	if t == nil {
		return stats.Block{}
	}
	contributions := make([]stats.Contribution, 0, len(t.Traits))
	for order, idx := range t.Traits {
		def, ok := s.Trait(idx)
		if !ok {
			continue
		}
		contributions = append(contributions, stats.Contribution{
			Source: stats.SourceKey{Layer: stats.LayerTrait, ID: def.ID, Order: order},
			Stats:  def.Stats,
		})
	}
	return stats.Aggregate(t.Stats, contributions...)
}

// ComposeFlags derives the flag bitmask and terrain collision setting from a
// template's traits. collides is the authored value before trait overrides.
func ComposeFlags(traits []*TraitDef, collides bool) (Flags, bool) {
	var flags Flags
	for _, def := range traits {
		if def == nil {
			continue
		}
		for _, name := range def.Flags {
			if bit, ok := ParseFlag(name); ok {
				flags |= bit
			}
			if name == FlagNoMapCollision {
				collides = false
			}
		}
	}
	return flags, collides
}
