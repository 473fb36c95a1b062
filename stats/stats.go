package stats

import (
	"math"
	"sort"
)

// Well-known stat keys read by the simulation core.
const (
	KeyHP     = "hp"
	KeySpeed  = "speed"
	KeyDamage = "damage"
)

// Layer describes the precedence order in which contributions are folded.
type Layer uint8

const (
	LayerBase Layer = iota
	LayerTrait

	LayerCount
)

// SourceKey identifies the origin of a contribution for deterministic ordering.
type SourceKey struct {
	Layer Layer
	ID    string
	Order int
}

// Contribution is one source's additive stat table.
type Contribution struct {
	Source SourceKey
	Stats  Block
}

// Block is a flat string-keyed table of additive stat values. The zero value
// is empty and ready to use.
type Block struct {
	values map[string]float64
}

// NewBlock copies values into a new block.
func NewBlock(values map[string]float64) Block {
	b := Block{}
	for key, value := range values {
		b.Add(key, value)
	}
	return b
}

// Add accumulates value onto key.
func (b *Block) Add(key string, value float64) {
	if b == nil {
		return
	}
	if b.values == nil {
		b.values = make(map[string]float64)
	}
	b.values[key] += value
}

// Merge adds every entry of other into b. Keys are folded in sorted order so
// repeated merges produce bit-identical totals.
func (b *Block) Merge(other Block) {
	if b == nil {
		return
	}
	for _, key := range other.Keys() {
		b.Add(key, other.values[key])
	}
}

// Get returns the value for key or def when the key is absent.
func (b Block) Get(key string, def float64) float64 {
	if value, ok := b.values[key]; ok {
		return value
	}
	return def
}

// Has reports whether key has an entry.
func (b Block) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Len reports the number of keys.
func (b Block) Len() int {
	return len(b.values)
}

// Keys returns the keys in ascending order.
func (b Block) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for key := range b.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy.
func (b Block) Clone() Block {
	return NewBlock(b.values)
}

// Map returns a copy of the underlying table.
func (b Block) Map() map[string]float64 {
	out := make(map[string]float64, len(b.values))
	for key, value := range b.values {
		out[key] = value
	}
	return out
}

// Aggregate folds base and the supplied contributions into one table. The
// fold order is by layer, then order, then id, independent of argument order.
func Aggregate(base Block, contributions ...Contribution) Block {
	total := base.Clone()
	if len(contributions) == 0 {
		return total
	}
	ordered := append([]Contribution(nil), contributions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Source, ordered[j].Source
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
	for _, contribution := range ordered {
		if contribution.Source.Layer >= LayerCount {
			continue
		}
		total.Merge(contribution.Stats)
	}
	return total
}

// MaxHealth derives the spawn health from an aggregated table.
func MaxHealth(b Block) float64 {
	return math.Max(b.Get(KeyHP, 1), 1)
}

// Speed derives the effective movement speed, falling back to the template's
// base speed when no trait or base stat sets one.
func Speed(b Block, templateSpeed float64) float64 {
	return math.Max(b.Get(KeySpeed, templateSpeed), 1)
}

// ApplyDamage subtracts amount from hp, floored at zero. Non-positive amounts
// leave hp unchanged.
func ApplyDamage(hp, amount float64) float64 {
	if amount <= 0 {
		return hp
	}
	return math.Max(hp-amount, 0)
}
