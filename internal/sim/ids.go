package sim

// IDGenerator hands out actor ids in increasing order, starting at 1. Ids
// are never reused.
type IDGenerator struct {
	last uint64
}

// NewIDGenerator starts after last.
func NewIDGenerator(last uint64) *IDGenerator {
	return &IDGenerator{last: last}
}

func (g *IDGenerator) Next() uint64 {
	g.last++
	return g.last
}

// Last reports the most recently issued id.
func (g *IDGenerator) Last() uint64 {
	return g.last
}
