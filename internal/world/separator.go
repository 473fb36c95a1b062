package world

import (
	"math"

	"vira-wilds/sim/internal/geom"
)

// SeparationEpsilon is the extra push added on top of half the penetration
// so separated pairs end up strictly apart.
const SeparationEpsilon = 1e-3

const separatorMinExtentFrac = 0.25

// Separable is one actor as seen by the overlap separator. Hitbox is local to
// Pos and Def identifies the actor's definition for collidability.
type Separable struct {
	Pos    geom.Vec2
	Hitbox geom.Rect
	Def    int
}

func (s Separable) world() geom.Rect {
	return s.Hitbox.Offset(s.Pos)
}

// CollidableFunc reports whether actors of two definitions push each other.
// It must be symmetric and depend only on the definitions.
type CollidableFunc func(a, b int) bool

type cellKey struct {
	X int
	Y int
}

type defPair struct {
	lo, hi int
}

func pairOf(a, b int) defPair {
	if a > b {
		a, b = b, a
	}
	return defPair{lo: a, hi: b}
}

// Separator pushes overlapping actors apart after they have all moved. It
// keeps its spatial buckets and collidability cache between frames.
type Separator struct {
	cellSize    float64
	invCellSize float64
	passes      int

	cells  map[cellKey][]int
	stamps []uint32
	stamp  uint32
	pairs  map[defPair]bool
}

func NewSeparator(cellSize float64, passes int) *Separator {
	if cellSize <= 0 {
		cellSize = DefaultSeparatorCell
	}
	if passes <= 0 || passes > DefaultSeparatorPasses {
		passes = DefaultSeparatorPasses
	}
	return &Separator{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		passes:      passes,
		cells:       make(map[cellKey][]int),
		pairs:       make(map[defPair]bool),
	}
}

func (s *Separator) collidable(a, b int, fn CollidableFunc) bool {
	key := pairOf(a, b)
	if ok, cached := s.pairs[key]; cached {
		return ok
	}
	ok := fn == nil || fn(a, b)
	s.pairs[key] = ok
	return ok
}

// Separate runs up to the configured number of passes over bodies, moving
// overlapping collidable pairs apart along their shallower axis and keeping
// every moved body inside bounds (when non-empty). It stops early after a pass with no
// corrections and returns the number of corrections made.
func (s *Separator) Separate(bodies []Separable, bounds geom.Rect, collidable CollidableFunc) int {
	if s == nil || len(bodies) < 2 {
		return 0
	}
	if cap(s.stamps) < len(bodies) {
		s.stamps = make([]uint32, len(bodies))
	}
	s.stamps = s.stamps[:len(bodies)]

	total := 0
	for pass := 0; pass < s.passes; pass++ {
		s.rebuild(bodies)
		corrections := 0
		for i := range bodies {
			s.nextStamp()
			s.stamps[i] = s.stamp
			s.forEachCell(bodies[i].world(), func(key cellKey) {
				for _, j := range s.cells[key] {
					if s.stamps[j] == s.stamp {
						continue
					}
					s.stamps[j] = s.stamp
					if j < i {
						continue
					}
					if !s.collidable(bodies[i].Def, bodies[j].Def, collidable) {
						continue
					}
					if separatePair(&bodies[i], &bodies[j], bounds) {
						corrections++
					}
				}
			})
		}
		total += corrections
		if corrections == 0 {
			break
		}
	}
	return total
}

func (s *Separator) nextStamp() {
	s.stamp++
	if s.stamp == 0 {
		clear(s.stamps)
		s.stamp = 1
	}
}

func (s *Separator) rebuild(bodies []Separable) {
	for key, bucket := range s.cells {
		if len(bucket) == 0 {
			delete(s.cells, key)
			continue
		}
		s.cells[key] = bucket[:0]
	}
	for i := range bodies {
		s.forEachCell(bodies[i].world(), func(key cellKey) {
			s.cells[key] = append(s.cells[key], i)
		})
	}
}

func (s *Separator) forEachCell(rect geom.Rect, fn func(cellKey)) {
	minExtent := s.cellSize * separatorMinExtentFrac
	width := math.Max(math.Abs(rect.W), minExtent)
	height := math.Max(math.Abs(rect.H), minExtent)
	minX := s.coordToCell(rect.X)
	minY := s.coordToCell(rect.Y)
	maxX := s.coordToCell(rect.X + width)
	maxY := s.coordToCell(rect.Y + height)
	for row := minY; row <= maxY; row++ {
		for col := minX; col <= maxX; col++ {
			fn(cellKey{X: col, Y: row})
		}
	}
}

func (s *Separator) coordToCell(value float64) int {
	return int(math.Floor(value * s.invCellSize))
}

// separatePair splits the correction for an overlapping pair equally. The
// body whose center is further left (or up) moves in the negative direction;
// on a tie the first body does.
func separatePair(a, b *Separable, bounds geom.Rect) bool {
	ra, rb := a.world(), b.world()
	if !ra.Overlaps(rb) {
		return false
	}
	penX := math.Min(ra.Right(), rb.Right()) - math.Max(ra.X, rb.X)
	penY := math.Min(ra.Bottom(), rb.Bottom()) - math.Max(ra.Y, rb.Y)
	ca, cb := ra.Center(), rb.Center()

	if penX <= penY {
		push := penX/2 + SeparationEpsilon
		if ca.X > cb.X {
			push = -push
		}
		a.Pos.X -= push
		b.Pos.X += push
	} else {
		push := penY/2 + SeparationEpsilon
		if ca.Y > cb.Y {
			push = -push
		}
		a.Pos.Y -= push
		b.Pos.Y += push
	}
	if bounds.W > 0 && bounds.H > 0 {
		a.Pos = geom.ClampRect(a.Hitbox, a.Pos, bounds)
		b.Pos = geom.ClampRect(b.Hitbox, b.Pos, bounds)
	}
	return true
}
