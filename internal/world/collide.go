package world

import (
	"math"

	"vira-wilds/sim/internal/geom"
)

// CollisionEpsilon is the gap left between a resolved hitbox and the
// obstacle it was pushed out of.
const CollisionEpsilon = 1e-3

const (
	minProbeRadius = 1
	maxProbeRadius = 4
)

// Axis selects the X or Y component.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) of(v geom.Vec2) float64 {
	if a == AxisX {
		return v.X
	}
	return v.Y
}

func (a Axis) set(v *geom.Vec2, value float64) {
	if a == AxisX {
		v.X = value
	} else {
		v.Y = value
	}
}

// ResolveAxis pushes the world hitbox box out of every obstacle it overlaps,
// moving only along axis and against the direction of motion. Without motion
// on that axis it takes the shorter way out. It returns the correction to add
// to the position and whether any obstacle was hit. A box that overlaps
// nothing comes back with a zero correction.
func ResolveAxis(axis Axis, box geom.Rect, motion float64, obstacles []geom.Rect) (float64, bool) {
	var shift float64
	hit := false
	for _, obs := range obstacles {
		if !box.Overlaps(obs) {
			continue
		}
		var lo, hi, obsLo, obsHi float64
		if axis == AxisX {
			lo, hi, obsLo, obsHi = box.X, box.Right(), obs.X, obs.Right()
		} else {
			lo, hi, obsLo, obsHi = box.Y, box.Bottom(), obs.Y, obs.Bottom()
		}
		back := obsLo - CollisionEpsilon - hi
		forward := obsHi + CollisionEpsilon - lo
		var delta float64
		switch {
		case motion > 0:
			delta = back
		case motion < 0:
			delta = forward
		case -back <= forward:
			delta = back
		default:
			delta = forward
		}
		if axis == AxisX {
			box.X += delta
		} else {
			box.Y += delta
		}
		shift += delta
		hit = true
	}
	return shift, hit
}

// Body is the moving part of an actor as the sweep sees it. Hitbox is local
// to Pos.
type Body struct {
	Pos    geom.Vec2
	Vel    geom.Vec2
	Hitbox geom.Rect
}

// ProbeRadius is how many tiles around the mover are gathered for a step of
// the given speed. Fast movers look farther so they cannot skip a tile.
func ProbeRadius(speed, dt, tileSize float64) int {
	reach := 1 + int(math.Ceil(math.Abs(speed)*dt/math.Max(tileSize, 1)))
	if reach < minProbeRadius {
		return minProbeRadius
	}
	if reach > maxProbeRadius {
		return maxProbeRadius
	}
	return reach
}

// Sweep advances b by Vel*dt, X first and then Y, resolving each axis
// against nearby solid tiles (only when collides) and the dynamic rectangles.
// Resolving X fully before Y can let very fast movers clip a corner; that is
// the accepted contract. scratch is reused for tile gathering and returned.
func Sweep(b *Body, dt float64, terrain Terrain, collides bool, dynamic []geom.Rect, scratch []geom.Rect) []geom.Rect {
	if !collides && len(dynamic) == 0 {
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
		return scratch
	}
	for _, axis := range [...]Axis{AxisX, AxisY} {
		motion := axis.of(b.Vel) * dt
		axis.set(&b.Pos, axis.of(b.Pos)+motion)

		scratch = scratch[:0]
		if collides && terrain != nil {
			if cell, ok := terrain.GridIndex(b.Hitbox.Offset(b.Pos).Center()); ok {
				radius := ProbeRadius(b.Vel.Len(), dt, terrain.TileSize())
				scratch = terrain.SolidAround(cell, radius, scratch)
			}
		}
		scratch = append(scratch, dynamic...)

		shift, hit := ResolveAxis(axis, b.Hitbox.Offset(b.Pos), motion, scratch)
		if hit {
			axis.set(&b.Pos, axis.of(b.Pos)+shift)
			axis.set(&b.Vel, 0)
		}
	}
	return scratch
}
