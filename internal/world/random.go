package world

import (
	"hash/fnv"
	"math"
	"math/rand"

	"vira-wilds/sim/internal/geom"
)

// DeterministicSeedValue derives a stable per-subsystem seed from the world
// seed and a label.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}

func RandomFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return NewDeterministicRNG(DefaultSeed, "world").Float64()
	}
	return rng.Float64()
}

func RandomAngle(rng *rand.Rand) float64 {
	return RandomFloat(rng) * 2 * math.Pi
}

// RandomPoint picks a point inside bounds shrunk by margin on every side.
func RandomPoint(rng *rand.Rand, bounds geom.Rect, margin float64) geom.Vec2 {
	minX, maxX := bounds.X+margin, bounds.Right()-margin
	minY, maxY := bounds.Y+margin, bounds.Bottom()-margin
	if maxX < minX {
		minX, maxX = bounds.Center().X, bounds.Center().X
	}
	if maxY < minY {
		minY, maxY = bounds.Center().Y, bounds.Center().Y
	}
	return geom.V(
		minX+RandomFloat(rng)*(maxX-minX),
		minY+RandomFloat(rng)*(maxY-minY),
	)
}
