package world

import "strings"

const (
	DefaultSeed            = "wilds"
	DefaultWidth           = 64
	DefaultHeight          = 64
	DefaultTileSize        = 32.0
	DefaultSeparatorCell   = 64.0
	DefaultSeparatorPasses = 3 // also the upper bound
	DefaultViewHeight      = 360.0
	DefaultObstacleDensity = 0.04
)

// Config describes the terrain and collision tuning for one simulation.
// Width and Height are in tiles.
type Config struct {
	Seed            string  `json:"seed"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	TileSize        float64 `json:"tileSize"`
	ObstacleDensity float64 `json:"obstacleDensity"`
	SeparatorCell   float64 `json:"separatorCell"`
	SeparatorPasses int     `json:"separatorPasses"`
	ViewHeight      float64 `json:"viewHeight"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.Width <= 0 {
		normalized.Width = DefaultWidth
	}
	if normalized.Height <= 0 {
		normalized.Height = DefaultHeight
	}
	if normalized.TileSize <= 0 {
		normalized.TileSize = DefaultTileSize
	}
	if normalized.ObstacleDensity < 0 {
		normalized.ObstacleDensity = 0
	}
	if normalized.ObstacleDensity > 1 {
		normalized.ObstacleDensity = 1
	}
	if normalized.SeparatorCell <= 0 {
		normalized.SeparatorCell = DefaultSeparatorCell
	}
	if normalized.SeparatorPasses <= 0 {
		normalized.SeparatorPasses = DefaultSeparatorPasses
	}
	if normalized.SeparatorPasses > DefaultSeparatorPasses {
		normalized.SeparatorPasses = DefaultSeparatorPasses
	}
	if normalized.ViewHeight <= 0 {
		normalized.ViewHeight = DefaultViewHeight
	}
	return normalized
}

// Normalized fills unset fields with defaults and clamps the rest.
func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func DefaultConfig() Config {
	return Config{
		Seed:            DefaultSeed,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		TileSize:        DefaultTileSize,
		ObstacleDensity: DefaultObstacleDensity,
		SeparatorCell:   DefaultSeparatorCell,
		SeparatorPasses: DefaultSeparatorPasses,
		ViewHeight:      DefaultViewHeight,
	}
}
