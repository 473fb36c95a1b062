package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"vira-wilds/sim/internal/world"
)

const (
	DefaultFrameRate = 60
	DefaultFrames    = 600
	// DefaultCatchupFrames caps how many frame budgets a single step may
	// cover after a stall.
	DefaultCatchupFrames = 4
)

// SpawnRequest asks for Count actors of template ID at scattered positions.
type SpawnRequest struct {
	ID    string
	Count int
}

// Config is the headless driver configuration.
type Config struct {
	// DefsDir is an on-disk definition root. Empty loads the bundled set.
	DefsDir   string
	FrameRate int
	// Frames is the number of frames to run; zero runs until cancelled.
	Frames        int
	CatchupFrames int
	World         world.Config
	Spawns        []SpawnRequest

	LogLevel    logrus.Level
	LogFormat   string
	LogJSONPath string
}

func DefaultConfig() Config {
	return Config{
		FrameRate:     DefaultFrameRate,
		Frames:        DefaultFrames,
		CatchupFrames: DefaultCatchupFrames,
		World:         world.DefaultConfig(),
		Spawns: []SpawnRequest{
			{ID: "virat", Count: 6},
			{ID: "stalker", Count: 2},
			{ID: "virabird", Count: 2},
			{ID: "villager", Count: 4},
			{ID: "crate", Count: 3},
		},
		LogLevel:  logrus.InfoLevel,
		LogFormat: "text",
	}
}

// ConfigFromEnv overlays environment variables on DefaultConfig. Invalid
// values are reported to logger and ignored.
func ConfigFromEnv(logger logrus.FieldLogger) Config {
	return configFromLookup(os.Getenv, logger)
}

func configFromLookup(getenv func(string) string, logger logrus.FieldLogger) Config {
	cfg := DefaultConfig()
	invalid := func(name, raw string, err error) {
		if logger != nil {
			logger.WithFields(logrus.Fields{"variable": name, "value": raw}).WithError(err).Warn("ignoring invalid environment value")
		}
	}

	cfg.DefsDir = strings.TrimSpace(getenv("DEFS_DIR"))

	positiveInt := func(name string, target *int, allowZero bool) {
		raw := getenv(name)
		if raw == "" {
			return
		}
		value, err := strconv.Atoi(raw)
		if err == nil && (value < 0 || (value == 0 && !allowZero)) {
			err = errors.New("must be positive")
		}
		if err != nil {
			invalid(name, raw, err)
			return
		}
		*target = value
	}
	positiveFloat := func(name string, target *float64) {
		raw := getenv(name)
		if raw == "" {
			return
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err == nil && value <= 0 {
			err = errors.New("must be positive")
		}
		if err != nil {
			invalid(name, raw, err)
			return
		}
		*target = value
	}

	positiveInt("FRAME_RATE", &cfg.FrameRate, false)
	positiveInt("FRAMES", &cfg.Frames, true)
	positiveInt("MAP_WIDTH", &cfg.World.Width, false)
	positiveInt("MAP_HEIGHT", &cfg.World.Height, false)
	positiveFloat("TILE_SIZE", &cfg.World.TileSize)
	positiveFloat("VIEW_HEIGHT", &cfg.World.ViewHeight)

	if raw := strings.TrimSpace(getenv("WORLD_SEED")); raw != "" {
		cfg.World.Seed = raw
	}
	if raw := getenv("SPAWN"); raw != "" {
		if spawns, err := ParseSpawns(raw); err == nil {
			cfg.Spawns = spawns
		} else {
			invalid("SPAWN", raw, err)
		}
	}
	if raw := getenv("LOG_LEVEL"); raw != "" {
		if level, err := logrus.ParseLevel(raw); err == nil {
			cfg.LogLevel = level
		} else {
			invalid("LOG_LEVEL", raw, err)
		}
	}
	if raw := strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT"))); raw != "" {
		if raw == "text" || raw == "json" {
			cfg.LogFormat = raw
		} else {
			invalid("LOG_FORMAT", raw, errors.New("want text or json"))
		}
	}
	cfg.LogJSONPath = strings.TrimSpace(getenv("LOG_JSON_PATH"))
	return cfg
}

// ParseSpawns reads a comma-separated "id:count" list. A bare id means one.
func ParseSpawns(raw string) ([]SpawnRequest, error) {
	var spawns []SpawnRequest
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, countText, hasCount := strings.Cut(part, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("app: spawn %q has no id", part)
		}
		count := 1
		if hasCount {
			value, err := strconv.Atoi(strings.TrimSpace(countText))
			if err != nil || value < 0 {
				return nil, fmt.Errorf("app: spawn %q has an invalid count", part)
			}
			count = value
		}
		spawns = append(spawns, SpawnRequest{ID: id, Count: count})
	}
	return spawns, nil
}
