package app

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"vira-wilds/sim/logging"
	loggingsimulation "vira-wilds/sim/logging/simulation"
)

func lookup(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg := configFromLookup(lookup(nil), nil)
	if cfg.FrameRate != DefaultFrameRate || cfg.Frames != DefaultFrames {
		t.Fatalf("expected default frame settings, got %d/%d", cfg.FrameRate, cfg.Frames)
	}
	if cfg.World.Seed != "wilds" || cfg.World.TileSize != 32 {
		t.Fatalf("unexpected default world %+v", cfg.World)
	}
	if len(cfg.Spawns) == 0 {
		t.Fatalf("expected default spawns")
	}
	if cfg.LogLevel != logrus.InfoLevel || cfg.LogFormat != "text" {
		t.Fatalf("unexpected log defaults %v/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	cfg := configFromLookup(lookup(map[string]string{
		"DEFS_DIR":      " ./content ",
		"FRAME_RATE":    "30",
		"FRAMES":        "0",
		"WORLD_SEED":    "mossy",
		"MAP_WIDTH":     "40",
		"MAP_HEIGHT":    "20",
		"TILE_SIZE":     "16",
		"VIEW_HEIGHT":   "240",
		"SPAWN":         "virat:3, crate",
		"LOG_LEVEL":     "debug",
		"LOG_FORMAT":    "JSON",
		"LOG_JSON_PATH": "events.jsonl.zst",
	}), nil)

	if cfg.DefsDir != "./content" || cfg.FrameRate != 30 || cfg.Frames != 0 {
		t.Fatalf("unexpected driver config %+v", cfg)
	}
	if cfg.World.Seed != "mossy" || cfg.World.Width != 40 || cfg.World.Height != 20 {
		t.Fatalf("unexpected world %+v", cfg.World)
	}
	if cfg.World.TileSize != 16 || cfg.World.ViewHeight != 240 {
		t.Fatalf("unexpected world scale %+v", cfg.World)
	}
	if len(cfg.Spawns) != 2 || cfg.Spawns[0] != (SpawnRequest{ID: "virat", Count: 3}) || cfg.Spawns[1] != (SpawnRequest{ID: "crate", Count: 1}) {
		t.Fatalf("unexpected spawns %+v", cfg.Spawns)
	}
	if cfg.LogLevel != logrus.DebugLevel || cfg.LogFormat != "json" || cfg.LogJSONPath != "events.jsonl.zst" {
		t.Fatalf("unexpected logging config %+v", cfg)
	}
}

func TestConfigFromEnvIgnoresInvalidValues(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	cfg := configFromLookup(lookup(map[string]string{
		"FRAME_RATE": "fast",
		"FRAMES":     "-2",
		"TILE_SIZE":  "0",
		"SPAWN":      "virat:many",
		"LOG_LEVEL":  "loud",
		"LOG_FORMAT": "xml",
	}), logger)

	if cfg.FrameRate != DefaultFrameRate || cfg.Frames != DefaultFrames || cfg.World.TileSize != 32 {
		t.Fatalf("expected defaults to survive invalid values, got %+v", cfg)
	}
	if cfg.LogLevel != logrus.InfoLevel || cfg.LogFormat != "text" {
		t.Fatalf("expected log defaults to survive, got %v/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if got := len(hook.AllEntries()); got != 6 {
		t.Fatalf("expected 6 warnings, got %d", got)
	}
	if entry := hook.AllEntries()[0]; entry.Level != logrus.WarnLevel || entry.Data["variable"] != "FRAME_RATE" {
		t.Fatalf("unexpected first warning %+v", entry.Data)
	}
}

func TestParseSpawns(t *testing.T) {
	spawns, err := ParseSpawns(" virat:2 ,, stalker:0,wisp ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []SpawnRequest{{ID: "virat", Count: 2}, {ID: "stalker", Count: 0}, {ID: "wisp", Count: 1}}
	if len(spawns) != len(want) {
		t.Fatalf("expected %d spawns, got %+v", len(want), spawns)
	}
	for i := range want {
		if spawns[i] != want[i] {
			t.Fatalf("spawn %d: expected %+v, got %+v", i, want[i], spawns[i])
		}
	}

	for _, raw := range []string{":3", "virat:-1", "virat:x"} {
		if _, err := ParseSpawns(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestSimulateRunsRequestedFrames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameRate = 500
	cfg.Frames = 5
	cfg.Spawns = []SpawnRequest{{ID: "virat", Count: 3}, {ID: "crate", Count: 2}, {ID: "dragon", Count: 4}}

	var events []logging.Event
	pub := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		events = append(events, event)
	})
	logger, _ := logtest.NewNullLogger()

	summary, err := Simulate(context.Background(), cfg, logger, pub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Frames != 5 {
		t.Fatalf("expected 5 frames, got %d", summary.Frames)
	}
	if summary.Obstacles == 0 {
		t.Fatalf("expected the generated border to produce obstacles")
	}
	if summary.Spawned != 5 {
		t.Fatalf("expected 5 spawned actors, got %d", summary.Spawned)
	}
	if summary.LiveActors+summary.Removed != 5 {
		t.Fatalf("expected spawned actors accounted for, got %+v", summary)
	}

	spawned, rejected := 0, 0
	for _, event := range events {
		switch event.Type {
		case loggingsimulation.EventActorSpawned:
			spawned++
		case loggingsimulation.EventSpawnRejected:
			rejected++
		}
	}
	if spawned != 5 || rejected != 1 {
		t.Fatalf("expected 5 spawn events and 1 rejection, got %d and %d", spawned, rejected)
	}
}

func TestSimulateStopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frames = 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, _ := logtest.NewNullLogger()
	summary, err := Simulate(ctx, cfg, logger, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Frames != 0 {
		t.Fatalf("expected no frames after cancel, got %d", summary.Frames)
	}
}

func TestSimulateReportsMissingDefinitions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefsDir = t.TempDir() + "/missing"
	logger, _ := logtest.NewNullLogger()
	if _, err := Simulate(context.Background(), cfg, logger, nil); err == nil {
		t.Fatalf("expected an error for a missing definitions directory")
	}
}
