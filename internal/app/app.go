package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vira-wilds/sim/internal/defs"
	"vira-wilds/sim/internal/geom"
	"vira-wilds/sim/internal/sim"
	"vira-wilds/sim/internal/world"
	"vira-wilds/sim/logging"
	loggingsimulation "vira-wilds/sim/logging/simulation"
	loggingsinks "vira-wilds/sim/logging/sinks"
)

const (
	playerHalf      = 14.0
	playerMaxHealth = 100.0
	spawnAttempts   = 8
)

// Summary reports what a headless run did.
type Summary struct {
	RunID        string
	Frames       int
	Spawned      int
	Obstacles    int
	Removed      int
	PlayerDamage float64
	PlayerAlive  bool
	Overruns     int
	LiveActors   int
}

// Run wires logging and drives the simulation headless until cfg.Frames
// frames have run or ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	runID := uuid.NewString()
	logConfig := logging.DefaultConfig()
	logConfig.Console.Format = cfg.LogFormat
	logConfig.Fields = map[string]any{"run": runID}
	sinks := map[string]logging.Sink{
		"console": loggingsinks.NewConsole(os.Stdout, logConfig.Console),
	}
	if cfg.LogJSONPath != "" {
		jsonSink, err := loggingsinks.OpenJSONFile(cfg.LogJSONPath, logConfig.JSON.FlushInterval)
		if err != nil {
			return fmt.Errorf("app: open event log: %w", err)
		}
		logConfig.JSON.FilePath = cfg.LogJSONPath
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, "json")
		sinks["json"] = jsonSink
	}

	router, err := logging.NewRouter(logConfig, logging.SystemClock{}, logger, sinks)
	if err != nil {
		return fmt.Errorf("app: construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(context.Background()); cerr != nil {
			logger.WithError(cerr).Warn("failed to close logging router")
		}
	}()

	log := logger.WithField("run", runID)
	summary, err := Simulate(ctx, cfg, log, router)
	if err != nil {
		return err
	}
	summary.RunID = runID
	log.WithFields(logrus.Fields{
		"frames":       summary.Frames,
		"spawned":      summary.Spawned,
		"removed":      summary.Removed,
		"live":         summary.LiveActors,
		"playerDamage": summary.PlayerDamage,
		"playerAlive":  summary.PlayerAlive,
		"overruns":     summary.Overruns,
	}).Info("simulation finished")
	return nil
}

// Simulate loads definitions, builds the world, spawns cfg.Spawns, and steps
// the simulation at cfg.FrameRate.
func Simulate(ctx context.Context, cfg Config, logger logrus.FieldLogger, pub logging.Publisher) (Summary, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if pub == nil {
		pub = logging.NopPublisher()
	}
	frameRate := cfg.FrameRate
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}

	store, err := loadStore(cfg.DefsDir, logger)
	if err != nil {
		return Summary{}, err
	}
	worldCfg := cfg.World.Normalized()
	grid := world.GenerateGrid(worldCfg)
	simulation := sim.New(sim.Options{
		Store:     store,
		World:     worldCfg,
		Terrain:   grid,
		Publisher: pub,
		Logger:    logger,
	})

	summary := Summary{PlayerAlive: true, Obstacles: len(grid.CollisionBlocks())}
	summary.Spawned = spawnAll(simulation, grid, worldCfg, cfg.Spawns)
	logger.WithFields(logrus.Fields{
		"templates": store.TemplateCount(),
		"spawned":   summary.Spawned,
		"obstacles": summary.Obstacles,
		"seed":      worldCfg.Seed,
	}).Info("simulation ready")

	bounds := grid.Bounds()
	centre := bounds.Center()
	player := sim.PlayerState{
		Pos:    centre,
		Hitbox: geom.R(-playerHalf, -playerHalf, playerHalf*2, playerHalf*2).Offset(centre),
		Alive:  true,
	}
	playerHealth := playerMaxHealth

	clock := logging.SystemClock{}
	budget := time.Second / time.Duration(frameRate)
	budgetSeconds := budget.Seconds()
	maxDT := budgetSeconds
	if cfg.CatchupFrames > 1 {
		maxDT = budgetSeconds * float64(cfg.CatchupFrames)
	}
	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	var streak uint64
	last := clock.Now()
loop:
	for cfg.Frames == 0 || summary.Frames < cfg.Frames {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
		}

		now := clock.Now()
		dt := now.Sub(last).Seconds()
		if dt <= 0 {
			dt = budgetSeconds
		} else if dt > maxDT {
			dt = maxDT
		}
		last = now

		start := clock.Now()
		result := simulation.Step(dt, sim.FrameInput{Player: &player})
		outcome := simulation.ApplyDamage(ctx, result.DamageEvents)
		duration := clock.Now().Sub(start)

		summary.Frames++
		summary.Removed += len(result.Removed) + len(outcome.Removed)
		if outcome.PlayerDamage > 0 && player.Alive {
			summary.PlayerDamage += outcome.PlayerDamage
			playerHealth -= outcome.PlayerDamage
			if playerHealth <= 0 {
				player.Alive = false
				summary.PlayerAlive = false
				logger.WithField("tick", result.Tick).Info("player defeated")
			}
		}

		if duration > budget {
			streak++
			summary.Overruns++
			loggingsimulation.FrameBudgetOverrun(ctx, pub, result.Tick, loggingsimulation.FrameBudgetOverrunPayload{
				DurationMillis: float64(duration) / float64(time.Millisecond),
				BudgetMillis:   float64(budget) / float64(time.Millisecond),
				Ratio:          float64(duration) / float64(budget),
				Streak:         streak,
			})
		} else {
			streak = 0
		}
	}
	summary.LiveActors = len(simulation.Actors())
	return summary, nil
}

func loadStore(dir string, logger logrus.FieldLogger) (*defs.Store, error) {
	opts := defs.LoadOptions{Logger: logger}
	if dir == "" {
		store, err := defs.LoadDefault(opts)
		if err != nil {
			return nil, fmt.Errorf("app: load bundled definitions: %w", err)
		}
		return store, nil
	}
	store, err := defs.LoadDir(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("app: load definitions: %w", err)
	}
	return store, nil
}

// spawnAll scatters the requested actors over open terrain and returns how
// many were placed.
func spawnAll(simulation *sim.Simulation, grid *world.Grid, cfg world.Config, requests []SpawnRequest) int {
	rng := world.NewDeterministicRNG(cfg.Seed, "spawn.scatter")
	bounds := grid.Bounds()
	margin := cfg.TileSize * 2
	spawned := 0
	for _, request := range requests {
		for i := 0; i < request.Count; i++ {
			pos := world.RandomPoint(rng, bounds, margin)
			for attempt := 1; attempt < spawnAttempts; attempt++ {
				cell, ok := grid.GridIndex(pos)
				if ok && !grid.Solid(cell) {
					break
				}
				pos = world.RandomPoint(rng, bounds, margin)
			}
			if _, ok := simulation.Spawn(request.ID, pos); !ok {
				break
			}
			spawned++
		}
	}
	return spawned
}
