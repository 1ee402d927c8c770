package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/openrlce/routelock/pkg/concurrent"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/engine"
	"github.com/openrlce/routelock/pkg/http"
	"github.com/openrlce/routelock/pkg/http/router/controllers"
	"github.com/openrlce/routelock/pkg/http/usecases"
	"github.com/openrlce/routelock/pkg/logger"
	"github.com/openrlce/routelock/pkg/observability"
	"github.com/openrlce/routelock/pkg/simulation"
	"github.com/openrlce/routelock/pkg/util"
	"go.uber.org/zap"
)

var (
	worldFile    = flag.String("world", "./data/world.rlce.bz2", "world snapshot file; a random world is generated when it does not exist")
	seed         = flag.Uint64("seed", uint64(time.Now().UnixNano()), "rng seed for world generation")
	useRateLimit = flag.Bool("rate_limit", false, "enable per-client API rate limiting")
	autopilot    = flag.Bool("autopilot", true, "start the train on the route-following auto-pilot")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		logger.Info("no config file found, using defaults")
	}

	var world *simulation.World
	if _, err := os.Stat(*worldFile); err == nil {
		world, err = simulation.NewWorldFromSnapshot(*worldFile, *seed, logger)
		if err != nil {
			panic(err)
		}
		logger.Info("world loaded from snapshot", zap.String("file", *worldFile))
	} else {
		world = simulation.NewWorld(*seed, logger)
		logger.Info("random world generated", zap.Uint64("seed", *seed))
	}

	enforcementEngine := engine.New(world.Route(), world.Towers(), world.Index(), logger)
	train := datastructure.NewTrain(world.Route().Points[0])
	train.Auto = *autopilot
	runner := simulation.NewRunner(enforcementEngine, world, train, logger)

	collector, err := observability.NewEnforcementCollector(nil)
	if err != nil {
		panic(err)
	}
	collector.SetWorldCounts(len(world.Towers()), world.RogueCount(), world.Route().NumSegments())

	pool := concurrent.NewWorkerPool(15, 10)
	pool.Spawn(10)
	hub := controllers.NewHub(pool)

	enforcementService := usecases.NewEnforcementService(logger, runner, world, train,
		enforcementEngine, collector)
	runner.AddListener(enforcementService.OnDecision)
	runner.AddListener(func(res engine.PollResult, tr *datastructure.Train, _ time.Duration) {
		hub.Broadcast(controllers.NewDecisionEvent(res, tr, time.Now()))
	})

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	go runner.Run(ctx)

	api := http.NewServer(logger)
	api.Use(ctx,
		logger, *useRateLimit, enforcementService, hub, pool, collector.Handler())

	signal := http.GracefulShutdown()

	logger.Info("Routelock Enforcement Server Stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
