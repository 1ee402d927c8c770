package main

import (
	"flag"
	"time"

	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/logger"
	"github.com/openrlce/routelock/pkg/simulation"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

var (
	outFile = flag.String("out", "./data/world.rlce.bz2", "output snapshot file")
	seed    = flag.Uint64("seed", uint64(time.Now().UnixNano()), "rng seed")
	towers  = flag.Int("towers", pkg.DEFAULT_TOWER_COUNT, "number of towers to generate")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	rd := rand.New(rand.NewSource(*seed))
	route := simulation.DefaultRoute()
	field := simulation.GenerateTowers(*towers, rd)

	if err := datastructure.WriteWorldSnapshot(*outFile, route, field); err != nil {
		panic(err)
	}

	logger.Info("world snapshot written",
		zap.String("file", *outFile),
		zap.Uint64("seed", *seed),
		zap.Int("towers", len(field)))
}
