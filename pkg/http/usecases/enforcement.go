package usecases

import (
	"fmt"
	"time"

	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/engine"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/openrlce/routelock/pkg/observability"
	"github.com/openrlce/routelock/pkg/simulation"
	"github.com/openrlce/routelock/pkg/util"
	"go.uber.org/zap"
)

// EnforcementService bridges the HTTP surface and the control loop. Every
// read and mutation is posted onto the loop through the runner so handlers
// never touch the engine or the world concurrently.
type EnforcementService struct {
	log       *zap.Logger
	runner    *simulation.Runner
	world     *simulation.World
	train     *datastructure.Train
	eng       *engine.Engine
	collector *observability.EnforcementCollector

	lastResult engine.PollResult
}

func NewEnforcementService(log *zap.Logger, runner *simulation.Runner,
	world *simulation.World, train *datastructure.Train, eng *engine.Engine,
	collector *observability.EnforcementCollector) *EnforcementService {

	return &EnforcementService{
		log:       log,
		runner:    runner,
		world:     world,
		train:     train,
		eng:       eng,
		collector: collector,
		// no poll has run yet
		lastResult: engine.PollResult{SegmentIdx: -1, Decision: pkg.DecisionNone},
	}
}

// OnDecision is registered as a runner listener; it runs on the control loop.
func (es *EnforcementService) OnDecision(res engine.PollResult, _ *datastructure.Train, elapsed time.Duration) {
	es.lastResult = res
	es.collector.ObserveDecision(res.Decision.String(), elapsed)
}

func (es *EnforcementService) Status() simulation.StatusSnapshot {
	var snap simulation.StatusSnapshot
	es.runner.DoSync(func() {
		snap = es.snapshot()
	})
	return snap
}

// snapshot must run on the control loop.
func (es *EnforcementService) snapshot() simulation.StatusSnapshot {
	return simulation.StatusSnapshot{
		SegmentIdx: es.lastResult.SegmentIdx,
		Decision:   es.lastResult.Decision,
		Serving:    es.lastResult.Serving,
		Grace:      es.eng.Grace(),
		Hysteresis: es.eng.Hysteresis(),
		PollMS:     int(es.eng.PollInterval() / time.Millisecond),
		Auto:       es.train.Auto,
		TrainPos:   es.train.Pos,
	}
}

func (es *EnforcementService) Events() []string {
	var events []string
	es.runner.DoSync(func() {
		events = es.eng.Events()
	})
	return events
}

func (es *EnforcementService) Route() *datastructure.Route {
	var route *datastructure.Route
	es.runner.DoSync(func() {
		route = es.world.Route()
	})
	return route
}

func (es *EnforcementService) Towers() []*datastructure.CellTower {
	var towers []*datastructure.CellTower
	es.runner.DoSync(func() {
		towers = es.world.Towers()
	})
	return towers
}

func (es *EnforcementService) ToggleRogue(x, y float64) (*datastructure.CellTower, error) {
	var tower *datastructure.CellTower
	es.runner.DoSync(func() {
		tower = es.world.ToggleRogueNear(geo.NewPoint(x, y))
		if tower != nil {
			es.eng.Recalibrate()
			es.publishWorldCounts()
		}
	})
	if tower == nil {
		return nil, util.WrapErrorf(nil, util.ErrNotFound,
			fmt.Sprintf("no tower within %.0f units of (%.1f, %.1f)", pkg.ROGUE_TOGGLE_RADIUS, x, y))
	}
	return tower, nil
}

func (es *EnforcementService) Regenerate() int {
	var count int
	es.runner.DoSync(func() {
		es.world.Regenerate()
		es.eng.SetWorld(es.world.Route(), es.world.Towers(), es.world.Index())
		es.publishWorldCounts()
		count = len(es.world.Towers())
	})
	return count
}

func (es *EnforcementService) Reselect() (*datastructure.CellTower, error) {
	var (
		tower *datastructure.CellTower
		ok    bool
	)
	es.runner.DoSync(func() {
		tower, ok = es.eng.ForceReselect(es.train.Pos)
	})
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "no in-window tower available for reselection")
	}
	return tower, nil
}

func (es *EnforcementService) SetAutopilot(enabled bool) {
	es.runner.DoSync(func() {
		es.train.Auto = enabled
	})
}

func (es *EnforcementService) ApplyConfig(grace *int, hysteresis *float64, pollMS *int) simulation.StatusSnapshot {
	var snap simulation.StatusSnapshot
	es.runner.DoSync(func() {
		if grace != nil {
			es.eng.SetGrace(*grace)
		}
		if hysteresis != nil {
			es.eng.SetHysteresis(*hysteresis)
		}
		if pollMS != nil {
			es.eng.SetPollInterval(time.Duration(*pollMS) * time.Millisecond)
		}
		snap = es.snapshot()
	})
	return snap
}

// publishWorldCounts must run on the control loop.
func (es *EnforcementService) publishWorldCounts() {
	es.collector.SetWorldCounts(len(es.world.Towers()), es.world.RogueCount(),
		es.world.Route().NumSegments())
}
