package engine

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/golang/geo/r2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/openrlce/routelock/pkg/spatialindex"
	"github.com/openrlce/routelock/pkg/util"
	"go.uber.org/zap"
)

// PollResult is the outcome of one enforcement poll. Evaluated is false when
// the rate limiter skipped the tick; SegmentIdx is -1 while the locator is
// unresolved; Serving is nil when no trusted tower is available.
type PollResult struct {
	Evaluated  bool
	SegmentIdx int
	Decision   pkg.Decision
	Serving    *datastructure.CellTower
}

type windowKey struct {
	idx     int
	grace   int
	version uint64
}

// Engine is the route-lock enforcement core. It holds handles to the
// externally-owned route and tower collection (swappable via SetWorld), the
// tunables, the sticky locator state, the last accepted serving tower and the
// bounded event log. All mutation goes through the single control loop; the
// engine itself is not safe for concurrent use.
type Engine struct {
	log *zap.Logger

	route  *datastructure.Route
	towers []*datastructure.CellTower
	index  *spatialindex.TowerIndex

	grace        int
	hysteresis   float64
	pollInterval time.Duration
	calRadius    float64

	locState    LocatorState
	lastServing *datastructure.CellTower
	lastPoll    time.Time
	events      *datastructure.EventLog

	calVersion  uint64
	windowCache *lru.Cache[windowKey, map[int]bool]
}

func New(route *datastructure.Route, towers []*datastructure.CellTower,
	index *spatialindex.TowerIndex, log *zap.Logger) *Engine {

	windowCache, _ := lru.New[windowKey, map[int]bool](pkg.WINDOW_CACHE_CAPACITY)

	e := &Engine{
		log:          log,
		route:        route,
		towers:       towers,
		index:        index,
		grace:        pkg.DEFAULT_GRACE,
		hysteresis:   pkg.DEFAULT_HYSTERESIS,
		pollInterval: pkg.DEFAULT_POLL_MS * time.Millisecond,
		calRadius:    pkg.CALIBRATION_RADIUS,
		locState:     Unresolved(),
		events:       datastructure.NewEventLog(pkg.EVENT_LOG_CAPACITY),
		windowCache:  windowCache,
	}
	e.Recalibrate()
	return e
}

// Recalibrate rebuilds every segment's calibration set from the current tower
// set and invalidates the window cache. Call it after any tower or topology
// mutation, before the next poll runs.
func (e *Engine) Recalibrate() {
	RebuildCalibration(e.route, e.index, e.calRadius)
	e.calVersion++
}

// SetWorld swaps the externally-owned route and tower collection. The event
// log and tunables survive; the locator resets when the route itself changed
// because segment indices are not comparable across routes. The last accepted
// serving tower is kept so TAC continuity still has a reference point.
func (e *Engine) SetWorld(route *datastructure.Route, towers []*datastructure.CellTower,
	index *spatialindex.TowerIndex) {

	if route != e.route {
		e.locState = Unresolved()
	}
	e.route = route
	e.towers = towers
	e.index = index
	e.Recalibrate()
}

func (e *Engine) SetGrace(grace int)              { e.grace = grace }
func (e *Engine) SetHysteresis(h float64)         { e.hysteresis = h }
func (e *Engine) SetPollInterval(d time.Duration) { e.pollInterval = d }

func (e *Engine) Grace() int                         { return e.grace }
func (e *Engine) Hysteresis() float64                { return e.hysteresis }
func (e *Engine) PollInterval() time.Duration        { return e.pollInterval }
func (e *Engine) Route() *datastructure.Route        { return e.route }
func (e *Engine) Towers() []*datastructure.CellTower { return e.towers }

func (e *Engine) LastServing() *datastructure.CellTower {
	return e.lastServing
}

// Events returns the bounded decision history, oldest first.
func (e *Engine) Events() []string {
	return e.events.Lines()
}

// Window returns the union of the calibration sets of all segments within
// grace of idx, clamped to the route bounds. Widening grace never shrinks the
// result. Results are cached per (idx, grace, calibration version).
func (e *Engine) Window(idx int) map[int]bool {
	key := windowKey{idx: idx, grace: e.grace, version: e.calVersion}
	if cached, ok := e.windowCache.Get(key); ok {
		return cached
	}

	window := make(map[int]bool)
	lo := util.MaxInt(0, idx-e.grace)
	hi := util.MinInt(e.route.NumSegments()-1, idx+e.grace)
	for j := lo; j <= hi; j++ {
		for id := range e.route.Segments[j].Cal {
			window[id] = true
		}
	}

	e.windowCache.Add(key, window)
	return window
}

// Poll runs one enforcement evaluation for the vehicle position at the given
// wall-clock time. Calls inside the poll cooldown are no-ops that report the
// last known state without touching it. Degenerate worlds (no towers, no
// segments, empty window) fall through to defined outcomes, never an error.
func (e *Engine) Poll(pos r2.Point, now time.Time) PollResult {
	if !e.lastPoll.IsZero() && now.Sub(e.lastPoll) < e.pollInterval {
		return PollResult{
			Evaluated:  false,
			SegmentIdx: e.segmentIdxOrUnresolved(),
			Decision:   pkg.DecisionNone,
			Serving:    e.lastServing,
		}
	}
	e.lastPoll = now

	e.locState = NextSegment(e.locState, e.route, pos, e.hysteresis)
	segIdx, resolved := e.locState.Resolved()
	if !resolved || len(e.towers) == 0 {
		// empty world: a defined "no decision, no serving tower" outcome
		return PollResult{
			Evaluated:  true,
			SegmentIdx: e.segmentIdxOrUnresolved(),
			Decision:   pkg.DecisionNone,
			Serving:    nil,
		}
	}

	window := e.Window(segIdx)
	serving := e.nearestTower(pos)

	decision := pkg.DecisionAllowed
	if !window[serving.ID] {
		checks := CheckLegitimacy(serving, e.lastServing, e.route.OperatorPLMN)
		if checks.Score() >= 2 && !serving.Rogue {
			decision = pkg.DecisionAllowedAnomalous
		} else {
			decision = pkg.DecisionBarred
			serving = e.nearestInWindow(pos, window)
		}
	}

	if serving != nil {
		e.lastServing = serving
	}
	e.logEvent(now, segIdx, decision, serving)

	return PollResult{
		Evaluated:  true,
		SegmentIdx: segIdx,
		Decision:   decision,
		Serving:    serving,
	}
}

// ForceReselect drops the current serving tower in favour of the in-window
// tower nearest to pos, if any. It reports whether a reselection happened.
func (e *Engine) ForceReselect(pos r2.Point) (*datastructure.CellTower, bool) {
	e.locState = NextSegment(e.locState, e.route, pos, e.hysteresis)
	segIdx, resolved := e.locState.Resolved()
	if !resolved {
		e.events.Append("no segment resolved for reselection")
		return nil, false
	}

	candidate := e.nearestInWindow(pos, e.Window(segIdx))
	if candidate == nil {
		e.events.Append("no in-window towers for reselection")
		return nil, false
	}

	e.lastServing = candidate
	e.events.Append(fmt.Sprintf("forced reselection -> %d", candidate.ID))
	return candidate, true
}

// nearestTower picks the serving candidate. Ties are broken by input order:
// the comparison is strict, so the first tower at the minimum distance wins
// and callers control determinism by preserving tower ordering.
func (e *Engine) nearestTower(pos r2.Point) *datastructure.CellTower {
	var (
		best  *datastructure.CellTower
		bestD = math.Inf(1)
	)
	for _, tw := range e.towers {
		if d := geo.Dist(pos, tw.Pos); d < bestD {
			best = tw
			bestD = d
		}
	}
	return best
}

func (e *Engine) nearestInWindow(pos r2.Point, window map[int]bool) *datastructure.CellTower {
	var (
		best  *datastructure.CellTower
		bestD = math.Inf(1)
	)
	for _, tw := range e.towers {
		if !window[tw.ID] {
			continue
		}
		if d := geo.Dist(pos, tw.Pos); d < bestD {
			best = tw
			bestD = d
		}
	}
	return best
}

func (e *Engine) segmentIdxOrUnresolved() int {
	if idx, ok := e.locState.Resolved(); ok {
		return idx
	}
	return -1
}

func (e *Engine) logEvent(now time.Time, segIdx int, decision pkg.Decision,
	serving *datastructure.CellTower) {

	cell := "none"
	if serving != nil {
		cell = strconv.Itoa(serving.ID)
	}
	line := fmt.Sprintf("%s seg=%d decision=%s cell=%s",
		now.Format("15:04:05"), segIdx, decision, cell)
	e.events.Append(line)

	if pkg.DEBUG {
		e.log.Debug("enforcement decision",
			zap.Int("segment", segIdx),
			zap.String("decision", decision.String()),
			zap.String("cell", cell))
	}
}
