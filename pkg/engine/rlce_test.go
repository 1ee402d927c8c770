package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, towers []*datastructure.CellTower) *Engine {
	t.Helper()
	route := straightRoute()
	return New(route, towers, newIndex(t, towers), zap.NewNop())
}

func legitTower(id int, x, y float64) *datastructure.CellTower {
	return datastructure.NewCellTower(id, geo.NewPoint(x, y), "310260", pkg.LTE, 66486, 100, id+1)
}

func rogueTower(id int, x, y float64) *datastructure.CellTower {
	tw := datastructure.NewCellTower(id, geo.NewPoint(x, y), "311480", pkg.LTE, 1492, 900, id+1)
	tw.Rogue = true
	return tw
}

func TestPollRateLimit(t *testing.T) {
	e := newTestEngine(t, []*datastructure.CellTower{legitTower(0, 150, 0)})
	t0 := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	first := e.Poll(geo.NewPoint(150, 5), t0)
	require.True(t, first.Evaluated)
	eventsAfterFirst := len(e.Events())

	// inside the cooldown: reported state only, nothing evaluated or logged
	skipped := e.Poll(geo.NewPoint(150, 5), t0.Add(100*time.Millisecond))
	assert.False(t, skipped.Evaluated)
	assert.Equal(t, pkg.DecisionNone, skipped.Decision)
	assert.Equal(t, first.SegmentIdx, skipped.SegmentIdx)
	assert.Equal(t, first.Serving, skipped.Serving)
	assert.Len(t, e.Events(), eventsAfterFirst)

	// past the cooldown the engine evaluates again
	again := e.Poll(geo.NewPoint(150, 5), t0.Add(300*time.Millisecond))
	assert.True(t, again.Evaluated)
	assert.Len(t, e.Events(), eventsAfterFirst+1)
}

func TestPollEmptyWorld(t *testing.T) {
	e := newTestEngine(t, nil)

	res := e.Poll(geo.NewPoint(150, 5), time.Now())
	assert.True(t, res.Evaluated)
	assert.Equal(t, pkg.DecisionNone, res.Decision)
	assert.Nil(t, res.Serving)
}

func TestPollAllowed(t *testing.T) {
	tower := legitTower(0, 150, 0) // segment 1 midpoint
	e := newTestEngine(t, []*datastructure.CellTower{tower})
	e.SetGrace(0)

	res := e.Poll(geo.NewPoint(150, 5), time.Now())
	require.True(t, res.Evaluated)
	assert.Equal(t, 1, res.SegmentIdx)
	assert.Equal(t, pkg.DecisionAllowed, res.Decision)
	assert.Same(t, tower, res.Serving)
	assert.Same(t, tower, e.LastServing())
}

func TestPollAllowedAnomalous(t *testing.T) {
	// legitimate tower too far off the route to calibrate anywhere, yet the
	// nearest cell to the vehicle. score 3, not rogue: provisionally trusted.
	tower := legitTower(0, 150, 300)
	e := newTestEngine(t, []*datastructure.CellTower{tower})

	res := e.Poll(geo.NewPoint(150, 250), time.Now())
	require.True(t, res.Evaluated)
	assert.Equal(t, pkg.DecisionAllowedAnomalous, res.Decision)
	assert.Same(t, tower, res.Serving)
}

func TestPollBarredServingNone(t *testing.T) {
	// a lone rogue tower never calibrates, so the window is empty and there is
	// nothing to reselect: barred with no serving cell.
	e := newTestEngine(t, []*datastructure.CellTower{rogueTower(0, 150, 0)})

	res := e.Poll(geo.NewPoint(150, 5), time.Now())
	require.True(t, res.Evaluated)
	assert.Equal(t, pkg.DecisionBarred, res.Decision)
	assert.Nil(t, res.Serving)
	assert.Nil(t, e.LastServing())

	events := e.Events()
	require.NotEmpty(t, events)
	assert.Contains(t, events[len(events)-1], "decision=BARRED")
	assert.Contains(t, events[len(events)-1], "cell=none")
}

func TestPollBarredReselectsInWindow(t *testing.T) {
	rogue := rogueTower(0, 150, 5)
	legit := legitTower(1, 150, 100)
	e := newTestEngine(t, []*datastructure.CellTower{rogue, legit})

	res := e.Poll(geo.NewPoint(150, 10), time.Now())
	require.True(t, res.Evaluated)
	assert.Equal(t, pkg.DecisionBarred, res.Decision)
	require.NotNil(t, res.Serving)
	assert.False(t, res.Serving.Rogue)
	assert.True(t, e.Window(res.SegmentIdx)[res.Serving.ID], "reselection left the window")
	assert.Same(t, legit, res.Serving)
}

func TestPollTieBreakFirstInOrder(t *testing.T) {
	a := legitTower(0, 150, 50)
	b := legitTower(1, 150, -50)
	e := newTestEngine(t, []*datastructure.CellTower{a, b})

	// vehicle exactly between the two: the first tower in input order serves
	res := e.Poll(geo.NewPoint(150, 0), time.Now())
	require.True(t, res.Evaluated)
	assert.Same(t, a, res.Serving)
}

func TestWindowMonotoneInGrace(t *testing.T) {
	towers := []*datastructure.CellTower{
		legitTower(0, 50, 150),
		legitTower(1, 150, 150),
		legitTower(2, 250, 150),
	}
	e := newTestEngine(t, towers)

	prev := map[int]bool{}
	for grace := 0; grace <= 3; grace++ {
		e.SetGrace(grace)
		window := e.Window(1)
		for id := range prev {
			assert.True(t, window[id], "grace %d dropped tower %d", grace, id)
		}
		prev = window
	}
}

func TestWindowClampedAtRouteEdges(t *testing.T) {
	tower := legitTower(0, 50, 0)
	e := newTestEngine(t, []*datastructure.CellTower{tower})
	e.SetGrace(10)

	// a grace wider than the route must not panic and still unions everything
	window := e.Window(0)
	assert.True(t, window[0])
}

func TestWindowCacheInvalidatedByRecalibrate(t *testing.T) {
	tower := legitTower(0, 150, 0)
	e := newTestEngine(t, []*datastructure.CellTower{tower})

	require.True(t, e.Window(1)[0])

	tower.Rogue = true
	e.Recalibrate()
	assert.False(t, e.Window(1)[0], "stale cached window served after recalibration")
}

func TestEventLogBounded(t *testing.T) {
	e := newTestEngine(t, []*datastructure.CellTower{legitTower(0, 150, 0)})
	t0 := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		e.Poll(geo.NewPoint(150, 5), t0.Add(time.Duration(i)*time.Second))
	}
	assert.Len(t, e.Events(), pkg.EVENT_LOG_CAPACITY)
}

func TestForceReselect(t *testing.T) {
	rogue := rogueTower(0, 150, 5)
	legit := legitTower(1, 150, 80)
	e := newTestEngine(t, []*datastructure.CellTower{rogue, legit})

	serving, ok := e.ForceReselect(geo.NewPoint(150, 10))
	require.True(t, ok)
	assert.Same(t, legit, serving)
	assert.Same(t, legit, e.LastServing())

	events := e.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, fmt.Sprintf("forced reselection -> %d", legit.ID), events[len(events)-1])
}

func TestForceReselectEmptyWindow(t *testing.T) {
	e := newTestEngine(t, []*datastructure.CellTower{rogueTower(0, 150, 0)})

	serving, ok := e.ForceReselect(geo.NewPoint(150, 5))
	assert.False(t, ok)
	assert.Nil(t, serving)
	assert.Nil(t, e.LastServing())
}

func TestSetWorldResetsLocatorKeepsServing(t *testing.T) {
	tower := legitTower(0, 150, 0)
	e := newTestEngine(t, []*datastructure.CellTower{tower})

	t0 := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	res := e.Poll(geo.NewPoint(150, 5), t0)
	require.Same(t, tower, res.Serving)

	// swap in a fresh world: locator starts over, last serving cell survives
	// so TAC continuity still has its reference point
	newRoute := datastructure.NewRouteFromPolyline([]r2.Point{
		geo.NewPoint(0, 500),
		geo.NewPoint(100, 500),
	}, "310260")
	newTower := legitTower(5, 50, 500)
	newTowers := []*datastructure.CellTower{newTower}
	e.SetWorld(newRoute, newTowers, newIndex(t, newTowers))

	assert.Same(t, tower, e.LastServing())
	_, resolved := e.locState.Resolved()
	assert.False(t, resolved)

	res = e.Poll(geo.NewPoint(50, 505), t0.Add(time.Second))
	require.True(t, res.Evaluated)
	assert.Equal(t, 0, res.SegmentIdx)
	assert.Equal(t, pkg.DecisionAllowed, res.Decision)
	assert.Same(t, newTower, res.Serving)
}
