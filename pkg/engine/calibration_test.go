package engine

import (
	"testing"

	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/openrlce/routelock/pkg/spatialindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIndex(t *testing.T, towers []*datastructure.CellTower) *spatialindex.TowerIndex {
	t.Helper()
	idx := spatialindex.NewTowerIndex()
	idx.Build(towers, zap.NewNop())
	return idx
}

func TestRebuildCalibration(t *testing.T) {
	route := straightRoute()
	towers := []*datastructure.CellTower{
		// at segment 0 midpoint
		datastructure.NewCellTower(0, geo.NewPoint(50, 0), "310260", pkg.LTE, 66486, 100, 1),
		// 100 above segment 1 midpoint, inside the 220 radius of all segments
		datastructure.NewCellTower(1, geo.NewPoint(150, 100), "310260", pkg.LTE, 66490, 100, 2),
		// far away from everything
		datastructure.NewCellTower(2, geo.NewPoint(2000, 2000), "310260", pkg.NR, 523800, 101, 3),
	}

	RebuildCalibration(route, newIndex(t, towers), pkg.CALIBRATION_RADIUS)

	assert.True(t, route.Segments[0].Cal[0])
	assert.True(t, route.Segments[1].Cal[1])
	for _, seg := range route.Segments {
		assert.False(t, seg.Cal[2], "distant tower in segment %d calibration", seg.Idx)
	}
}

func TestRebuildCalibrationIdempotent(t *testing.T) {
	route := straightRoute()
	towers := []*datastructure.CellTower{
		datastructure.NewCellTower(0, geo.NewPoint(50, 0), "310260", pkg.LTE, 66486, 100, 1),
		datastructure.NewCellTower(1, geo.NewPoint(150, 0), "310260", pkg.LTE, 66490, 100, 2),
	}
	index := newIndex(t, towers)

	RebuildCalibration(route, index, pkg.CALIBRATION_RADIUS)
	first := make([]map[int]bool, route.NumSegments())
	for i, seg := range route.Segments {
		first[i] = seg.Cal
	}

	RebuildCalibration(route, index, pkg.CALIBRATION_RADIUS)
	for i, seg := range route.Segments {
		assert.Equal(t, first[i], seg.Cal, "segment %d changed on identical inputs", i)
	}
}

func TestRebuildCalibrationExcludesRogue(t *testing.T) {
	route := straightRoute()
	rogue := datastructure.NewCellTower(0, geo.NewPoint(150, 0), "311480", pkg.LTE, 1492, 100, 1)
	rogue.Rogue = true
	towers := []*datastructure.CellTower{rogue}

	RebuildCalibration(route, newIndex(t, towers), pkg.CALIBRATION_RADIUS)

	for _, seg := range route.Segments {
		require.Empty(t, seg.Cal, "rogue tower calibrated for segment %d", seg.Idx)
	}
}

func TestRebuildCalibrationReplacesStaleSets(t *testing.T) {
	route := straightRoute()
	tower := datastructure.NewCellTower(0, geo.NewPoint(50, 0), "310260", pkg.LTE, 66486, 100, 1)
	towers := []*datastructure.CellTower{tower}
	index := newIndex(t, towers)

	RebuildCalibration(route, index, pkg.CALIBRATION_RADIUS)
	require.True(t, route.Segments[0].Cal[0])

	tower.Rogue = true
	RebuildCalibration(route, index, pkg.CALIBRATION_RADIUS)
	assert.False(t, route.Segments[0].Cal[0])
}
