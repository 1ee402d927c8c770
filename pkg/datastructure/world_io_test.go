package datastructure

import (
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldSnapshotRoundtrip(t *testing.T) {
	route := NewRouteFromPolyline([]r2.Point{
		geo.NewPoint(120, 720),
		geo.NewPoint(200.5, 660.25),
		geo.NewPoint(260, 620),
	}, "311480")

	towers := []*CellTower{
		NewCellTower(0, geo.NewPoint(100, 100), "310260", pkg.LTE, 66486, 105, 77),
		NewCellTower(1, geo.NewPoint(900.75, 240), "311480", pkg.NR, 523800, 111, 401),
	}
	towers[1].Rogue = true

	filename := filepath.Join(t.TempDir(), "world.snap")
	require.NoError(t, WriteWorldSnapshot(filename, route, towers))

	gotRoute, gotTowers, err := ReadWorldSnapshot(filename)
	require.NoError(t, err)

	assert.Equal(t, "311480", gotRoute.OperatorPLMN)
	require.Equal(t, len(route.Points), len(gotRoute.Points))
	for i := range route.Points {
		assert.Equal(t, route.Points[i], gotRoute.Points[i])
	}

	require.Equal(t, len(towers), len(gotTowers))
	for i := range towers {
		assert.Equal(t, *towers[i], *gotTowers[i])
	}
}

func TestReadWorldSnapshotMissingFile(t *testing.T) {
	_, _, err := ReadWorldSnapshot(filepath.Join(t.TempDir(), "nope.snap"))
	assert.Error(t, err)
}
