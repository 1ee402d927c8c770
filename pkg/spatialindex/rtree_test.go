package spatialindex

import (
	"testing"

	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildIndex(t *testing.T, towers []*datastructure.CellTower) *TowerIndex {
	t.Helper()
	ti := NewTowerIndex()
	ti.Build(towers, zap.NewNop())
	return ti
}

func TestSearchWithinRadius(t *testing.T) {
	towers := []*datastructure.CellTower{
		datastructure.NewCellTower(0, geo.NewPoint(0, 0), "310260", pkg.LTE, 66486, 100, 1),
		datastructure.NewCellTower(1, geo.NewPoint(50, 0), "310260", pkg.LTE, 66486, 100, 2),
		datastructure.NewCellTower(2, geo.NewPoint(0, 120), "310260", pkg.NR, 523800, 101, 3),
		// inside the bounding box of radius 100 but outside the circle
		datastructure.NewCellTower(3, geo.NewPoint(90, 90), "310260", pkg.LTE, 66486, 100, 4),
	}
	ti := buildIndex(t, towers)

	got := ti.SearchWithinRadius(geo.NewPoint(0, 0), 100)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].ID)
	assert.Equal(t, 1, got[1].ID)
}

func TestNearestWithin(t *testing.T) {
	towers := []*datastructure.CellTower{
		datastructure.NewCellTower(0, geo.NewPoint(0, 0), "310260", pkg.LTE, 66486, 100, 1),
		datastructure.NewCellTower(1, geo.NewPoint(30, 0), "310260", pkg.LTE, 66486, 100, 2),
	}
	ti := buildIndex(t, towers)

	nearest := ti.NearestWithin(geo.NewPoint(25, 0), 200)
	require.NotNil(t, nearest)
	assert.Equal(t, 1, nearest.ID)

	assert.Nil(t, ti.NearestWithin(geo.NewPoint(1000, 1000), 50))
}

func TestSearchEmptyIndex(t *testing.T) {
	ti := buildIndex(t, nil)
	assert.Empty(t, ti.SearchWithinRadius(geo.NewPoint(0, 0), 100))
}
