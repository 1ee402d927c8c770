package spatialindex

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// TowerIndex is an r-tree over the current tower field. It serves the
// calibration radius queries and the "nearest tower to this click" lookup of
// the rogue-toggle command. Rebuild it whenever the tower set is replaced.
type TowerIndex struct {
	tr *rtree.RTreeG[*datastructure.CellTower]
}

func NewTowerIndex() *TowerIndex {
	var tr rtree.RTreeG[*datastructure.CellTower]
	return &TowerIndex{
		tr: &tr,
	}
}

func (ti *TowerIndex) Build(towers []*datastructure.CellTower, log *zap.Logger) {
	var tr rtree.RTreeG[*datastructure.CellTower]
	for _, tw := range towers {
		p := [2]float64{tw.Pos.X, tw.Pos.Y}
		tr.Insert(p, p, tw)
	}
	ti.tr = &tr
	log.Debug("tower spatial index built", zap.Int("towers", len(towers)))
}

// SearchWithinRadius returns every tower within radius of q, sorted by tower
// id so results are independent of tree insertion order.
func (ti *TowerIndex) SearchWithinRadius(q r2.Point, radius float64) []*datastructure.CellTower {
	min := [2]float64{q.X - radius, q.Y - radius}
	max := [2]float64{q.X + radius, q.Y + radius}

	results := make([]*datastructure.CellTower, 0, 10)
	ti.tr.Search(min, max, func(_, _ [2]float64, tw *datastructure.CellTower) bool {
		// the bounding box over-approximates the circle
		if geo.Dist(q, tw.Pos) <= radius {
			results = append(results, tw)
		}
		return true
	})

	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results
}

// NearestWithin returns the closest tower to q no further than radius, or nil.
func (ti *TowerIndex) NearestWithin(q r2.Point, radius float64) *datastructure.CellTower {
	var (
		best  *datastructure.CellTower
		bestD = math.Inf(1)
	)
	for _, tw := range ti.SearchWithinRadius(q, radius) {
		if d := geo.Dist(q, tw.Pos); d < bestD {
			best = tw
			bestD = d
		}
	}
	return best
}
