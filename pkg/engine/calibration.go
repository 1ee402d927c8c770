package engine

import (
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/spatialindex"
)

// RebuildCalibration recomputes the calibration set of every segment: the ids
// of all non-rogue towers whose distance to the segment midpoint is at most
// radius. Each set is fully replaced, so the operation is idempotent and has
// to be re-run whenever towers are added, removed, rogue-toggled or the route
// is rebuilt. An empty set is a valid result.
func RebuildCalibration(route *datastructure.Route, index *spatialindex.TowerIndex, radius float64) {
	for _, seg := range route.Segments {
		cal := make(map[int]bool)
		for _, tw := range index.SearchWithinRadius(seg.Midpoint(), radius) {
			if tw.Rogue {
				continue
			}
			cal[tw.ID] = true
		}
		seg.Cal = cal
	}
}
