package engine

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/geo"
)

// LocatorState is the sticky segment-resolution state: either no segment has
// been resolved yet, or the locator is latched onto a segment index.
type LocatorState struct {
	resolved bool
	idx      int
}

func Unresolved() LocatorState {
	return LocatorState{}
}

func ResolvedAt(idx int) LocatorState {
	return LocatorState{resolved: true, idx: idx}
}

func (s LocatorState) Resolved() (int, bool) {
	return s.idx, s.resolved
}

// NextSegment is the locator transition function. It is a pure function of
// (state, route, position, hysteresis) so stickiness can be tested without an
// engine around it.
//
// The first resolution latches onto the globally nearest segment. Afterwards
// the locator only switches when the nearest segment beats the current one by
// more than the hysteresis margin, which keeps the index from flickering when
// the vehicle sits equidistant between two segments near a bend.
func NextSegment(s LocatorState, route *datastructure.Route, pos r2.Point, hysteresis float64) LocatorState {
	if route == nil || route.NumSegments() == 0 {
		return Unresolved()
	}

	nearestIdx := 0
	nearestDist := math.Inf(1)
	for _, seg := range route.Segments {
		if d := geo.DistToSegment(pos, seg.A, seg.B); d < nearestDist {
			nearestDist = d
			nearestIdx = seg.Idx
		}
	}

	if !s.resolved || s.idx >= route.NumSegments() {
		return ResolvedAt(nearestIdx)
	}

	cur := route.Segments[s.idx]
	dCurrent := geo.DistToSegment(pos, cur.A, cur.B)
	if nearestDist+hysteresis < dCurrent {
		return ResolvedAt(nearestIdx)
	}
	return s
}
