package simulation

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/geo"
)

// AdvanceAlongRoute moves the train along the route at its auto-pilot speed
// for dt seconds. The route parameter wraps back to the start after the last
// segment; zero-length segments are nudged past instead of dividing by their
// length.
func AdvanceAlongRoute(train *datastructure.Train, route *datastructure.Route, dt float64) {
	total := route.NumSegments()
	if total == 0 {
		return
	}

	segIdx := int(math.Floor(train.RouteT))
	if segIdx < 0 {
		segIdx = 0
	}
	if segIdx > total-1 {
		segIdx = total - 1
	}
	localT := train.RouteT - math.Floor(train.RouteT)

	seg := route.Segments[segIdx]
	segLen := geo.Dist(seg.A, seg.B)
	if segLen < 1e-6 {
		train.RouteT += 1e-3
		return
	}

	localT += train.AutoSpeed * dt / segLen
	for localT > 1.0 && segIdx < total-1 {
		localT -= 1.0
		segIdx++
		seg = route.Segments[segIdx]
		segLen = geo.Dist(seg.A, seg.B)
		if segLen < 1e-6 {
			segLen = 1e-6
		}
	}
	if localT > 1.0 && segIdx == total-1 {
		segIdx = 0
		localT = 0.0
		seg = route.Segments[0]
	}

	train.RouteT = float64(segIdx) + localT
	train.Pos = geo.Lerp(seg.A, seg.B, localT)
}

// Steer applies a manual velocity for dt seconds. dir is a unit-square input
// vector (each component in [-1,1]); the position stays clamped to the world
// bounds. Manual steering leaves RouteT alone, so re-enabling the auto-pilot
// snaps the train back to where it left the route.
func Steer(train *datastructure.Train, dir r2.Point, dt float64) {
	train.Pos.X = geo.Clamp(train.Pos.X+dir.X*train.Speed*dt, 0, pkg.WORLD_WIDTH)
	train.Pos.Y = geo.Clamp(train.Pos.Y+dir.Y*train.Speed*dt, 0, pkg.WORLD_HEIGHT)
}
