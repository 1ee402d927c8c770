package datastructure

import (
	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg"
)

// Train is the moving vehicle. Position is owned and updated by the mover in
// the control loop; the enforcement engine only ever reads it at poll time.
type Train struct {
	Pos       r2.Point
	Speed     float64 // units/s, manual steering
	AutoSpeed float64 // units/s, route-following auto-pilot
	RouteT    float64 // param along route in [0, numSegments)
	Auto      bool
}

func NewTrain(start r2.Point) *Train {
	return &Train{
		Pos:       start,
		Speed:     pkg.TRAIN_MANUAL_SPEED,
		AutoSpeed: pkg.TRAIN_AUTO_SPEED,
	}
}
