package simulation

import (
	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
)

// StatusSnapshot is a point-in-time view of the simulation for the API
// surface: the last evaluated decision plus the live tunables and train state.
type StatusSnapshot struct {
	SegmentIdx int
	Decision   pkg.Decision
	Serving    *datastructure.CellTower
	Grace      int
	Hysteresis float64
	PollMS     int
	Auto       bool
	TrainPos   r2.Point
}
