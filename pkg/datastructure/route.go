package datastructure

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/twpayne/go-polyline"
)

// Segment is one piece of an ordered route. A and B never change once the
// route is built; Cal is fully replaced on every calibration run.
type Segment struct {
	Idx int
	A   r2.Point
	B   r2.Point
	Cal map[int]bool
}

func (s *Segment) Midpoint() r2.Point {
	return geo.Midpoint(s.A, s.B)
}

// Route is an ordered, contiguous sequence of segments built from a waypoint
// polyline, plus the PLMN of the operator that legitimately covers it.
// invariant: Segments[i].B == Segments[i+1].A and the order never changes.
type Route struct {
	Points       []r2.Point
	Segments     []*Segment
	OperatorPLMN string
}

func NewRouteFromPolyline(points []r2.Point, operatorPLMN string) *Route {
	segments := make([]*Segment, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		segments = append(segments, &Segment{
			Idx: i,
			A:   points[i],
			B:   points[i+1],
			Cal: make(map[int]bool),
		})
	}
	return &Route{
		Points:       points,
		Segments:     segments,
		OperatorPLMN: operatorPLMN,
	}
}

func (r *Route) NumSegments() int {
	return len(r.Segments)
}

// EncodePolyline encodes the route waypoints with the google encoded
// polyline algorithm, treating planar (x, y) as (lat, lon) pairs.
func (r *Route) EncodePolyline() string {
	coords := make([][]float64, len(r.Points))
	for i, p := range r.Points {
		coords[i] = []float64{p.X, p.Y}
	}
	return string(polyline.EncodeCoords(coords))
}

func RouteFromEncodedPolyline(encoded, operatorPLMN string) (*Route, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("polyline must contain at least 2 waypoints, got %d", len(coords))
	}
	points := make([]r2.Point, len(coords))
	for i, c := range coords {
		points[i] = geo.NewPoint(c[0], c[1])
	}
	return NewRouteFromPolyline(points, operatorPLMN), nil
}
