package geo

import (
	"math"

	"github.com/golang/geo/r2"
)

// planar geometry over r2.Point. all coordinates are in map units (the same
// unit the calibration radius and hysteresis are expressed in).

func NewPoint(x, y float64) r2.Point {
	return r2.Point{X: x, Y: y}
}

func Dist(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

func Lerp(a, b r2.Point, t float64) r2.Point {
	return r2.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

func Midpoint(a, b r2.Point) r2.Point {
	return r2.Point{X: (a.X + b.X) / 2.0, Y: (a.Y + b.Y) / 2.0}
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ProjectPointToSegment projects p onto the segment ab. It returns the
// closest point on the segment, the clamped parameter t in [0,1] and the
// distance from p to that closest point. A zero-length segment degrades to
// the endpoint a.
func ProjectPointToSegment(p, a, b r2.Point) (r2.Point, float64, float64) {
	ab := b.Sub(a)
	ab2 := ab.Dot(ab)
	if ab2 == 0 {
		return a, 0.0, Dist(p, a)
	}

	t := Clamp(p.Sub(a).Dot(ab)/ab2, 0.0, 1.0)
	q := a.Add(ab.Mul(t))
	return q, t, Dist(p, q)
}

// DistToSegment returns the minimum distance from p to the segment ab.
func DistToSegment(p, a, b r2.Point) float64 {
	_, _, d := ProjectPointToSegment(p, a, b)
	return d
}
