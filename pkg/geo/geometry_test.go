package geo

import (
	"math"
	"testing"
)

const eps = 1e-9

func eq(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestProjectPointToSegment(t *testing.T) {
	testCases := []struct {
		name     string
		p        [2]float64
		a        [2]float64
		b        [2]float64
		wantQ    [2]float64
		wantT    float64
		wantDist float64
	}{
		{
			name: "projection inside segment",
			p:    [2]float64{5, 5}, a: [2]float64{0, 0}, b: [2]float64{10, 0},
			wantQ: [2]float64{5, 0}, wantT: 0.5, wantDist: 5,
		},
		{
			name: "projection clamped to start",
			p:    [2]float64{-3, 4}, a: [2]float64{0, 0}, b: [2]float64{10, 0},
			wantQ: [2]float64{0, 0}, wantT: 0, wantDist: 5,
		},
		{
			name: "projection clamped to end",
			p:    [2]float64{13, -4}, a: [2]float64{0, 0}, b: [2]float64{10, 0},
			wantQ: [2]float64{10, 0}, wantT: 1, wantDist: 5,
		},
		{
			name: "zero length segment",
			p:    [2]float64{3, 4}, a: [2]float64{0, 0}, b: [2]float64{0, 0},
			wantQ: [2]float64{0, 0}, wantT: 0, wantDist: 5,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			q, tParam, d := ProjectPointToSegment(
				NewPoint(tt.p[0], tt.p[1]),
				NewPoint(tt.a[0], tt.a[1]),
				NewPoint(tt.b[0], tt.b[1]),
			)
			if !eq(q.X, tt.wantQ[0]) || !eq(q.Y, tt.wantQ[1]) {
				t.Errorf("closest point = (%v, %v), want (%v, %v)", q.X, q.Y, tt.wantQ[0], tt.wantQ[1])
			}
			if !eq(tParam, tt.wantT) {
				t.Errorf("t = %v, want %v", tParam, tt.wantT)
			}
			if !eq(d, tt.wantDist) {
				t.Errorf("dist = %v, want %v", d, tt.wantDist)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	a := NewPoint(0, 0)
	b := NewPoint(10, 20)

	mid := Lerp(a, b, 0.5)
	if !eq(mid.X, 5) || !eq(mid.Y, 10) {
		t.Errorf("lerp(0.5) = (%v, %v), want (5, 10)", mid.X, mid.Y)
	}

	if got := Lerp(a, b, 0); !eq(got.X, 0) || !eq(got.Y, 0) {
		t.Errorf("lerp(0) should return a, got (%v, %v)", got.X, got.Y)
	}
	if got := Lerp(a, b, 1); !eq(got.X, 10) || !eq(got.Y, 20) {
		t.Errorf("lerp(1) should return b, got (%v, %v)", got.X, got.Y)
	}
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(NewPoint(2, 2), NewPoint(4, 6))
	if !eq(m.X, 3) || !eq(m.Y, 4) {
		t.Errorf("midpoint = (%v, %v), want (3, 4)", m.X, m.Y)
	}
}
