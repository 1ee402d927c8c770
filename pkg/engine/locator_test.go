package engine

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightRoute() *datastructure.Route {
	return datastructure.NewRouteFromPolyline([]r2.Point{
		geo.NewPoint(0, 0),
		geo.NewPoint(100, 0),
		geo.NewPoint(200, 0),
		geo.NewPoint(300, 0),
	}, "310260")
}

func TestNextSegmentFirstResolution(t *testing.T) {
	route := straightRoute()

	state := NextSegment(Unresolved(), route, geo.NewPoint(150, 10), 40)
	idx, ok := state.Resolved()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestNextSegmentSticky(t *testing.T) {
	route := straightRoute()

	// latched onto segment 0; position right at the 0/1 boundary
	state := ResolvedAt(0)
	boundary := geo.NewPoint(100, 5)

	// both segments are 5 away; with hysteresis 40 the locator must not move
	for i := 0; i < 10; i++ {
		state = NextSegment(state, route, boundary, 40)
		idx, ok := state.Resolved()
		require.True(t, ok)
		assert.Equal(t, 0, idx, "locator oscillated on iteration %d", i)
	}

	// deep into segment 1 the margin is beaten and the locator switches:
	// d(seg1)=5 vs d(seg0)=sqrt(50^2+5^2)~50.2
	state = NextSegment(state, route, geo.NewPoint(150, 5), 40)
	idx, _ := state.Resolved()
	assert.Equal(t, 1, idx)
}

func TestNextSegmentHysteresisMargin(t *testing.T) {
	route := straightRoute()
	state := ResolvedAt(0)

	// 30 above segment 1's span: d(seg0)=sqrt(30^2+30^2)~42.4 via endpoint,
	// d(seg1)=30. improvement ~12.4 < hysteresis 40 -> stay.
	state = NextSegment(state, route, geo.NewPoint(130, 30), 40)
	idx, _ := state.Resolved()
	assert.Equal(t, 0, idx)

	// with zero hysteresis any improvement switches
	state = NextSegment(ResolvedAt(0), route, geo.NewPoint(130, 30), 0)
	idx, _ = state.Resolved()
	assert.Equal(t, 1, idx)
}

func TestNextSegmentEmptyRoute(t *testing.T) {
	empty := &datastructure.Route{OperatorPLMN: "310260"}

	state := NextSegment(Unresolved(), empty, geo.NewPoint(0, 0), 40)
	_, ok := state.Resolved()
	assert.False(t, ok)
}

func TestNextSegmentRouteShrank(t *testing.T) {
	route := straightRoute()

	// latched index beyond the new route's bounds resolves fresh
	state := NextSegment(ResolvedAt(99), route, geo.NewPoint(50, 0), 40)
	idx, ok := state.Resolved()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}
