package scene

import (
	"testing"

	"github.com/banshee-data/ledgewalk/internal/catalog"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestTriggers_EnterExit(t *testing.T) {
	a := ledge.FromEndpoints(r3.Vec{X: -1, Y: 1}, r3.Vec{X: 1, Y: 1})
	b := ledge.FromEndpoints(r3.Vec{X: 1, Y: 1}, r3.Vec{X: 1, Y: 1, Z: -2})
	prox := catalog.NewProximitySet()
	trig := NewTriggers([]*ledge.Ledge{a, b}, 1.0, nil, prox)

	entered, exited := trig.Update(r3.Vec{X: -3, Y: 1, Z: 3})
	assert.Zero(t, entered)
	assert.Zero(t, exited)
	assert.Zero(t, prox.Len())

	// In front of a, out of reach of b.
	entered, exited = trig.Update(r3.Vec{X: -0.5, Y: 1, Z: 0.5})
	assert.Equal(t, 1, entered)
	assert.Zero(t, exited)
	assert.True(t, prox.Contains(a))
	assert.False(t, prox.Contains(b))

	// Standing still does not re-enter.
	entered, _ = trig.Update(r3.Vec{X: -0.5, Y: 1, Z: 0.5})
	assert.Zero(t, entered)

	// At the shared corner both volumes contain the point.
	entered, _ = trig.Update(r3.Vec{X: 1.5, Y: 1})
	assert.Equal(t, 1, entered)
	assert.Equal(t, 2, prox.Len())

	entered, exited = trig.Update(r3.Vec{X: 5, Y: 1})
	assert.Zero(t, entered)
	assert.Equal(t, 2, exited)
	assert.Zero(t, prox.Len())
}

func TestTriggers_BoundaryInclusive(t *testing.T) {
	l := ledge.FromEndpoints(r3.Vec{}, r3.Vec{X: 2})
	prox := catalog.NewProximitySet()
	trig := NewTriggers([]*ledge.Ledge{l}, 0.5, nil, prox)

	entered, _ := trig.Update(r3.Vec{X: 1, Z: 0.5})
	assert.Equal(t, 1, entered)
	_, exited := trig.Update(r3.Vec{X: 2.6})
	assert.Equal(t, 1, exited)
}

func TestSegmentDistance(t *testing.T) {
	a, b := r3.Vec{}, r3.Vec{X: 4}
	assert.InDelta(t, 3, segmentDistance(r3.Vec{X: 2, Y: 3}, a, b), 1e-12)
	assert.InDelta(t, 5, segmentDistance(r3.Vec{X: -3, Z: 4}, a, b), 1e-12)
	assert.InDelta(t, 1, segmentDistance(r3.Vec{X: 5}, a, b), 1e-12)
	assert.InDelta(t, 2, segmentDistance(r3.Vec{Y: 2}, a, a), 1e-12)
}

func TestTriggers_CapsuleReachesLedgeAboveFeet(t *testing.T) {
	// A 1m ledge seen from the floor, with the character's capsule
	// touching the wall below it.
	edge := ledge.FromEndpoints(r3.Vec{X: -4, Y: 1}, r3.Vec{X: 4, Y: 1})
	capsule := catalog.Capsule{HeightM: 1.8, RadiusM: 0.3, StepOffsetM: 0.3}
	prox := catalog.NewProximitySet()
	trig := NewTriggers([]*ledge.Ledge{edge}, 1.0, capsule, prox)

	entered, _ := trig.Update(r3.Vec{Z: -1.7})
	assert.Zero(t, entered)

	entered, _ = trig.Update(r3.Vec{Z: -0.3})
	assert.Equal(t, 1, entered)
	assert.True(t, prox.Contains(edge))

	// Still inside once the capsule surface is within reach.
	_, exited := trig.Update(r3.Vec{Z: -1.25})
	assert.Zero(t, exited)
	_, exited = trig.Update(r3.Vec{Z: -1.35})
	assert.Equal(t, 1, exited)
}

func TestTriggers_TallCapsuleUnderHighLedge(t *testing.T) {
	// The feet are 2m below the ledge but the head is right under it.
	edge := ledge.FromEndpoints(r3.Vec{X: -1, Y: 2}, r3.Vec{X: 1, Y: 2})
	capsule := catalog.Capsule{HeightM: 1.8, RadiusM: 0.3}
	prox := catalog.NewProximitySet()
	trig := NewTriggers([]*ledge.Ledge{edge}, 0.5, capsule, prox)

	entered, _ := trig.Update(r3.Vec{})
	assert.Equal(t, 1, entered)
}

func TestCapsuleAxis(t *testing.T) {
	bottom, top := capsuleAxis(r3.Vec{X: 1}, catalog.Capsule{HeightM: 1.8, RadiusM: 0.3})
	assert.InDelta(t, 0.3, bottom.Y, 1e-12)
	assert.InDelta(t, 1.5, top.Y, 1e-12)
	assert.Equal(t, 1.0, bottom.X)

	// Shorter than its diameter: collapses to the centre.
	bottom, top = capsuleAxis(r3.Vec{}, catalog.Capsule{HeightM: 0.4, RadiusM: 0.3})
	assert.Equal(t, bottom, top)
	assert.InDelta(t, 0.2, bottom.Y, 1e-12)
}

func TestSegmentSegmentDistance(t *testing.T) {
	tests := []struct {
		name           string
		p1, q1, p2, q2 r3.Vec
		want           float64
	}{
		{"skew perpendicular", r3.Vec{}, r3.Vec{X: 2}, r3.Vec{X: 1, Y: 1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1}, 1},
		{"parallel overlapping", r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 2}, r3.Vec{X: 1, Y: 2}, 2},
		{"collinear apart", r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 3}, r3.Vec{X: 4}, 2},
		{"crossing", r3.Vec{X: -1}, r3.Vec{X: 1}, r3.Vec{Z: -1}, r3.Vec{Z: 1}, 0},
		{"endpoint to endpoint", r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{X: 3, Y: 5}, r3.Vec{X: 3, Y: 9}, 5},
		{"first is a point", r3.Vec{Y: 3}, r3.Vec{Y: 3}, r3.Vec{X: -1}, r3.Vec{X: 1}, 3},
		{"second is a point", r3.Vec{X: -1}, r3.Vec{X: 1}, r3.Vec{Z: 2}, r3.Vec{Z: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, segmentSegmentDistance(tt.p1, tt.q1, tt.p2, tt.q2), 1e-12)
			assert.InDelta(t, tt.want, segmentSegmentDistance(tt.p2, tt.q2, tt.p1, tt.q1), 1e-12)
		})
	}
}
