package ledge_test

import (
	"testing"

	"github.com/banshee-data/ledgewalk/internal/collision"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	radius = 0.3
	height = 1.8
)

func stepWorld(top float64) (*collision.World, *ledge.Ledge) {
	w := collision.NewWorld(
		collision.NewBox("floor", r3.Vec{X: -10, Y: -1, Z: -10}, r3.Vec{X: 10, Z: 10}, 1),
		collision.NewBox("platform", r3.Vec{X: -5}, r3.Vec{X: 5, Y: top, Z: 5}, 1),
	)
	return w, ledge.NewWithID("edge", r3.Vec{X: -5, Y: top}, r3.Vec{X: 1}, 10)
}

func params(side ledge.Side, offset, swipe float64) ledge.CheckParams {
	return ledge.CheckParams{
		Side:           side,
		CapsuleRadius:  radius,
		CapsuleHeight:  height,
		LedgeOffset:    offset,
		MaxSwipeHeight: swipe,
		CollisionMask:  1,
		ErrorMargin:    0.02,
	}
}

func TestCheckClimb_StandsOnTop(t *testing.T) {
	w, l := stepWorld(1)
	g := l.GrabPosition(r3.Vec{Z: -0.5}, radius+0.02)

	got, ok := g.CheckClimb(w, params(ledge.Far, 0.3, 0.2))
	require.True(t, ok)
	assert.InDelta(t, 0, got.Value.X, 1e-9)
	assert.InDelta(t, 1.02, got.Value.Y, 1e-9)
	assert.InDelta(t, 0.3, got.Value.Z, 1e-9)
	assert.Equal(t, g, got.Grab)
}

func TestCheckClimb_SnapsToRaisedSurface(t *testing.T) {
	w, l := stepWorld(1)
	// A lip just behind the edge, lower than the swipe height.
	w.Add(collision.NewBox("lip", r3.Vec{X: -5, Y: 1, Z: 0.2}, r3.Vec{X: 5, Y: 1.1, Z: 5}, 1))
	g := l.GrabPosition(r3.Vec{Z: -0.5}, radius+0.02)

	got, ok := g.CheckClimb(w, params(ledge.Far, 0.3, 0.2))
	require.True(t, ok)
	assert.InDelta(t, 1.12, got.Value.Y, 1e-6)
}

func TestCheckClimb_BlockedByCeiling(t *testing.T) {
	w, l := stepWorld(1)
	w.Add(collision.NewBox("ceiling", r3.Vec{X: -5, Y: 2, Z: 0}, r3.Vec{X: 5, Y: 3, Z: 5}, 1))
	g := l.GrabPosition(r3.Vec{Z: -0.5}, radius+0.02)

	_, ok := g.CheckClimb(w, params(ledge.Far, 0.3, 0.2))
	assert.False(t, ok)
}

func TestCheckFall(t *testing.T) {
	w, l := stepWorld(1)
	g := l.GrabPosition(r3.Vec{Z: -0.5}, radius+0.02)

	t.Run("lands on the floor", func(t *testing.T) {
		got, ok := g.CheckFall(w, params(ledge.Near, 0.32, 2))
		require.True(t, ok)
		assert.True(t, got.Grounded)
		assert.InDelta(t, 0.02, got.Value.Y, 1e-9)
		assert.InDelta(t, -0.62, got.Value.Z, 1e-9)
	})

	t.Run("too deep to find ground", func(t *testing.T) {
		got, ok := g.CheckFall(w, params(ledge.Near, 0.32, 0.5))
		require.True(t, ok)
		assert.False(t, got.Grounded)
		assert.InDelta(t, 1.02-0.5, got.Value.Y, 1e-9)
	})

	t.Run("takeoff occupied", func(t *testing.T) {
		walled, l := stepWorld(1)
		walled.Add(collision.NewBox("wall", r3.Vec{X: -5, Y: 1, Z: -1}, r3.Vec{X: 5, Y: 3, Z: -0.4}, 1))
		g := l.GrabPosition(r3.Vec{Z: -0.2}, radius+0.02)

		_, ok := g.CheckFall(walled, params(ledge.Near, 0.02, 2))
		assert.False(t, ok)
	})
}

// Climb results never overlap geometry and falls never start inside it,
// over a spread of query positions and obstacle layouts.
func TestChecks_Properties(t *testing.T) {
	layouts := []func(w *collision.World){
		func(*collision.World) {},
		func(w *collision.World) {
			w.Add(collision.NewBox("pillar", r3.Vec{X: -0.4, Y: 1, Z: 0.1}, r3.Vec{X: 0.4, Y: 4, Z: 0.6}, 1))
		},
		func(w *collision.World) {
			w.Add(collision.NewBox("slab", r3.Vec{X: -5, Y: 1.9, Z: -3}, r3.Vec{X: 5, Y: 2.2, Z: 3}, 1))
		},
		func(w *collision.World) {
			w.Add(collision.NewBox("crate", r3.Vec{X: -1, Z: -1.2}, r3.Vec{X: 1, Y: 0.9, Z: -0.3}, 1))
		},
	}

	for li, layout := range layouts {
		w, l := stepWorld(1)
		layout(w)
		for x := -4.5; x <= 4.5; x += 0.75 {
			for _, z := range []float64{-1.5, -0.5, -0.1, 0.2, 1} {
				g := l.GrabPosition(r3.Vec{X: x, Z: z}, radius+0.02)
				for _, side := range []ledge.Side{ledge.Near, ledge.Far} {
					if c, ok := g.CheckClimb(w, params(side, 0.3, 0.2)); ok {
						bottom, top := ledge.CapsuleAt(c.Value, radius, height)
						if w.OverlapsCapsule(bottom, top, radius, 1) {
							t.Errorf("layout %d: climb target %v overlaps geometry", li, c.Value)
						}
					}

					p := params(side, 0.02, 2)
					foot := r3.Add(g.Value, r3.Scale(p.LedgeOffset+radius, g.SideDirection(side)))
					foot.Y += p.ErrorMargin
					bottom, top := ledge.CapsuleAt(foot, radius, height)
					occupied := w.OverlapsCapsule(bottom, top, radius, 1)
					if _, ok := g.CheckFall(w, p); ok == occupied {
						t.Errorf("layout %d: fall ok=%v with takeoff occupied=%v at %v", li, ok, occupied, foot)
					}
				}
			}
		}
	}
}

type recordingOracle struct {
	overlaps int
	maxDist  []float64
	masks    []ledge.LayerMask
}

func (o *recordingOracle) OverlapsCapsule(_, _ r3.Vec, _ float64, mask ledge.LayerMask) bool {
	o.overlaps++
	o.masks = append(o.masks, mask)
	return false
}

func (o *recordingOracle) SweepCapsule(_, _ r3.Vec, _ float64, _ r3.Vec, maxDistance float64, mask ledge.LayerMask) (ledge.Hit, bool) {
	o.maxDist = append(o.maxDist, maxDistance)
	o.masks = append(o.masks, mask)
	return ledge.Hit{}, false
}

func TestChecks_OracleUsage(t *testing.T) {
	l := ledge.NewWithID("edge", r3.Vec{Y: 1}, r3.Vec{X: 1}, 4)
	g := l.GrabPosition(r3.Vec{X: 2, Z: -1}, 0.32)

	p := params(ledge.Far, 0.3, 0.2)
	p.CollisionMask = 4

	o := &recordingOracle{}
	c, ok := g.CheckClimb(o, p)
	require.True(t, ok)
	assert.InDelta(t, 1.02, c.Value.Y, 1e-9, "no hit keeps the candidate height")
	assert.Equal(t, 1, o.overlaps)
	assert.Equal(t, []float64{0.2}, o.maxDist)

	o = &recordingOracle{}
	f, ok := g.CheckFall(o, p)
	require.True(t, ok)
	assert.False(t, f.Grounded)
	assert.InDelta(t, 1.02-0.2, f.Value.Y, 1e-9)
	assert.InDelta(t, 0.22, o.maxDist[0], 1e-9)
	assert.Equal(t, []ledge.LayerMask{4, 4}, o.masks)
}
