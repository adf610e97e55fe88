package locomotion

import (
	"testing"

	"github.com/banshee-data/ledgewalk/internal/catalog"
	"github.com/banshee-data/ledgewalk/internal/collision"
	"github.com/banshee-data/ledgewalk/internal/config"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// platformScene is a floor with a 1m platform over z in [0,5]; the edge
// ledge runs along z=0 and is already in the proximity set.
func platformScene(t *testing.T, anim AnimationEvents, start r3.Vec) *Controller {
	t.Helper()
	w := collision.NewWorld(
		floorBox(),
		collision.NewBox("platform", r3.Vec{X: -5}, r3.Vec{X: 5, Y: 1, Z: 5}, 1),
	)
	edge := ledge.NewWithID("edge", r3.Vec{X: -5, Y: 1}, r3.Vec{X: 1}, 10)
	prox := catalog.NewProximitySet()
	prox.Enter(edge)
	return NewControllerFromTuning(w, config.EmptyTuningConfig(), prox, anim, start)
}

func TestController_WalkOffEdge(t *testing.T) {
	anim := &recordingAnimation{}
	c := platformScene(t, anim, r3.Vec{Y: 1, Z: 1})
	require.Equal(t, OnGround, c.Motor.State())

	move := r3.Vec{Z: -1}
	var (
		reports []FrameReport
		sawFall bool
	)
	for i := 0; i < 300; i++ {
		r := c.Tick(0.02, move)
		reports = append(reports, r)
		if r.State == OnFall {
			sawFall = true
		}
		if sawFall && r.State == OnGround {
			break
		}
	}

	require.True(t, sawFall, "character never left the platform")
	last := reports[len(reports)-1]
	assert.Equal(t, OnGround, last.State)
	assert.InDelta(t, 0, last.Position.Y, 1e-9)
	assert.Less(t, last.Position.Z, -0.3)
	assert.Equal(t, 1, anim.falls)
	assert.Equal(t, 1, anim.landings)
	assert.Empty(t, anim.climbs)

	var kinds []DecisionKind
	for i, r := range reports {
		assert.Equal(t, i+1, r.Frame)
		kinds = append(kinds, r.Decision.Kind)
		assert.NotEqual(t, DecisionSnapUp, r.Decision.Kind, "frame %d", r.Frame)
	}
	assert.Contains(t, kinds, DecisionLetFall)

	// Once on the floor the edge is above the character.
	assert.Equal(t, 1, last.Upper)
	assert.Equal(t, 0, last.Lower)
}

func TestController_SnapUpWhenBackingAway(t *testing.T) {
	anim := &recordingAnimation{}
	c := platformScene(t, anim, r3.Vec{Y: 1, Z: -0.1})
	require.Equal(t, OnGround, c.Motor.State())

	r := c.Tick(0.02, r3.Vec{Z: 1})
	require.Equal(t, DecisionSnapUp, r.Decision.Kind)
	assert.InDelta(t, 1.02, r.Position.Y, 1e-9)
	assert.InDelta(t, 0.3, r.Position.Z, 1e-9)
	assert.True(t, c.Motor.Frozen())
	require.Len(t, anim.climbs, 1)
	assert.Equal(t, 1, anim.stops)

	r = c.Tick(0.02, r3.Vec{Z: 1})
	assert.False(t, c.Motor.Frozen())
	assert.Equal(t, DecisionNone, r.Decision.Kind)
	assert.Equal(t, OnGround, r.State)
	assert.InDelta(t, 1, r.Position.Y, 1e-9)
	assert.InDelta(t, 0.34, r.Position.Z, 1e-9)
}

func TestController_IdleAtEdgeHolds(t *testing.T) {
	c := platformScene(t, nil, r3.Vec{Y: 1, Z: 0.2})

	r := c.Tick(0.02, r3.Vec{})
	assert.Equal(t, DecisionHold, r.Decision.Kind)
	assert.Equal(t, 1, r.Lower)
	assert.InDelta(t, 0.2, r.Position.Z, 1e-9)
}

func TestController_AppliesForcedDecisions(t *testing.T) {
	anim := &recordingAnimation{}
	c := platformScene(t, anim, r3.Vec{Y: 1, Z: 2})

	c.apply(Decision{Kind: DecisionForceDescent, Velocity: r3.Vec{Z: -1.5}})
	c.Motor.Step(0.1, r3.Vec{})
	assert.InDelta(t, 1.85, c.Motor.Position().Z, 1e-9)
	assert.False(t, c.Motor.Frozen())

	target := r3.Vec{Y: 1.02, Z: 3}
	c.apply(Decision{Kind: DecisionForceClimb, Target: target})
	assert.Equal(t, target, c.Motor.Position())
	assert.True(t, c.Motor.Frozen())
	assert.Equal(t, []r3.Vec{target}, anim.climbs)
	assert.Equal(t, 0, anim.stops)

	c.apply(Decision{Kind: DecisionNone})
	c.apply(Decision{Kind: DecisionHold})
	assert.Equal(t, target, c.Motor.Position())
}

func TestController_SkipsReconcileWhileFalling(t *testing.T) {
	c := platformScene(t, nil, r3.Vec{Y: 1.5, Z: -0.1})
	require.Equal(t, OnFall, c.Motor.State())

	r := c.Tick(0.02, r3.Vec{Z: 1})
	assert.Equal(t, DecisionNone, r.Decision.Kind)
	assert.Nil(t, r.Decision.Ledge)
}
