package locomotion

import (
	"testing"

	"github.com/banshee-data/ledgewalk/internal/catalog"
	"github.com/banshee-data/ledgewalk/internal/collision"
	"github.com/banshee-data/ledgewalk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var testCapsule = catalog.Capsule{HeightM: 1.8, RadiusM: 0.3, StepOffsetM: 0.3}

type recordingAnimation struct {
	groundUpdates []float64
	falls         int
	landings      int
	climbs        []r3.Vec
	stops         int
}

func (a *recordingAnimation) OnGroundUpdate(speed float64) { a.groundUpdates = append(a.groundUpdates, speed) }
func (a *recordingAnimation) OnFall()                      { a.falls++ }
func (a *recordingAnimation) OnLanding()                   { a.landings++ }
func (a *recordingAnimation) OnClimb(target r3.Vec)        { a.climbs = append(a.climbs, target) }
func (a *recordingAnimation) OnStop()                      { a.stops++ }

func floorBox() collision.Box {
	return collision.NewBox("floor", r3.Vec{X: -10, Y: -1, Z: -10}, r3.Vec{X: 10, Z: 10}, 1)
}

func newTestMotor(w *collision.World, anim AnimationEvents, start r3.Vec) *Motor {
	return NewMotor(w, testCapsule, anim, MotorConfigFromTuning(config.EmptyTuningConfig()), start)
}

func TestMotor_StartsGrounded(t *testing.T) {
	m := newTestMotor(collision.NewWorld(floorBox()), nil, r3.Vec{Y: 0.03})
	assert.Equal(t, OnGround, m.State())
	assert.InDelta(t, 0, m.Position().Y, 1e-9)

	air := newTestMotor(collision.NewWorld(floorBox()), nil, r3.Vec{Y: 2})
	assert.Equal(t, OnFall, air.State())
	assert.InDelta(t, 2, air.Position().Y, 1e-9)
}

func TestMotor_Walk(t *testing.T) {
	anim := &recordingAnimation{}
	m := newTestMotor(collision.NewWorld(floorBox()), anim, r3.Vec{})

	state := m.Step(0.1, r3.Vec{X: 1})
	assert.Equal(t, OnGround, state)
	assert.InDelta(t, 0.2, m.Position().X, 1e-9)
	assert.InDelta(t, 0, m.Position().Y, 1e-9)
	require.Len(t, anim.groundUpdates, 1)
	assert.InDelta(t, 2, anim.groundUpdates[0], 1e-9)

	// Input longer than one is clamped to walk speed.
	m.Step(0.1, r3.Vec{X: 3, Z: 4})
	assert.InDelta(t, 2, r3.Norm(m.Velocity()), 1e-9)
}

func TestMotor_BlockedByWall(t *testing.T) {
	w := collision.NewWorld(floorBox(), collision.NewBox("wall", r3.Vec{X: 0.5}, r3.Vec{X: 1, Y: 3, Z: 5}, 1))
	m := newTestMotor(w, nil, r3.Vec{Z: 1})

	m.Step(0.1, r3.Vec{X: 1})
	assert.InDelta(t, 0.2, m.Position().X, 1e-9)

	m.Step(0.1, r3.Vec{X: 1})
	assert.InDelta(t, 0.2, m.Position().X, 1e-9)
	assert.Equal(t, r3.Vec{}, m.Velocity())
}

func TestMotor_StepsUpSmallStep(t *testing.T) {
	w := collision.NewWorld(floorBox(), collision.NewBox("step", r3.Vec{X: 0.5}, r3.Vec{X: 3, Y: 0.2, Z: 5}, 1))
	m := newTestMotor(w, nil, r3.Vec{Z: 1})

	for i := 0; i < 10; i++ {
		m.Step(0.1, r3.Vec{X: 1})
	}
	assert.Equal(t, OnGround, m.State())
	assert.InDelta(t, 2, m.Position().X, 1e-9)
	assert.InDelta(t, 0.2, m.Position().Y, 1e-9)
}

func TestMotor_FallAndLand(t *testing.T) {
	anim := &recordingAnimation{}
	m := newTestMotor(collision.NewWorld(floorBox()), anim, r3.Vec{Y: 1})
	require.Equal(t, OnFall, m.State())

	var states []MotionState
	for i := 0; i < 100 && m.State() != OnGround; i++ {
		states = append(states, m.Step(0.02, r3.Vec{}))
	}

	require.Equal(t, OnGround, m.State())
	assert.Contains(t, states, OnLanding)
	assert.InDelta(t, 0, m.Position().Y, 1e-9)
	assert.Equal(t, 1, anim.landings)
	assert.Equal(t, 0, anim.falls)
	for i := 1; i < len(states); i++ {
		if states[i-1] == OnLanding {
			assert.Equal(t, OnGround, states[i], "landing lasts one frame")
		}
	}
}

func TestMotor_FreezeAndUnfreeze(t *testing.T) {
	m := newTestMotor(collision.NewWorld(floorBox()), nil, r3.Vec{})
	m.Freeze()
	require.True(t, m.Frozen())

	before := m.Position()
	m.Step(0.1, r3.Vec{X: 1})
	assert.Equal(t, before, m.Position())

	m.Unfreeze(-0.1)
	assert.False(t, m.Frozen())
	assert.InDelta(t, -0.1, m.Velocity().Y, 1e-12)

	m.Step(0.1, r3.Vec{X: 1})
	assert.InDelta(t, 0.2, m.Position().X, 1e-9)
}

func TestMotor_PushLastsOneStep(t *testing.T) {
	m := newTestMotor(collision.NewWorld(floorBox()), nil, r3.Vec{})

	m.Push(r3.Vec{Y: 5, Z: -1.5})
	m.Step(0.1, r3.Vec{})
	assert.InDelta(t, -0.15, m.Position().Z, 1e-9)
	assert.InDelta(t, 0, m.Position().Y, 1e-9)

	m.Step(0.1, r3.Vec{})
	assert.InDelta(t, -0.15, m.Position().Z, 1e-9)
}

func TestMotor_TeleportGrounds(t *testing.T) {
	m := newTestMotor(collision.NewWorld(floorBox()), nil, r3.Vec{Y: 3})
	m.Teleport(r3.Vec{X: 1, Y: 0.02, Z: 1})
	assert.Equal(t, OnGround, m.State())
	assert.Equal(t, r3.Vec{}, m.Velocity())

	m.Step(0.02, r3.Vec{})
	assert.InDelta(t, 0, m.Position().Y, 1e-9)
}

func TestMotor_UnknownStateFalls(t *testing.T) {
	m := newTestMotor(collision.NewWorld(floorBox()), nil, r3.Vec{Y: 2})
	m.state = MotionState("sliding")

	m.Step(0.02, r3.Vec{})
	assert.Equal(t, OnFall, m.State())
	assert.Less(t, m.Position().Y, 2.0)
}
