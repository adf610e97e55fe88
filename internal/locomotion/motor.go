package locomotion

import (
	"math"

	"github.com/banshee-data/ledgewalk/internal/catalog"
	"github.com/banshee-data/ledgewalk/internal/config"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"github.com/banshee-data/ledgewalk/internal/monitoring"
	"gonum.org/v1/gonum/spatial/r3"
)

// MotionState is the motor's locomotion mode.
type MotionState string

const (
	OnGround  MotionState = "on_ground"  // Supported by ground
	OnFall    MotionState = "on_fall"    // Airborne under gravity
	OnLanding MotionState = "on_landing" // Touched down this frame
)

// MotorConfig holds the movement integration settings.
type MotorConfig struct {
	WalkSpeed        float64 // Horizontal speed at full input (m/s)
	Gravity          float64 // Downward acceleration (m/s²)
	GroundProbe      float64 // Extra probe depth below the feet (meters)
	UnfreezeVelocity float64 // Vertical velocity re-seeded on unfreeze (m/s)
	CollisionMask    ledge.LayerMask
}

// MotorConfigFromTuning reads the motor settings from a TuningConfig.
func MotorConfigFromTuning(cfg *config.TuningConfig) MotorConfig {
	return MotorConfig{
		WalkSpeed:        cfg.GetWalkSpeed(),
		Gravity:          cfg.GetGravity(),
		GroundProbe:      cfg.GetGroundProbe(),
		UnfreezeVelocity: cfg.GetUnfreezeVelocity(),
		CollisionMask:    ledge.LayerMask(cfg.GetCollisionMask()),
	}
}

type stateHandler func(m *Motor, dt float64, move r3.Vec)

var stateHandlers = map[MotionState]stateHandler{
	OnGround:  (*Motor).stepGround,
	OnFall:    (*Motor).stepFall,
	OnLanding: (*Motor).stepLanding,
}

var down = r3.Vec{Y: -1}

// Motor integrates the character capsule against the geometry oracle.
type Motor struct {
	Config MotorConfig

	oracle    ledge.GeometryOracle
	character catalog.CharacterProperties
	anim      AnimationEvents

	position r3.Vec
	velocity r3.Vec
	push     r3.Vec
	state    MotionState
	frozen   bool
}

// NewMotor places a motor at start. It starts grounded when the probe finds
// ground under start. A nil anim is replaced by NopAnimation.
func NewMotor(oracle ledge.GeometryOracle, character catalog.CharacterProperties, anim AnimationEvents, cfg MotorConfig, start r3.Vec) *Motor {
	if anim == nil {
		anim = NopAnimation{}
	}
	m := &Motor{
		Config:    cfg,
		oracle:    oracle,
		character: character,
		anim:      anim,
		position:  start,
		state:     OnFall,
	}
	if y, ok := m.probeGround(start); ok {
		m.position.Y = y
		m.state = OnGround
	}
	return m
}

func (m *Motor) Position() r3.Vec   { return m.position }
func (m *Motor) Velocity() r3.Vec   { return m.velocity }
func (m *Motor) State() MotionState { return m.state }
func (m *Motor) Frozen() bool       { return m.frozen }

// Teleport moves the character to p and clears its velocity.
func (m *Motor) Teleport(p r3.Vec) {
	m.position = p
	m.velocity = r3.Vec{}
	m.state = OnGround
}

// Freeze suspends integration until Unfreeze.
func (m *Motor) Freeze() { m.frozen = true }

// Unfreeze resumes integration with vy as the vertical velocity.
func (m *Motor) Unfreeze(vy float64) {
	m.frozen = false
	m.velocity.Y = vy
}

// Push adds a horizontal velocity to the next grounded Step.
func (m *Motor) Push(v r3.Vec) { m.push = ledge.Flatten(v) }

// Step integrates one frame. move is the desired horizontal direction with
// magnitude up to 1. A frozen motor does not move.
func (m *Motor) Step(dt float64, move r3.Vec) MotionState {
	if m.frozen {
		return m.state
	}
	h, ok := stateHandlers[m.state]
	if !ok {
		monitoring.Opsf("motor: unknown state %q, falling", m.state)
		m.state = OnFall
		h = stateHandlers[OnFall]
	}
	h(m, dt, move)
	m.push = r3.Vec{}
	return m.state
}

func (m *Motor) stepGround(dt float64, move r3.Vec) {
	vel := r3.Add(m.walkVelocity(move), m.push)
	if !m.moveHorizontal(r3.Scale(dt, vel), m.character.StepOffset()) {
		vel = r3.Vec{}
	}

	if y, ok := m.probeGround(m.position); ok {
		m.position.Y = y
		m.velocity = vel
		m.anim.OnGroundUpdate(r3.Norm(vel))
		return
	}

	vel.Y = math.Min(m.velocity.Y, 0)
	m.velocity = vel
	m.state = OnFall
	m.anim.OnFall()
}

func (m *Motor) stepFall(dt float64, _ r3.Vec) {
	hv := ledge.Flatten(m.velocity)
	if !m.moveHorizontal(r3.Scale(dt, hv), 0) {
		hv = r3.Vec{}
	}

	vy := m.velocity.Y - m.Config.Gravity*dt
	dy := vy * dt
	if dy < 0 {
		bottom, top := ledge.CapsuleAt(m.position, m.character.Radius(), m.character.Height())
		if hit, ok := m.oracle.SweepCapsule(bottom, top, m.character.Radius(), down, -dy, m.Config.CollisionMask); ok {
			m.position.Y = hit.Position.Y
			m.velocity = hv
			m.state = OnLanding
			m.anim.OnLanding()
			return
		}
	}
	m.position.Y += dy
	hv.Y = vy
	m.velocity = hv
}

func (m *Motor) stepLanding(dt float64, move r3.Vec) {
	m.state = OnGround
	m.stepGround(dt, move)
}

func (m *Motor) walkVelocity(move r3.Vec) r3.Vec {
	flat := ledge.Flatten(move)
	if n := r3.Norm(flat); n > 1 {
		flat = r3.Scale(1/n, flat)
	}
	return r3.Scale(m.Config.WalkSpeed, flat)
}

// moveHorizontal applies delta when the capsule, raised by lift, fits at the
// destination.
func (m *Motor) moveHorizontal(delta r3.Vec, lift float64) bool {
	if r3.Norm2(delta) == 0 {
		return true
	}
	target := r3.Add(m.position, delta)
	feet := target
	feet.Y += lift
	bottom, top := ledge.CapsuleAt(feet, m.character.Radius(), m.character.Height())
	if m.oracle.OverlapsCapsule(bottom, top, m.character.Radius(), m.Config.CollisionMask) {
		return false
	}
	m.position = target
	return true
}

// probeGround sweeps down from one step above from and returns the ground
// height within a step plus the probe depth below it.
func (m *Motor) probeGround(from r3.Vec) (float64, bool) {
	lift := m.character.StepOffset()
	feet := from
	feet.Y += lift
	bottom, top := ledge.CapsuleAt(feet, m.character.Radius(), m.character.Height())
	hit, ok := m.oracle.SweepCapsule(bottom, top, m.character.Radius(), down, lift+m.Config.GroundProbe, m.Config.CollisionMask)
	if !ok {
		return 0, false
	}
	return hit.Position.Y, true
}
