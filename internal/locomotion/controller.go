package locomotion

import (
	"github.com/banshee-data/ledgewalk/internal/catalog"
	"github.com/banshee-data/ledgewalk/internal/config"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"github.com/banshee-data/ledgewalk/internal/monitoring"
	"gonum.org/v1/gonum/spatial/r3"
)

// FrameReport summarises one Tick.
type FrameReport struct {
	Frame    int
	Position r3.Vec
	Velocity r3.Vec
	State    MotionState
	Decision Decision
	Upper    int
	Lower    int
	Stats    catalog.Stats
}

// Controller owns the per-frame pipeline for one character.
type Controller struct {
	Catalog    *catalog.Catalog
	Reconciler *Reconciler
	Motor      *Motor

	anim  AnimationEvents
	frame int
}

// NewController wires existing components together. A nil anim is replaced
// by NopAnimation.
func NewController(cat *catalog.Catalog, rec *Reconciler, motor *Motor, anim AnimationEvents) *Controller {
	if anim == nil {
		anim = NopAnimation{}
	}
	return &Controller{Catalog: cat, Reconciler: rec, Motor: motor, anim: anim}
}

// NewControllerFromTuning builds a catalog, reconciler and motor from cfg
// and places the character at start.
func NewControllerFromTuning(oracle ledge.GeometryOracle, cfg *config.TuningConfig, proximity *catalog.ProximitySet, anim AnimationEvents, start r3.Vec) *Controller {
	if anim == nil {
		anim = NopAnimation{}
	}
	capsule := catalog.CapsuleFromTuning(cfg)
	cat := catalog.New(oracle, capsule, proximity, catalog.ParamsFromTuning(cfg))
	rec := NewReconciler(ReconcilerConfigFromTuning(cfg))
	motor := NewMotor(oracle, capsule, anim, MotorConfigFromTuning(cfg), start)
	return NewController(cat, rec, motor, anim)
}

// Tick runs one frame: unfreeze, classify, decide, apply, integrate.
// Lower ledges are only reconciled while the motor is supported.
func (c *Controller) Tick(dt float64, move r3.Vec) FrameReport {
	c.frame++
	if c.Motor.Frozen() {
		c.Motor.Unfreeze(c.Motor.Config.UnfreezeVelocity)
	}

	c.Catalog.Update(c.Motor.Position())

	decision := Decision{Kind: DecisionNone}
	if c.Motor.State() != OnFall {
		decision = c.Reconciler.Decide(c.Catalog.LowerLedges(), move)
		c.apply(decision)
	}

	state := c.Motor.Step(dt, move)

	report := FrameReport{
		Frame:    c.frame,
		Position: c.Motor.Position(),
		Velocity: c.Motor.Velocity(),
		State:    state,
		Decision: decision,
		Upper:    len(c.Catalog.UpperLedges()),
		Lower:    len(c.Catalog.LowerLedges()),
		Stats:    c.Catalog.Stats(),
	}
	if monitoring.TraceEnabled() {
		monitoring.Tracef("frame=%d state=%s decision=%s pos=(%.3f,%.3f,%.3f)",
			report.Frame, report.State, report.Decision.Kind, report.Position.X, report.Position.Y, report.Position.Z)
	}
	return report
}

func (c *Controller) apply(d Decision) {
	switch d.Kind {
	case DecisionSnapUp:
		c.Motor.Teleport(d.Target)
		c.Motor.Freeze()
		c.anim.OnClimb(d.Target)
		c.anim.OnStop()
	case DecisionForceClimb:
		c.Motor.Teleport(d.Target)
		c.Motor.Freeze()
		c.anim.OnClimb(d.Target)
	case DecisionForceDescent:
		c.Motor.Push(d.Velocity)
	}
}
