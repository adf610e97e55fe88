package ledge

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Side selects a side of the ledge relative to the grab query position.
type Side int

const (
	// Near is the side the query position is on.
	Near Side = iota
	// Far is the side behind the ledge.
	Far
)

func (s Side) String() string {
	switch s {
	case Near:
		return "near"
	case Far:
		return "far"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Near {
		return Far
	}
	return Near
}

// CheckParams configures a climb or fall check.
type CheckParams struct {
	Side          Side
	CapsuleRadius float64
	CapsuleHeight float64
	// LedgeOffset is the horizontal distance kept between the grab point
	// and the character (feet for climbs, capsule surface for falls).
	LedgeOffset float64
	// MaxSwipeHeight is the vertical extent of the capsule sweep.
	MaxSwipeHeight float64
	CollisionMask  LayerMask
	// ErrorMargin is kept between the capsule and the ground so that the
	// static overlap test does not report the ground itself. It is carried
	// into the reported position.
	ErrorMargin float64
}

// ClimbResult is a point the character can stand on after climbing.
type ClimbResult struct {
	Value r3.Vec
	Grab  GrabPosition
}

// FallResult is the point the character lands on after dropping off the
// ledge. Grounded is false when no ground was found within the sweep; Value
// is then the full drop and must not be treated as a guaranteed landing.
type FallResult struct {
	Value    r3.Vec
	Grab     GrabPosition
	Grounded bool
}

var down = r3.Vec{Y: -1}

// CheckClimb looks for a standable point on p.Side of the ledge: a downward
// sweep finds the surface, then a static overlap confirms the capsule fits.
func (g GrabPosition) CheckClimb(oracle GeometryOracle, p CheckParams) (ClimbResult, bool) {
	foot := r3.Add(g.Value, r3.Scale(p.LedgeOffset, g.SideDirection(p.Side)))

	bottom, top := CapsuleAt(foot, p.CapsuleRadius, p.CapsuleHeight)
	bottom.Y += p.ErrorMargin + p.MaxSwipeHeight
	top.Y += p.ErrorMargin + p.MaxSwipeHeight

	climb := foot
	climb.Y += p.ErrorMargin
	if hit, ok := oracle.SweepCapsule(bottom, top, p.CapsuleRadius, down, p.MaxSwipeHeight, p.CollisionMask); ok {
		climb.Y = hit.Position.Y + p.ErrorMargin
	}

	bottom, top = CapsuleAt(climb, p.CapsuleRadius, p.CapsuleHeight)
	if oracle.OverlapsCapsule(bottom, top, p.CapsuleRadius, p.CollisionMask) {
		return ClimbResult{}, false
	}
	return ClimbResult{Value: climb, Grab: g}, true
}

// CheckFall confirms the takeoff footing on p.Side is clear, then sweeps
// down to find where the character lands.
func (g GrabPosition) CheckFall(oracle GeometryOracle, p CheckParams) (FallResult, bool) {
	foot := r3.Add(g.Value, r3.Scale(p.LedgeOffset+p.CapsuleRadius, g.SideDirection(p.Side)))

	lifted := foot
	lifted.Y += p.ErrorMargin
	bottom, top := CapsuleAt(lifted, p.CapsuleRadius, p.CapsuleHeight)
	if oracle.OverlapsCapsule(bottom, top, p.CapsuleRadius, p.CollisionMask) {
		return FallResult{}, false
	}

	fall := lifted
	hit, grounded := oracle.SweepCapsule(bottom, top, p.CapsuleRadius, down, p.MaxSwipeHeight+p.ErrorMargin, p.CollisionMask)
	if grounded {
		fall.Y = hit.Position.Y + p.ErrorMargin
	} else {
		fall.Y -= p.MaxSwipeHeight
	}
	return FallResult{Value: fall, Grab: g, Grounded: grounded}, true
}
