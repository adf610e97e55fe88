package catalog

import (
	"github.com/banshee-data/ledgewalk/internal/config"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"gonum.org/v1/gonum/spatial/r3"
)

// CharacterProperties exposes the character capsule. It is read once per
// frame.
type CharacterProperties interface {
	Height() float64
	Radius() float64
	StepOffset() float64
}

// Capsule is a fixed CharacterProperties.
type Capsule struct {
	HeightM     float64
	RadiusM     float64
	StepOffsetM float64
}

func (c Capsule) Height() float64     { return c.HeightM }
func (c Capsule) Radius() float64     { return c.RadiusM }
func (c Capsule) StepOffset() float64 { return c.StepOffsetM }

// CapsuleFromTuning builds the character capsule from a loaded TuningConfig.
func CapsuleFromTuning(cfg *config.TuningConfig) Capsule {
	return Capsule{
		HeightM:     cfg.GetCharacterHeight(),
		RadiusM:     cfg.GetCharacterRadius(),
		StepOffsetM: cfg.GetStepOffset(),
	}
}

// Params holds the ledge detection tuning.
type Params struct {
	WallMargin    float64 // kept between the character and the ledge when grabbing or falling
	ClimbMargin   float64 // sweep height used when looking for the top of a ledge
	GroundMargin  float64 // kept between capsule and ground during checks
	FallDistance  float64 // distance from the ledge to the feet when standing on top
	FallHeight    float64 // sweep height used when looking for the bottom of a drop
	CollisionMask ledge.LayerMask
}

// ParamsFromTuning builds Params from a loaded TuningConfig.
func ParamsFromTuning(cfg *config.TuningConfig) Params {
	return Params{
		WallMargin:    cfg.GetWallMargin(),
		ClimbMargin:   cfg.GetClimbMargin(),
		GroundMargin:  cfg.GetGroundMargin(),
		FallDistance:  cfg.GetFallDistance(),
		FallHeight:    cfg.GetFallHeight(),
		CollisionMask: ledge.LayerMask(cfg.GetCollisionMask()),
	}
}

// Kind distinguishes the two ledge classifications.
type Kind string

const (
	KindUpper Kind = "upper" // above the character: climbable
	KindLower Kind = "lower" // at the character's feet: a drop on one side
)

// ClassifiedLedge is either an UpperLedge or a LowerLedge.
type ClassifiedLedge interface {
	Kind() Kind
	GrabPosition() ledge.GrabPosition
	sealed()
}

// UpperLedge is a ledge above the character with a standable point on top.
type UpperLedge struct {
	Grab  ledge.GrabPosition
	Climb ledge.ClimbResult
	Fall  ledge.FallResult
}

func (UpperLedge) Kind() Kind                         { return KindUpper }
func (u UpperLedge) GrabPosition() ledge.GrabPosition { return u.Grab }
func (UpperLedge) sealed()                            {}

// Target is where the character stands after climbing.
func (u UpperLedge) Target() ledge.ClimbResult { return u.Climb }

// LowerLedge is a ledge at the character's feet with a drop on one side.
//
// IsGrounded is true when the character stands on the upper side and the
// drop lies behind the ledge; false when the character already overhangs
// the drop. Up is the standing point on the upper side, Down the landing
// point below; either may be absent.
type LowerLedge struct {
	Grab       ledge.GrabPosition
	Up         *ledge.ClimbResult
	Down       *ledge.FallResult
	IsGrounded bool
}

func (LowerLedge) Kind() Kind                         { return KindLower }
func (l LowerLedge) GrabPosition() ledge.GrabPosition { return l.Grab }
func (LowerLedge) sealed()                            {}

// FallSide is the side of the ledge the drop is on, relative to the
// character.
func (l LowerLedge) FallSide() ledge.Side {
	if l.IsGrounded {
		return ledge.Far
	}
	return ledge.Near
}

// FallDirection is the horizontal direction from the ledge toward the drop.
func (l LowerLedge) FallDirection() r3.Vec {
	return l.Grab.SideDirection(l.FallSide())
}

// Stats counts classification outcomes for the last Update.
type Stats struct {
	Tracked       int
	Upper         int
	Lower         int
	DiscardedLow  int // ledge far below the character
	DiscardedStep int // drop too shallow on both sides
	Blocked       int // a required check came back empty
}
