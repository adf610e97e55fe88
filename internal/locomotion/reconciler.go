package locomotion

import (
	"github.com/banshee-data/ledgewalk/internal/catalog"
	"github.com/banshee-data/ledgewalk/internal/config"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"github.com/banshee-data/ledgewalk/internal/monitoring"
	"gonum.org/v1/gonum/spatial/r3"
)

// DecisionKind is what the reconciler wants done with the nearest lower ledge.
type DecisionKind string

const (
	DecisionNone         DecisionKind = "none"          // No reachable lower ledge
	DecisionHold         DecisionKind = "hold"          // Idle at the edge
	DecisionLetFall      DecisionKind = "let_fall"      // Moving toward the drop
	DecisionSnapUp       DecisionKind = "snap_up"       // Moving away from the drop
	DecisionForceDescent DecisionKind = "force_descent" // Only the drop is available
	DecisionForceClimb   DecisionKind = "force_climb"   // Only the top is available
)

// ReconcilerConfig holds the lower ledge selection thresholds.
type ReconcilerConfig struct {
	GroundedProximity   float64 // Max ledge distance when standing on the upper side (meters)
	UngroundedProximity float64 // Max ledge distance when overhanging the drop (meters)
	ConnectivityEpsilon float64 // Endpoint distance at which two ledges count as one edge (meters)
	PushSpeed           float64 // Horizontal speed of a forced descent (m/s)
}

// DefaultReconcilerConfig returns the built-in thresholds.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfigFromTuning(config.EmptyTuningConfig())
}

// ReconcilerConfigFromTuning reads the thresholds from a TuningConfig.
func ReconcilerConfigFromTuning(cfg *config.TuningConfig) ReconcilerConfig {
	return ReconcilerConfig{
		GroundedProximity:   cfg.GetGroundedProximity(),
		UngroundedProximity: cfg.GetUngroundedProximity(),
		ConnectivityEpsilon: cfg.GetConnectivityEpsilon(),
		PushSpeed:           cfg.GetPushSpeed(),
	}
}

// Decision is the outcome of one Decide call. Ledge is nil for
// DecisionNone when no candidate survived.
type Decision struct {
	Kind   DecisionKind
	Ledge  *catalog.LowerLedge
	Target r3.Vec // reposition target for SnapUp and ForceClimb
	// Velocity is the horizontal push for ForceDescent.
	Velocity r3.Vec
}

// Reconciler picks the lower ledge that governs the character this frame.
type Reconciler struct {
	Config ReconcilerConfig

	candidates []catalog.LowerLedge
}

// NewReconciler creates a Reconciler.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	return &Reconciler{Config: cfg}
}

// Candidates filters lower by proximity and drops out-of-bounds grabs that
// no neighbouring ledge continues. The returned slice is reused by the next
// call.
func (r *Reconciler) Candidates(lower []catalog.LowerLedge) []catalog.LowerLedge {
	r.candidates = r.candidates[:0]
	for i := range lower {
		l := &lower[i]
		if l.Grab.LedgeDistance > r.proximity(l.IsGrounded) {
			continue
		}
		if !l.Grab.IsInFront && !r.stitched(lower, i) {
			continue
		}
		r.candidates = append(r.candidates, *l)
	}
	return r.candidates
}

func (r *Reconciler) proximity(grounded bool) float64 {
	if grounded {
		return r.Config.GroundedProximity
	}
	return r.Config.UngroundedProximity
}

// stitched reports whether another ledge with the same groundedness starts
// or ends where lower[i] was clamped, making the two one continuous edge.
func (r *Reconciler) stitched(lower []catalog.LowerLedge, i int) bool {
	end, ok := lower[i].Grab.ClampedEnd()
	if !ok {
		return true
	}
	for j := range lower {
		n := &lower[j]
		if j == i || n.IsGrounded != lower[i].IsGrounded || n.Grab.Ledge == nil {
			continue
		}
		if n.Grab.Ledge.HasEndpointNear(end, r.Config.ConnectivityEpsilon) {
			return true
		}
	}
	return false
}

// Decide selects the nearest candidate and maps its available targets and
// the movement direction to a Decision.
func (r *Reconciler) Decide(lower []catalog.LowerLedge, move r3.Vec) Decision {
	candidates := r.Candidates(lower)
	if len(candidates) == 0 {
		return Decision{Kind: DecisionNone}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Grab.LedgeDistance < best.Grab.LedgeDistance {
			best = c
		}
	}

	d := Decision{Ledge: &best}
	fallDir := best.FallDirection()
	switch {
	case best.Up != nil && best.Down != nil:
		toward := r3.Dot(ledge.Flatten(move), fallDir)
		switch {
		case toward > 0:
			d.Kind = DecisionLetFall
		case toward < 0:
			d.Kind = DecisionSnapUp
			d.Target = best.Up.Value
		default:
			d.Kind = DecisionHold
		}
	case best.Down != nil:
		d.Kind = DecisionForceDescent
		d.Velocity = r3.Scale(r.Config.PushSpeed, fallDir)
	case best.Up != nil:
		d.Kind = DecisionForceClimb
		d.Target = best.Up.Value
	default:
		d.Kind = DecisionNone
	}

	if d.Kind != DecisionNone && d.Kind != DecisionLetFall && d.Kind != DecisionHold {
		monitoring.Diagf("reconciler %s ledge=%s dist=%.3f grounded=%v target=(%.3f,%.3f,%.3f)",
			d.Kind, best.Grab.Ledge.ID, best.Grab.LedgeDistance, best.IsGrounded, d.Target.X, d.Target.Y, d.Target.Z)
	}
	return d
}
