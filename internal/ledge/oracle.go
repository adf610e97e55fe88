package ledge

import "gonum.org/v1/gonum/spatial/r3"

// LayerMask selects which collision layers a query considers.
type LayerMask uint32

// AllLayers matches every layer.
const AllLayers LayerMask = ^LayerMask(0)

// Hit is the first contact reported by a capsule sweep.
type Hit struct {
	Position r3.Vec
	Normal   r3.Vec
	Distance float64
}

// GeometryOracle answers capsule queries against the world. Capsules are
// described by the centres of their bottom and top spheres.
//
// Implementations must not cache results across frames; the world is
// assumed to move.
type GeometryOracle interface {
	// OverlapsCapsule reports whether the capsule intersects any collider
	// on a layer in mask.
	OverlapsCapsule(bottom, top r3.Vec, radius float64, mask LayerMask) bool

	// SweepCapsule moves the capsule along direction for up to maxDistance
	// and returns the first contact. Colliders already overlapping the
	// capsule at the start of the sweep are ignored.
	SweepCapsule(bottom, top r3.Vec, radius float64, direction r3.Vec, maxDistance float64, mask LayerMask) (Hit, bool)
}

// CapsuleAt returns the sphere centres of an upright capsule whose lowest
// point is at feet.
func CapsuleAt(feet r3.Vec, radius, height float64) (bottom, top r3.Vec) {
	bottom = feet
	bottom.Y += radius
	top = bottom
	top.Y += height - 2*radius
	return bottom, top
}
