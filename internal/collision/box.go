package collision

import (
	"math"

	"github.com/banshee-data/ledgewalk/internal/ledge"
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned solid on one collision layer.
type Box struct {
	Name  string
	Min   r3.Vec
	Max   r3.Vec
	Layer ledge.LayerMask
}

// NewBox returns a box with its corners sorted so Min <= Max on every axis.
func NewBox(name string, a, b r3.Vec, layer ledge.LayerMask) Box {
	return Box{
		Name:  name,
		Min:   r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max:   r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
		Layer: layer,
	}
}

// ClosestPoint clamps p into the box.
func (b Box) ClosestPoint(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: clamp(p.X, b.Min.X, b.Max.X),
		Y: clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

// Distance is the distance from p to the box surface, zero inside.
func (b Box) Distance(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, b.ClosestPoint(p)))
}

// segmentClosest returns the point of segment a-b nearest to the box.
// Distance to a convex set is convex along the segment, so a ternary search
// converges on the minimum.
func (b Box) segmentClosest(a, c r3.Vec) r3.Vec {
	seg := r3.Sub(c, a)
	if r3.Norm2(seg) == 0 {
		return a
	}
	at := func(t float64) r3.Vec { return r3.Add(a, r3.Scale(t, seg)) }

	lo, hi := 0.0, 1.0
	for i := 0; i < segmentSearchIterations; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if b.Distance(at(m1)) < b.Distance(at(m2)) {
			hi = m2
		} else {
			lo = m1
		}
	}
	return at((lo + hi) / 2)
}

// SegmentDistance is the shortest distance between segment a-c and the box.
func (b Box) SegmentDistance(a, c r3.Vec) float64 {
	// Endpoints first: the common upright-capsule case is often decided there.
	best := math.Min(b.Distance(a), b.Distance(c))
	if best == 0 {
		return 0
	}
	return math.Min(best, b.Distance(b.segmentClosest(a, c)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
