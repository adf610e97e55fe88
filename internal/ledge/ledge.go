package ledge

import (
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Ledge is a grabbable edge: a segment from Start along Direction.
// A Ledge is created when a scene is loaded and is not mutated afterwards.
type Ledge struct {
	ID        string
	Start     r3.Vec
	Direction r3.Vec // unit length
	Length    float64

	// Derived once at construction.
	end           r3.Vec
	flatEnd       r3.Vec
	flatDirection r3.Vec
	flatLength    float64
}

// New builds a ledge from a start point, a direction (normalised here) and a
// length. Negative lengths are clamped to zero.
func New(start, direction r3.Vec, length float64) *Ledge {
	return newWithID(uuid.NewString(), start, direction, length)
}

// NewWithID is New with a caller-supplied identifier, used when ledges are
// loaded from a stored scene.
func NewWithID(id string, start, direction r3.Vec, length float64) *Ledge {
	if id == "" {
		id = uuid.NewString()
	}
	return newWithID(id, start, direction, length)
}

// FromEndpoints builds a ledge spanning start to end.
func FromEndpoints(start, end r3.Vec) *Ledge {
	d := r3.Sub(end, start)
	return New(start, d, r3.Norm(d))
}

// Placement is the transform a ledge is authored with in a scene: the ledge
// runs along the local right axis of the rotation (yaw around up, then slope
// around the local forward axis), for Length metres.
type Placement struct {
	Position r3.Vec
	Yaw      float64 // radians around +Y
	Slope    float64 // radians around the local forward axis
	Length   float64
}

// Right returns the placement's local right axis in world space.
func (p Placement) Right() r3.Vec {
	right := r3.Vec{X: 1}
	if p.Slope != 0 {
		right = r3.NewRotation(p.Slope, r3.Vec{Z: 1}).Rotate(right)
	}
	if p.Yaw != 0 {
		right = r3.NewRotation(p.Yaw, Up).Rotate(right)
	}
	return right
}

// FromPlacement builds a ledge from an authored placement.
func FromPlacement(p Placement) *Ledge {
	return New(p.Position, p.Right(), p.Length)
}

func newWithID(id string, start, direction r3.Vec, length float64) *Ledge {
	l := &Ledge{
		ID:        id,
		Start:     start,
		Direction: unitOrZero(direction),
		Length:    math.Max(0, length),
	}
	l.end = r3.Add(l.Start, r3.Scale(l.Length, l.Direction))
	l.flatEnd = r3.Vec{X: l.end.X, Y: l.Start.Y, Z: l.end.Z}
	flat := r3.Sub(l.flatEnd, l.Start)
	l.flatLength = r3.Norm(flat)
	l.flatDirection = unitOrZero(flat)
	return l
}

// End is Start + Direction*Length.
func (l *Ledge) End() r3.Vec { return l.end }

// FlatEnd is End with its height forced to Start's height.
func (l *Ledge) FlatEnd() r3.Vec { return l.flatEnd }

// FlatDirection is the horizontal direction from Start to FlatEnd.
func (l *Ledge) FlatDirection() r3.Vec { return l.flatDirection }

// FlatLength is the horizontal length of the ledge.
func (l *Ledge) FlatLength() float64 { return l.flatLength }

// Midpoint returns the point halfway along the ledge.
func (l *Ledge) Midpoint() r3.Vec {
	return r3.Add(l.Start, r3.Scale(l.Length/2, l.Direction))
}

// IsConnectedTo reports whether any endpoint of l lies within epsilon of an
// endpoint of other.
func (l *Ledge) IsConnectedTo(other *Ledge, epsilon float64) bool {
	if other == nil || other == l {
		return false
	}
	return l.HasEndpointNear(other.Start, epsilon) || l.HasEndpointNear(other.end, epsilon)
}

// HasEndpointNear reports whether either end of l is within epsilon of p.
func (l *Ledge) HasEndpointNear(p r3.Vec, epsilon float64) bool {
	return r3.Norm(r3.Sub(l.Start, p)) <= epsilon || r3.Norm(r3.Sub(l.end, p)) <= epsilon
}
