package ledge

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// GrabPosition is the nearest safe point on a ledge from a query position.
// It is a pure function of (ledge, position, margin) and is recomputed
// every frame.
type GrabPosition struct {
	Ledge        *Ledge
	FromPosition r3.Vec
	Margin       float64

	// Value is the grab point, kept at least Margin away from both ends and
	// lifted onto the ledge's slope.
	Value r3.Vec

	// LedgeDistance is the horizontal distance from FromPosition to the
	// nearest point of the flattened segment, before the margin clamp.
	LedgeDistance float64

	// PerpendicularGrabDirection is horizontal, perpendicular to the ledge
	// and points from FromPosition toward the ledge. It is the zero vector
	// for a vertical ledge.
	PerpendicularGrabDirection r3.Vec
	PerpendicularGrabDistance  float64

	// IsInFront is false when the projection of FromPosition fell past
	// either end of the ledge.
	IsInFront bool
}

// Resolve computes the grab position on l from position, keeping margin
// metres away from each end.
func Resolve(l *Ledge, position r3.Vec, margin float64) GrabPosition {
	rel := Flatten(r3.Sub(position, l.Start))
	flatDir := l.flatDirection
	flatLen := l.flatLength

	var raw r3.Vec
	var inFront bool
	switch {
	case flatLen == 0:
		// Degenerate or vertical ledge: everything collapses onto Start.
		inFront = r3.Norm(rel) == 0
	default:
		along := r3.Dot(rel, flatDir)
		switch {
		case along < 0:
			raw = r3.Vec{}
		case along > flatLen:
			raw = r3.Sub(l.flatEnd, l.Start)
		default:
			raw = r3.Scale(along, flatDir)
			inFront = true
		}
	}

	// End clamp above, margin clamp here.
	rawLen := r3.Norm(raw)
	var safe r3.Vec
	switch {
	case flatLen <= margin*2:
		safe = r3.Add(l.Start, r3.Scale(flatLen/2, flatDir))
	case rawLen < margin:
		safe = r3.Add(l.Start, r3.Scale(margin, flatDir))
	case rawLen > flatLen-margin:
		safe = r3.Sub(l.flatEnd, r3.Scale(margin, flatDir))
	default:
		safe = r3.Add(l.Start, raw)
	}

	t := inverseLerp(0, flatLen, r3.Norm(r3.Sub(safe, l.Start)))
	value := safe
	value.Y = lerp(l.Start.Y, l.end.Y, t)

	toLedge := r3.Sub(raw, rel)
	dir := unitOrZero(r3.Cross(l.Direction, Up))
	if r3.Dot(dir, toLedge) < 0 {
		dir = r3.Scale(-1, dir)
	}

	return GrabPosition{
		Ledge:                      l,
		FromPosition:               position,
		Margin:                     margin,
		Value:                      value,
		LedgeDistance:              r3.Norm(toLedge),
		PerpendicularGrabDirection: dir,
		PerpendicularGrabDistance:  math.Abs(r3.Dot(rel, dir)),
		IsInFront:                  inFront,
	}
}

// GrabPosition is shorthand for Resolve(l, position, margin).
func (l *Ledge) GrabPosition(position r3.Vec, margin float64) GrabPosition {
	return Resolve(l, position, margin)
}

// ClampedEnd reports which end the query was clamped to when IsInFront is
// false. ok is false when the grab was in front.
func (g GrabPosition) ClampedEnd() (end r3.Vec, ok bool) {
	if g.IsInFront || g.Ledge == nil {
		return r3.Vec{}, false
	}
	rel := Flatten(r3.Sub(g.FromPosition, g.Ledge.Start))
	if r3.Dot(rel, g.Ledge.flatDirection) <= 0 {
		return g.Ledge.Start, true
	}
	return g.Ledge.end, true
}

// SideDirection returns the horizontal direction pointing to the given side
// of the ledge.
func (g GrabPosition) SideDirection(side Side) r3.Vec {
	if side == Far {
		return g.PerpendicularGrabDirection
	}
	return r3.Scale(-1, g.PerpendicularGrabDirection)
}
