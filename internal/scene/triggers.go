package scene

import (
	"github.com/banshee-data/ledgewalk/internal/catalog"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"github.com/banshee-data/ledgewalk/internal/monitoring"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triggers stands in for the physics engine's trigger callbacks: each ledge
// owns a capsule-shaped volume of the given radius around its segment, and
// the character's capsule crossing its boundary sends Enter or Exit to the
// proximity set.
type Triggers struct {
	ledges    []*ledge.Ledge
	radius    float64
	character catalog.CharacterProperties
	proximity *catalog.ProximitySet
	inside    map[string]bool
}

// NewTriggers creates trigger volumes for ledges feeding proximity.
// A nil character is treated as a point at the feet.
func NewTriggers(ledges []*ledge.Ledge, radius float64, character catalog.CharacterProperties, proximity *catalog.ProximitySet) *Triggers {
	if character == nil {
		character = catalog.Capsule{}
	}
	return &Triggers{
		ledges:    ledges,
		radius:    radius,
		character: character,
		proximity: proximity,
		inside:    make(map[string]bool, len(ledges)),
	}
}

// Update tests the character capsule standing at feet against every volume
// and reports how many were entered and exited. A volume contains the
// character when the capsule surface comes within radius of the ledge.
func (t *Triggers) Update(feet r3.Vec) (entered, exited int) {
	bottom, top := capsuleAxis(feet, t.character)
	reach := t.radius + t.character.Radius()
	for _, l := range t.ledges {
		in := segmentSegmentDistance(bottom, top, l.Start, l.End()) <= reach
		was := t.inside[l.ID]
		switch {
		case in && !was:
			t.inside[l.ID] = true
			t.proximity.Enter(l)
			entered++
		case !in && was:
			delete(t.inside, l.ID)
			t.proximity.Exit(l)
			exited++
		}
	}
	if entered > 0 || exited > 0 {
		monitoring.Tracef("triggers entered=%d exited=%d tracked=%d", entered, exited, t.proximity.Len())
	}
	return entered, exited
}

// capsuleAxis returns the segment between the capsule's sphere centres.
// A capsule shorter than its diameter collapses to its centre point.
func capsuleAxis(feet r3.Vec, c catalog.CharacterProperties) (bottom, top r3.Vec) {
	if c.Height() < 2*c.Radius() {
		mid := feet
		mid.Y += c.Height() / 2
		return mid, mid
	}
	return ledge.CapsuleAt(feet, c.Radius(), c.Height())
}

func segmentDistance(p, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	n2 := r3.Norm2(ab)
	if n2 == 0 {
		return r3.Norm(r3.Sub(p, a))
	}
	t := r3.Dot(r3.Sub(p, a), ab) / n2
	t = max(0, min(1, t))
	return r3.Norm(r3.Sub(p, r3.Add(a, r3.Scale(t, ab))))
}

// segmentSegmentDistance is the distance between the closest points of
// segments p1q1 and p2q2.
func segmentSegmentDistance(p1, q1, p2, q2 r3.Vec) float64 {
	d1 := r3.Sub(q1, p1)
	d2 := r3.Sub(q2, p2)
	a := r3.Norm2(d1)
	e := r3.Norm2(d2)
	switch {
	case a == 0:
		return segmentDistance(p1, p2, q2)
	case e == 0:
		return segmentDistance(p2, p1, q1)
	}

	r := r3.Sub(p1, p2)
	b := r3.Dot(d1, d2)
	c := r3.Dot(d1, r)
	f := r3.Dot(d2, r)
	denom := a*e - b*b

	// Parallel segments get s = 0 and the clamps below settle t.
	var s float64
	if denom != 0 {
		s = max(0, min(1, (b*f-c*e)/denom))
	}
	t := (b*s + f) / e
	switch {
	case t < 0:
		t = 0
		s = max(0, min(1, -c/a))
	case t > 1:
		t = 1
		s = max(0, min(1, (b-c)/a))
	}

	c1 := r3.Add(p1, r3.Scale(s, d1))
	c2 := r3.Add(p2, r3.Scale(t, d2))
	return r3.Norm(r3.Sub(c1, c2))
}
