package collision

import (
	"sync"

	"github.com/banshee-data/ledgewalk/internal/ledge"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	segmentSearchIterations = 80
	sweepBisectIterations   = 60
	// minSweepStep bounds the coarse march so tiny capsules stay cheap.
	minSweepStep = 1e-3
)

// World is a set of static boxes answering ledge.GeometryOracle queries.
// It is safe for concurrent use.
type World struct {
	mu    sync.RWMutex
	boxes []Box
}

var _ ledge.GeometryOracle = (*World)(nil)

// NewWorld creates a world from the given boxes.
func NewWorld(boxes ...Box) *World {
	w := &World{}
	w.boxes = append(w.boxes, boxes...)
	return w
}

// Add appends a box.
func (w *World) Add(b Box) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.boxes = append(w.boxes, b)
}

// Boxes returns a copy of the world's boxes.
func (w *World) Boxes() []Box {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Box, len(w.boxes))
	copy(out, w.boxes)
	return out
}

// OverlapsCapsule implements ledge.GeometryOracle. Touching is not
// overlapping.
func (w *World) OverlapsCapsule(bottom, top r3.Vec, radius float64, mask ledge.LayerMask) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, b := range w.boxes {
		if b.Layer&mask == 0 {
			continue
		}
		if b.SegmentDistance(bottom, top) < radius {
			return true
		}
	}
	return false
}

// SweepCapsule implements ledge.GeometryOracle. Each box is marched in steps
// of a quarter radius and the first contact is refined by bisection.
func (w *World) SweepCapsule(bottom, top r3.Vec, radius float64, direction r3.Vec, maxDistance float64, mask ledge.LayerMask) (ledge.Hit, bool) {
	dirLen := r3.Norm(direction)
	if dirLen == 0 || maxDistance <= 0 {
		return ledge.Hit{}, false
	}
	dir := r3.Scale(1/dirLen, direction)

	w.mu.RLock()
	defer w.mu.RUnlock()

	var best ledge.Hit
	found := false
	for _, b := range w.boxes {
		if b.Layer&mask == 0 {
			continue
		}
		hit, ok := sweepBox(b, bottom, top, radius, dir, maxDistance)
		if !ok {
			continue
		}
		if !found || hit.Distance < best.Distance {
			best = hit
			found = true
		}
	}
	return best, found
}

func sweepBox(b Box, bottom, top r3.Vec, radius float64, dir r3.Vec, maxDistance float64) (ledge.Hit, bool) {
	touches := func(s float64) bool {
		off := r3.Scale(s, dir)
		return b.SegmentDistance(r3.Add(bottom, off), r3.Add(top, off)) < radius
	}
	if touches(0) {
		return ledge.Hit{}, false
	}

	step := radius / 4
	if step < minSweepStep {
		step = minSweepStep
	}

	free := 0.0
	contact := -1.0
	for s := step; ; s += step {
		if s > maxDistance {
			s = maxDistance
		}
		if touches(s) {
			contact = s
			break
		}
		free = s
		if s == maxDistance {
			break
		}
	}
	if contact < 0 {
		return ledge.Hit{}, false
	}

	for i := 0; i < sweepBisectIterations; i++ {
		mid := (free + contact) / 2
		if touches(mid) {
			contact = mid
		} else {
			free = mid
		}
	}

	// Report the contact at the last free position so the capsule rests
	// against the surface rather than inside it.
	off := r3.Scale(free, dir)
	a, c := r3.Add(bottom, off), r3.Add(top, off)
	axis := b.segmentClosest(a, c)
	point := b.ClosestPoint(axis)
	normal := r3.Sub(axis, point)
	if n := r3.Norm(normal); n > 0 {
		normal = r3.Scale(1/n, normal)
	} else {
		normal = r3.Scale(-1, dir)
	}
	return ledge.Hit{Position: point, Normal: normal, Distance: free}, true
}
