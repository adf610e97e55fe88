package debugview

import (
	"sync"

	"github.com/banshee-data/ledgewalk/internal/locomotion"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is one recorded frame.
type Sample struct {
	Frame    int
	Position r3.Vec
	State    locomotion.MotionState
	Decision locomotion.DecisionKind
	Upper    int
	Lower    int
}

// Recorder accumulates frame samples during a run.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a frame report.
func (r *Recorder) Record(rep locomotion.FrameReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, Sample{
		Frame:    rep.Frame,
		Position: rep.Position,
		State:    rep.State,
		Decision: rep.Decision.Kind,
		Upper:    rep.Upper,
		Lower:    rep.Lower,
	})
}

// Samples returns a copy of the recorded samples.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Path returns the recorded positions in frame order.
func (r *Recorder) Path() []r3.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]r3.Vec, len(r.samples))
	for i, s := range r.samples {
		out[i] = s.Position
	}
	return out
}

// Count returns how many recorded frames carried the given decision.
func (r *Recorder) Count(kind locomotion.DecisionKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.samples {
		if s.Decision == kind {
			n++
		}
	}
	return n
}

// Transitions counts frames that entered state from a different state.
func (r *Recorder) Transitions(state locomotion.MotionState) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for i, s := range r.samples {
		if s.State == state && (i == 0 || r.samples[i-1].State != state) {
			n++
		}
	}
	return n
}
