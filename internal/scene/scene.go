package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/ledgewalk/internal/collision"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultTriggerRadius is the reach of a ledge's trigger volume when the
// scene does not set one.
const DefaultTriggerRadius = 1.0

// Vec3 is a point written as a JSON array [x, y, z].
type Vec3 [3]float64

// R3 converts v to an r3.Vec.
func (v Vec3) R3() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

// FromR3 converts an r3.Vec to a Vec3.
func FromR3(v r3.Vec) Vec3 { return Vec3{v.X, v.Y, v.Z} }

// Box is an axis-aligned collider. A zero Layer means layer 1.
type Box struct {
	Name  string `json:"name,omitempty"`
	Min   Vec3   `json:"min"`
	Max   Vec3   `json:"max"`
	Layer uint32 `json:"layer,omitempty"`
}

// Ledge is an authored ledge, given either by its two endpoints or by a
// placement (position, yaw and slope in degrees, length).
type Ledge struct {
	ID string `json:"id,omitempty"`

	Start *Vec3 `json:"start,omitempty"`
	End   *Vec3 `json:"end,omitempty"`

	Position *Vec3   `json:"position,omitempty"`
	YawDeg   float64 `json:"yaw_deg,omitempty"`
	SlopeDeg float64 `json:"slope_deg,omitempty"`
	Length   float64 `json:"length,omitempty"`
}

// Scene is a complete level description.
type Scene struct {
	SceneID       string  `json:"scene_id,omitempty"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Spawn         *Vec3   `json:"spawn,omitempty"`
	TriggerRadius float64 `json:"trigger_radius,omitempty"`
	Boxes         []Box   `json:"boxes"`
	Ledges        []Ledge `json:"ledges"`
	CreatedAtNs   int64   `json:"created_at_ns,omitempty"`
	UpdatedAtNs   *int64  `json:"updated_at_ns,omitempty"`
}

// Load reads and validates a scene file.
// The file must have a .json extension and be under 4MB.
func Load(path string) (*Scene, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("scene file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scene file: %w", err)
	}
	const maxFileSize = 4 * 1024 * 1024 // 4MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("scene file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scene from JSON.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scene JSON: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}
	return &s, nil
}

// Validate checks that every ledge is fully specified in exactly one form
// and that boxes have extent.
func (s *Scene) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.TriggerRadius < 0 {
		return fmt.Errorf("trigger_radius must be non-negative, got %f", s.TriggerRadius)
	}
	for i, b := range s.Boxes {
		for axis := 0; axis < 3; axis++ {
			if b.Min[axis] == b.Max[axis] {
				return fmt.Errorf("box %d (%s) is flat on axis %d", i, b.Name, axis)
			}
		}
	}

	seen := make(map[string]bool, len(s.Ledges))
	for i, l := range s.Ledges {
		if l.ID != "" {
			if seen[l.ID] {
				return fmt.Errorf("ledge %d: duplicate id %q", i, l.ID)
			}
			seen[l.ID] = true
		}
		endpoints := l.Start != nil || l.End != nil
		placed := l.Position != nil
		switch {
		case endpoints && placed:
			return fmt.Errorf("ledge %d: give either start/end or position, not both", i)
		case endpoints && (l.Start == nil || l.End == nil):
			return fmt.Errorf("ledge %d: start and end must both be set", i)
		case endpoints && *l.Start == *l.End:
			return fmt.Errorf("ledge %d: start and end coincide", i)
		case placed && l.Length <= 0:
			return fmt.Errorf("ledge %d: length must be positive, got %f", i, l.Length)
		case !endpoints && !placed:
			return fmt.Errorf("ledge %d: no geometry", i)
		}
	}
	return nil
}

// SpawnPoint returns the spawn position, or the origin when unset.
func (s *Scene) SpawnPoint() r3.Vec {
	if s.Spawn == nil {
		return r3.Vec{}
	}
	return s.Spawn.R3()
}

// GetTriggerRadius returns the trigger radius or DefaultTriggerRadius.
func (s *Scene) GetTriggerRadius() float64 {
	if s.TriggerRadius == 0 {
		return DefaultTriggerRadius
	}
	return s.TriggerRadius
}

// Build converts an authored ledge into a ledge.Ledge.
func (l Ledge) Build() *ledge.Ledge {
	if l.Position != nil {
		p := ledge.Placement{
			Position: l.Position.R3(),
			Yaw:      l.YawDeg * math.Pi / 180,
			Slope:    l.SlopeDeg * math.Pi / 180,
			Length:   l.Length,
		}
		return ledge.NewWithID(l.ID, p.Position, p.Right(), p.Length)
	}
	start, end := l.Start.R3(), l.End.R3()
	d := r3.Sub(end, start)
	return ledge.NewWithID(l.ID, start, d, r3.Norm(d))
}

// BuildLedges converts every authored ledge. Ledges without an ID get a
// fresh one on every call; store the scene first for stable IDs.
func (s *Scene) BuildLedges() []*ledge.Ledge {
	out := make([]*ledge.Ledge, 0, len(s.Ledges))
	for _, l := range s.Ledges {
		out = append(out, l.Build())
	}
	return out
}

// BuildWorld creates the collision world for the scene's boxes.
func (s *Scene) BuildWorld() *collision.World {
	w := collision.NewWorld()
	for i, b := range s.Boxes {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("box-%d", i)
		}
		layer := b.Layer
		if layer == 0 {
			layer = 1
		}
		w.Add(collision.NewBox(name, b.Min.R3(), b.Max.R3(), ledge.LayerMask(layer)))
	}
	return w
}
