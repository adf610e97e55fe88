package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for locomotion tuning.
// Every field is optional; the Get* accessors fall back to built-in
// defaults so partial files are safe.
type TuningConfig struct {
	// Character capsule
	CharacterHeight *float64 `json:"character_height,omitempty"`
	CharacterRadius *float64 `json:"character_radius,omitempty"`
	StepOffset      *float64 `json:"step_offset,omitempty"`

	// Ledge detection
	WallMargin    *float64 `json:"wall_margin,omitempty"`
	ClimbMargin   *float64 `json:"climb_margin,omitempty"`
	GroundMargin  *float64 `json:"ground_margin,omitempty"`
	FallDistance  *float64 `json:"fall_distance,omitempty"`
	FallHeight    *float64 `json:"fall_height,omitempty"`
	CollisionMask *uint32  `json:"collision_mask,omitempty"`

	// Reconciler
	GroundedProximity   *float64 `json:"grounded_proximity,omitempty"`
	UngroundedProximity *float64 `json:"ungrounded_proximity,omitempty"`
	ConnectivityEpsilon *float64 `json:"connectivity_epsilon,omitempty"`
	PushSpeed           *float64 `json:"push_speed,omitempty"`

	// Motor
	WalkSpeed        *float64 `json:"walk_speed,omitempty"`
	Gravity          *float64 `json:"gravity,omitempty"`
	GroundProbe      *float64 `json:"ground_probe,omitempty"`
	UnfreezeVelocity *float64 `json:"unfreeze_velocity,omitempty"`
	FrameInterval    *string  `json:"frame_interval,omitempty"` // duration string like "16ms"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrUint32(v uint32) *uint32    { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the built-in defaults. Useful where the defaults file is not available.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		CharacterHeight:     ptrFloat64(e.GetCharacterHeight()),
		CharacterRadius:     ptrFloat64(e.GetCharacterRadius()),
		StepOffset:          ptrFloat64(e.GetStepOffset()),
		WallMargin:          ptrFloat64(e.GetWallMargin()),
		ClimbMargin:         ptrFloat64(e.GetClimbMargin()),
		GroundMargin:        ptrFloat64(e.GetGroundMargin()),
		FallDistance:        ptrFloat64(e.GetFallDistance()),
		FallHeight:          ptrFloat64(e.GetFallHeight()),
		CollisionMask:       ptrUint32(e.GetCollisionMask()),
		GroundedProximity:   ptrFloat64(e.GetGroundedProximity()),
		UngroundedProximity: ptrFloat64(e.GetUngroundedProximity()),
		ConnectivityEpsilon: ptrFloat64(e.GetConnectivityEpsilon()),
		PushSpeed:           ptrFloat64(e.GetPushSpeed()),
		WalkSpeed:           ptrFloat64(e.GetWalkSpeed()),
		Gravity:             ptrFloat64(e.GetGravity()),
		GroundProbe:         ptrFloat64(e.GetGroundProbe()),
		UnfreezeVelocity:    ptrFloat64(e.GetUnfreezeVelocity()),
		FrameInterval:       ptrString(e.GetFrameInterval().String()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // deeper packages
		"../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	positive := []struct {
		name string
		v    *float64
	}{
		{"character_height", c.CharacterHeight},
		{"character_radius", c.CharacterRadius},
	}
	for _, p := range positive {
		if p.v != nil && *p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", p.name, *p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"step_offset", c.StepOffset},
		{"wall_margin", c.WallMargin},
		{"climb_margin", c.ClimbMargin},
		{"ground_margin", c.GroundMargin},
		{"fall_distance", c.FallDistance},
		{"fall_height", c.FallHeight},
		{"grounded_proximity", c.GroundedProximity},
		{"ungrounded_proximity", c.UngroundedProximity},
		{"connectivity_epsilon", c.ConnectivityEpsilon},
		{"push_speed", c.PushSpeed},
		{"walk_speed", c.WalkSpeed},
		{"gravity", c.Gravity},
		{"ground_probe", c.GroundProbe},
	}
	for _, p := range nonNegative {
		if p.v != nil && *p.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", p.name, *p.v)
		}
	}

	if h, r := c.GetCharacterHeight(), c.GetCharacterRadius(); h < 2*r {
		return fmt.Errorf("character_height (%f) must be at least twice character_radius (%f)", h, r)
	}

	if c.FrameInterval != nil && *c.FrameInterval != "" {
		d, err := time.ParseDuration(*c.FrameInterval)
		if err != nil {
			return fmt.Errorf("invalid frame_interval '%s': %w", *c.FrameInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("frame_interval must be positive, got %s", d)
		}
	}

	return nil
}

// GetCharacterHeight returns the character_height value or the default.
func (c *TuningConfig) GetCharacterHeight() float64 {
	if c.CharacterHeight == nil {
		return 1.8
	}
	return *c.CharacterHeight
}

// GetCharacterRadius returns the character_radius value or the default.
func (c *TuningConfig) GetCharacterRadius() float64 {
	if c.CharacterRadius == nil {
		return 0.3
	}
	return *c.CharacterRadius
}

// GetStepOffset returns the step_offset value or the default.
func (c *TuningConfig) GetStepOffset() float64 {
	if c.StepOffset == nil {
		return 0.3
	}
	return *c.StepOffset
}

// GetWallMargin returns the wall_margin value or the default.
func (c *TuningConfig) GetWallMargin() float64 {
	if c.WallMargin == nil {
		return 0.02
	}
	return *c.WallMargin
}

// GetClimbMargin returns the climb_margin value or the default.
func (c *TuningConfig) GetClimbMargin() float64 {
	if c.ClimbMargin == nil {
		return 0.2
	}
	return *c.ClimbMargin
}

// GetGroundMargin returns the ground_margin value or the default.
func (c *TuningConfig) GetGroundMargin() float64 {
	if c.GroundMargin == nil {
		return 0.02
	}
	return *c.GroundMargin
}

// GetFallDistance returns the fall_distance value or the default.
func (c *TuningConfig) GetFallDistance() float64 {
	if c.FallDistance == nil {
		return 0.3
	}
	return *c.FallDistance
}

// GetFallHeight returns the fall_height value or the default.
func (c *TuningConfig) GetFallHeight() float64 {
	if c.FallHeight == nil {
		return 2.0
	}
	return *c.FallHeight
}

// GetCollisionMask returns the collision_mask value or the default (layer 0).
func (c *TuningConfig) GetCollisionMask() uint32 {
	if c.CollisionMask == nil {
		return 1
	}
	return *c.CollisionMask
}

// GetGroundedProximity returns the grounded_proximity value or the default.
func (c *TuningConfig) GetGroundedProximity() float64 {
	if c.GroundedProximity == nil {
		return 0.25
	}
	return *c.GroundedProximity
}

// GetUngroundedProximity returns the ungrounded_proximity value or the default.
func (c *TuningConfig) GetUngroundedProximity() float64 {
	if c.UngroundedProximity == nil {
		return 0.15
	}
	return *c.UngroundedProximity
}

// GetConnectivityEpsilon returns the connectivity_epsilon value or the default.
func (c *TuningConfig) GetConnectivityEpsilon() float64 {
	if c.ConnectivityEpsilon == nil {
		return 0.02
	}
	return *c.ConnectivityEpsilon
}

// GetPushSpeed returns the push_speed value or the default.
func (c *TuningConfig) GetPushSpeed() float64 {
	if c.PushSpeed == nil {
		return 1.5
	}
	return *c.PushSpeed
}

// GetWalkSpeed returns the walk_speed value or the default.
func (c *TuningConfig) GetWalkSpeed() float64 {
	if c.WalkSpeed == nil {
		return 2.0
	}
	return *c.WalkSpeed
}

// GetGravity returns the gravity value or the default.
func (c *TuningConfig) GetGravity() float64 {
	if c.Gravity == nil {
		return 9.81
	}
	return *c.Gravity
}

// GetGroundProbe returns the ground_probe value or the default.
func (c *TuningConfig) GetGroundProbe() float64 {
	if c.GroundProbe == nil {
		return 0.05
	}
	return *c.GroundProbe
}

// GetUnfreezeVelocity returns the vertical velocity re-seeded when a frozen
// motor resumes. Slightly negative keeps the character pressed to the ground.
func (c *TuningConfig) GetUnfreezeVelocity() float64 {
	if c.UnfreezeVelocity == nil {
		return -0.1
	}
	return *c.UnfreezeVelocity
}

// GetFrameInterval parses and returns the FrameInterval as a time.Duration.
func (c *TuningConfig) GetFrameInterval() time.Duration {
	if c.FrameInterval == nil || *c.FrameInterval == "" {
		return 16 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.FrameInterval)
	if err != nil {
		return 16 * time.Millisecond // default on parse error
	}
	return d
}
