package catalog

import (
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"github.com/banshee-data/ledgewalk/internal/monitoring"
	"gonum.org/v1/gonum/spatial/r3"
)

// Catalog classifies the ledges in a ProximitySet relative to a character.
// It is not safe for concurrent Update calls; the proximity set may be
// modified concurrently.
type Catalog struct {
	oracle    ledge.GeometryOracle
	character CharacterProperties
	proximity *ProximitySet
	params    Params

	// Rebuilt by every Update.
	tracked []*ledge.Ledge
	upper   []UpperLedge
	lower   []LowerLedge
	stats   Stats
}

// New creates a Catalog. A nil proximity set gets a fresh one.
func New(oracle ledge.GeometryOracle, character CharacterProperties, proximity *ProximitySet, params Params) *Catalog {
	if proximity == nil {
		proximity = NewProximitySet()
	}
	return &Catalog{
		oracle:    oracle,
		character: character,
		proximity: proximity,
		params:    params,
	}
}

// Proximity returns the set feeding this catalog.
func (c *Catalog) Proximity() *ProximitySet { return c.proximity }

// Params returns the detection tuning.
func (c *Catalog) Params() Params { return c.params }

// Update recomputes the classification for a character at position.
func (c *Catalog) Update(position r3.Vec) {
	c.tracked = c.proximity.Snapshot(c.tracked)
	c.upper = c.upper[:0]
	c.lower = c.lower[:0]
	c.stats = Stats{Tracked: len(c.tracked)}

	radius := c.character.Radius()
	step := c.character.StepOffset()

	for _, l := range c.tracked {
		grab := l.GrabPosition(position, radius+c.params.WallMargin)
		deltaHeight := grab.Value.Y - position.Y

		switch {
		case deltaHeight > step:
			c.handleUpper(grab)
		case deltaHeight >= -step:
			c.handleLower(grab)
		default:
			c.stats.DiscardedLow++
		}
	}

	c.stats.Upper = len(c.upper)
	c.stats.Lower = len(c.lower)
	if monitoring.TraceEnabled() {
		monitoring.Tracef("catalog pos=(%.3f,%.3f,%.3f) tracked=%d upper=%d lower=%d low=%d step=%d blocked=%d",
			position.X, position.Y, position.Z, c.stats.Tracked, c.stats.Upper, c.stats.Lower,
			c.stats.DiscardedLow, c.stats.DiscardedStep, c.stats.Blocked)
	}
}

func (c *Catalog) climbParams(side ledge.Side) ledge.CheckParams {
	return ledge.CheckParams{
		Side:           side,
		CapsuleRadius:  c.character.Radius(),
		CapsuleHeight:  c.character.Height(),
		LedgeOffset:    c.params.FallDistance,
		MaxSwipeHeight: c.params.ClimbMargin,
		CollisionMask:  c.params.CollisionMask,
		ErrorMargin:    c.params.GroundMargin,
	}
}

func (c *Catalog) fallParams(side ledge.Side, offset float64) ledge.CheckParams {
	return ledge.CheckParams{
		Side:           side,
		CapsuleRadius:  c.character.Radius(),
		CapsuleHeight:  c.character.Height(),
		LedgeOffset:    offset,
		MaxSwipeHeight: c.params.FallHeight,
		CollisionMask:  c.params.CollisionMask,
		ErrorMargin:    c.params.GroundMargin,
	}
}

// handleUpper keeps a ledge above the character when there is room to stand
// on top and the drop on the character's side is more than a step.
func (c *Catalog) handleUpper(grab ledge.GrabPosition) {
	climb, ok := grab.CheckClimb(c.oracle, c.climbParams(ledge.Far))
	if !ok {
		c.stats.Blocked++
		return
	}
	fall, ok := grab.CheckFall(c.oracle, c.fallParams(ledge.Near, c.character.Radius()+c.params.WallMargin))
	if !ok {
		c.stats.Blocked++
		return
	}
	if climb.Value.Y-fall.Value.Y <= c.character.StepOffset() {
		c.stats.DiscardedStep++
		return
	}
	c.upper = append(c.upper, UpperLedge{Grab: grab, Climb: climb, Fall: fall})
}

// handleLower looks for a drop on the far side first, then the near side.
// The side without the drop is the upper side.
func (c *Catalog) handleLower(grab ledge.GrabPosition) {
	var (
		fall     ledge.FallResult
		grounded bool
		found    bool
	)
	for _, side := range [...]ledge.Side{ledge.Far, ledge.Near} {
		f, ok := grab.CheckFall(c.oracle, c.fallParams(side, c.params.WallMargin))
		if !ok || !c.isDrop(grab, f) {
			continue
		}
		fall, grounded, found = f, side == ledge.Far, true
		break
	}
	if !found {
		c.stats.DiscardedStep++
		return
	}

	upSide := ledge.Near
	if !grounded {
		upSide = ledge.Far
	}

	entry := LowerLedge{Grab: grab, IsGrounded: grounded}
	if climb, ok := grab.CheckClimb(c.oracle, c.climbParams(upSide)); ok {
		entry.Up = &climb
	}
	if fall.Grounded {
		entry.Down = &fall
	}
	if entry.Up == nil && entry.Down == nil {
		c.stats.Blocked++
		return
	}
	c.lower = append(c.lower, entry)
}

func (c *Catalog) isDrop(grab ledge.GrabPosition, fall ledge.FallResult) bool {
	return grab.Value.Y+c.params.GroundMargin-fall.Value.Y > c.character.StepOffset()
}

// UpperLedges returns the ledges classified as upper by the last Update. The
// slice is reused by the next Update.
func (c *Catalog) UpperLedges() []UpperLedge { return c.upper }

// LowerLedges returns the ledges classified as lower by the last Update. The
// slice is reused by the next Update.
func (c *Catalog) LowerLedges() []LowerLedge { return c.lower }

// Classified returns every classified ledge from the last Update, upper
// ledges first.
func (c *Catalog) Classified() []ClassifiedLedge {
	out := make([]ClassifiedLedge, 0, len(c.upper)+len(c.lower))
	for _, u := range c.upper {
		out = append(out, u)
	}
	for _, l := range c.lower {
		out = append(out, l)
	}
	return out
}

// Stats returns the counters from the last Update.
func (c *Catalog) Stats() Stats { return c.stats }
