// Package ledge owns ledge geometry and the grab/climb/fall queries built on it.
//
// Responsibilities: the Ledge segment model, nearest grab position
// resolution with end margins and slope interpolation, and the two capsule
// checks (climb, fall) that turn a grab position into a standable target.
// Key types: Ledge, GrabPosition, ClimbResult, FallResult, GeometryOracle.
//
// Dependency rule: this package never talks to a physics engine directly.
// All spatial queries go through the GeometryOracle handed in by the caller.
// World coordinates are Y-up, in metres.
package ledge
