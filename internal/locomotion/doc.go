// Package locomotion turns the per-frame ledge catalog into movement.
//
// A Controller runs one frame at a time: it refreshes the catalog at the
// character's position, asks the Reconciler what to do about nearby lower
// ledges, applies that decision to the Motor and then integrates the Motor.
package locomotion
