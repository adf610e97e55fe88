// Package scene describes the static world a character walks through: the
// collision boxes, the authored ledges and where the character spawns.
//
// Scenes are loaded from JSON files or from a sqlite store and are turned
// into a collision.World and a list of ledges for a simulation run.
package scene
