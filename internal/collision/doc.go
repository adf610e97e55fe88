// Package collision provides a small in-memory GeometryOracle made of
// axis-aligned boxes. It backs the simulator and the tests; a game engine
// integration would supply its own oracle instead.
package collision
