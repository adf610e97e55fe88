package ledge

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Up is the world up axis.
var Up = r3.Vec{Y: 1}

// Flatten returns v with its vertical component zeroed.
func Flatten(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Z: v.Z}
}

// FlatDistance is the horizontal distance between a and b.
func FlatDistance(a, b r3.Vec) float64 {
	return r3.Norm(Flatten(r3.Sub(a, b)))
}

// unitOrZero normalises v, returning the zero vector instead of NaNs when v
// has no length.
func unitOrZero(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// inverseLerp maps v into [0,1] over [a,b]. A degenerate range maps to 0.
func inverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return clamp01((v - a) / (b - a))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*clamp01(t)
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
