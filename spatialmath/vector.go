package spatialmath

import (
	"github.com/golang/geo/r3"
)

// R3VectorAlmostEqual returns whether the distance between a and b is less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return a.Sub(b).Abs().Norm() < epsilon
}
