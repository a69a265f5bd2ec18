package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// planeTolerance bounds the denominator of a line/plane intersection relative to its numerator;
// below it the line is treated as parallel to the plane.
const planeTolerance = 1e-6

// Plane is an infinite plane through Origin with the given Normal.
type Plane struct {
	Origin r3.Vector
	Normal r3.Vector
}

// NewGroundPlane returns the plane z = 0 with a +Z normal.
func NewGroundPlane() Plane {
	return Plane{Normal: r3.Vector{Z: 1}}
}

// Evaluate returns n . (p - origin). Its sign tells on which side of the plane p lies.
func (p Plane) Evaluate(pt r3.Vector) float64 {
	return p.Normal.Dot(pt.Sub(p.Origin))
}

// Coefficients returns the plane as (a, b, c, d) with a*x + b*y + c*z + d = 0.
func (p Plane) Coefficients() [4]float64 {
	return [4]float64{p.Normal.X, p.Normal.Y, p.Normal.Z, -p.Normal.Dot(p.Origin)}
}

// IntersectWithLine intersects the segment p1-p2 with the plane. t is the parametric coordinate
// of the intersection along the segment and x the intersection point. ok is true only when the
// intersection lies within the segment; a line parallel to the plane reports t = +Inf.
func (p Plane) IntersectWithLine(p1, p2 r3.Vector) (t float64, x r3.Vector, ok bool) {
	p12 := p2.Sub(p1)
	num := p.Normal.Dot(p.Origin) - p.Normal.Dot(p1)
	den := p.Normal.Dot(p12)

	if math.Abs(den) <= math.Abs(num*planeTolerance) || den == 0 {
		return math.Inf(1), x, false
	}

	t = num / den
	x = p1.Add(p12.Mul(t))
	return t, x, t >= 0 && t <= 1
}
