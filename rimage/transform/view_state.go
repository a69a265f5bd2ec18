package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/camgeom/utils"
)

// minViewDistance keeps the focal point distinct from the position.
const minViewDistance = 1e-20

// ViewState is the viewer-facing description of a camera: where it is, what it looks at and how
// wide it sees. It is derived from CameraParameters by PerspectiveCamera.Update.
type ViewState struct {
	Position   r3.Vector
	FocalPoint r3.Vector
	ViewUp     r3.Vector
	// ViewAngle is the vertical field of view in degrees.
	ViewAngle     float64
	ClippingRange [2]float64
}

// DefaultViewState returns the state of a camera that was never updated: one unit up the Z axis
// looking at the origin.
func DefaultViewState() ViewState {
	return ViewState{
		Position:      r3.Vector{Z: 1},
		ViewUp:        r3.Vector{Y: 1},
		ViewAngle:     30,
		ClippingRange: [2]float64{0.01, 1000.01},
	}
}

// Distance returns the distance from the position to the focal point.
func (vs ViewState) Distance() float64 {
	return vs.Position.Distance(vs.FocalPoint)
}

// DirectionOfProjection returns the unit vector from the position to the focal point.
func (vs ViewState) DirectionOfProjection() r3.Vector {
	return vs.FocalPoint.Sub(vs.Position).Normalize()
}

// ViewMatrix returns the world-to-eye transform.
func (vs ViewState) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(toVec3(vs.Position), toVec3(vs.FocalPoint), toVec3(vs.ViewUp))
}

// ProjectionMatrix returns the perspective projection mapping the clipping range onto [-1, 1].
func (vs ViewState) ProjectionMatrix(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(vs.ViewAngle), aspect, vs.ClippingRange[0], vs.ClippingRange[1])
}

// FrustumPlanes returns the left, right, bottom, top, near and far planes of the view frustum
// as consecutive (a, b, c, d) quadruples. Normals are unit length and point into the frustum, so
// a point p is inside when a*p.x + b*p.y + c*p.z + d >= 0 for every plane.
func (vs ViewState) FrustumPlanes(aspect float64) [24]float64 {
	m := vs.ProjectionMatrix(aspect).Mul4(vs.ViewMatrix())
	row0, row1, row2, row3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)

	var planes [24]float64
	for i, plane := range []mgl64.Vec4{
		row3.Add(row0), row3.Sub(row0),
		row3.Add(row1), row3.Sub(row1),
		row3.Add(row2), row3.Sub(row2),
	} {
		norm := plane.Vec3().Len()
		if norm == 0 {
			norm = 1
		}
		for j := 0; j < 4; j++ {
			planes[4*i+j] = plane[j] / norm
		}
	}
	return planes
}

func toVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// viewAngleDegrees returns the vertical field of view of an image of the given height.
func viewAngleDegrees(height, focalLength float64) float64 {
	return utils.RadToDeg(2 * math.Atan(0.5*height/focalLength))
}
