package transform

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/camgeom/spatialmath"
)

// CameraParameters is an immutable perspective camera: a pose (center and world-to-camera
// rotation) and the intrinsics of its lens. Instances are shared by pointer between cameras, so
// derived cameras must be built with NewCameraParameters rather than by mutation.
//
// Depth follows the optical axis convention: the depth of a point is the distance from the
// camera center to the projection of the point on the optical axis, not the distance from the
// camera center to the point.
type CameraParameters struct {
	center     r3.Vector
	rotation   *spatialmath.RotationMatrix
	intrinsics CameraIntrinsics
}

// NewCameraParameters returns the camera located at center, oriented by the world-to-camera
// rotation described by orientation.
func NewCameraParameters(
	center r3.Vector,
	orientation spatialmath.Orientation,
	intrinsics CameraIntrinsics,
) (*CameraParameters, error) {
	if orientation == nil {
		return nil, errors.New("camera orientation is required")
	}
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	return &CameraParameters{
		center:     center,
		rotation:   orientation.RotationMatrix(),
		intrinsics: intrinsics,
	}, nil
}

// Center returns the optical center in world coordinates.
func (cp *CameraParameters) Center() r3.Vector {
	return cp.center
}

// Rotation returns the world-to-camera rotation.
func (cp *CameraParameters) Rotation() *spatialmath.RotationMatrix {
	return cp.rotation
}

// Intrinsics returns the lens model.
func (cp *CameraParameters) Intrinsics() CameraIntrinsics {
	return cp.intrinsics
}

// Translation returns T = -R C, the world origin in camera coordinates.
func (cp *CameraParameters) Translation() r3.Vector {
	return cp.rotation.Mul(cp.center).Mul(-1)
}

// ToCamera transforms a world point into camera coordinates.
func (cp *CameraParameters) ToCamera(pt r3.Vector) r3.Vector {
	return cp.rotation.Mul(pt.Sub(cp.center))
}

// Depth returns the signed depth of pt along the optical axis. Points behind the camera have a
// negative depth.
func (cp *CameraParameters) Depth(pt r3.Vector) float64 {
	return cp.rotation.Row(2).Dot(pt.Sub(cp.center))
}

// Project maps a world point to image pixels. The result is meaningless for points at zero depth.
func (cp *CameraParameters) Project(pt r3.Vector) r2.Point {
	c := cp.ToCamera(pt)
	return cp.intrinsics.Map(r2.Point{X: c.X / c.Z, Y: c.Y / c.Z})
}

// Matrix returns the 3x4 projection matrix K [R | T]. It ignores lens distortion.
func (cp *CameraParameters) Matrix() *mat.Dense {
	rt := mat.NewDense(3, 4, nil)
	t := cp.Translation()
	for i := 0; i < 3; i++ {
		row := cp.rotation.Row(i)
		rt.SetRow(i, []float64{row.X, row.Y, row.Z, [3]float64{t.X, t.Y, t.Z}[i]})
	}
	var p mat.Dense
	p.Mul(cp.intrinsics.Matrix(), rt)
	return &p
}
