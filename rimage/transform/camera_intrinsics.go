package transform

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intriniscs are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// CameraIntrinsics maps normalized camera-space coordinates to image pixels. Values are treated
// as immutable; the With* and Scaled helpers return modified copies.
type CameraIntrinsics struct {
	FocalLength    float64  `json:"focal_length"`
	PrincipalPoint r2.Point `json:"principal_point"`
	// AspectRatio is the pixel aspect ratio, the ratio of the focal lengths along x and y.
	AspectRatio float64   `json:"aspect_ratio"`
	Skew        float64   `json:"skew"`
	Distortion  Distorter `json:"-"`
}

// NewCameraIntrinsics returns undistorted intrinsics with unit aspect ratio and no skew.
func NewCameraIntrinsics(focalLength float64, principalPoint r2.Point) CameraIntrinsics {
	return CameraIntrinsics{
		FocalLength:    focalLength,
		PrincipalPoint: principalPoint,
		AspectRatio:    1,
	}
}

// NewCameraIntrinsicsFromMatrix builds undistorted intrinsics from an upper triangular camera matrix
// [[f, s, ppx], [0, f/a, ppy], [0, 0, 1]].
func NewCameraIntrinsicsFromMatrix(k mat.Matrix) (CameraIntrinsics, error) {
	if r, c := k.Dims(); r != 3 || c != 3 {
		return CameraIntrinsics{}, errors.Errorf("camera matrix must be 3x3, got %dx%d", r, c)
	}
	if k.At(1, 1) == 0 {
		return CameraIntrinsics{}, NewNoIntrinsicsError("camera matrix has a zero y focal length")
	}
	return CameraIntrinsics{
		FocalLength:    k.At(0, 0),
		PrincipalPoint: r2.Point{X: k.At(0, 2), Y: k.At(1, 2)},
		AspectRatio:    k.At(0, 0) / k.At(1, 1),
		Skew:           k.At(0, 1),
	}, nil
}

// CheckValid checks if the fields for CameraIntrinsics have valid inputs.
func (ci CameraIntrinsics) CheckValid() error {
	if ci.FocalLength <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length = %#v", ci.FocalLength))
	}
	if ci.AspectRatio <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid aspect ratio = %#v", ci.AspectRatio))
	}
	if ci.Distortion == nil {
		return nil
	}
	if _, ok := ci.Distortion.(InvertibleDistorter); !ok {
		return InvalidDistortionError(fmt.Sprintf("%q distortion cannot be inverted", ci.Distortion.ModelType()))
	}
	return ci.Distortion.CheckValid()
}

// Matrix returns the intrinsic camera matrix [[f, s, ppx], [0, f/a, ppy], [0, 0, 1]].
func (ci CameraIntrinsics) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		ci.FocalLength, ci.Skew, ci.PrincipalPoint.X,
		0, ci.FocalLength / ci.AspectRatio, ci.PrincipalPoint.Y,
		0, 0, 1,
	})
}

// Map takes a normalized camera-space point (x/z, y/z), applies lens distortion, then maps it
// to image pixels.
func (ci CameraIntrinsics) Map(norm r2.Point) r2.Point {
	x, y := norm.X, norm.Y
	if ci.Distortion != nil {
		x, y = ci.Distortion.Transform(x, y)
	}
	return r2.Point{
		X: ci.FocalLength*x + ci.Skew*y + ci.PrincipalPoint.X,
		Y: ci.FocalLength/ci.AspectRatio*y + ci.PrincipalPoint.Y,
	}
}

// Unmap is the inverse of Map: it takes an image pixel and returns the normalized camera-space
// point that projects onto it.
func (ci CameraIntrinsics) Unmap(pixel r2.Point) r2.Point {
	y := (pixel.Y - ci.PrincipalPoint.Y) * ci.AspectRatio / ci.FocalLength
	x := (pixel.X - ci.PrincipalPoint.X - ci.Skew*y) / ci.FocalLength
	if inv, ok := ci.Distortion.(InvertibleDistorter); ok {
		x, y = inv.Inverse().Transform(x, y)
	}
	return r2.Point{X: x, Y: y}
}

// WithPrincipalPoint returns a copy of the intrinsics with a different principal point.
func (ci CameraIntrinsics) WithPrincipalPoint(pp r2.Point) CameraIntrinsics {
	ci.PrincipalPoint = pp
	return ci
}

// Scaled returns undistorted intrinsics whose camera matrix has its first two rows multiplied by
// factor, which is how intrinsics follow an image resampled by that factor.
func (ci CameraIntrinsics) Scaled(factor float64) (CameraIntrinsics, error) {
	k := ci.Matrix()
	for _, idx := range [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 2}} {
		k.Set(idx[0], idx[1], k.At(idx[0], idx[1])*factor)
	}
	return NewCameraIntrinsicsFromMatrix(k)
}

// String implements fmt.Stringer.
func (ci CameraIntrinsics) String() string {
	return fmt.Sprintf("f=%g pp=(%g, %g) aspect=%g skew=%g", ci.FocalLength,
		ci.PrincipalPoint.X, ci.PrincipalPoint.Y, ci.AspectRatio, ci.Skew)
}
