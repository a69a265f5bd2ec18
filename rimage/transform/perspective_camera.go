package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// UnsetDimension marks an image dimension that Update should infer from the principal point.
const UnsetDimension = -1

// DefaultClippingRange is the near and far depth applied by Update unless configured otherwise.
var DefaultClippingRange = [2]float64{0.01, 15.0}

var (
	// ErrNoCameraParameters is returned by operations that need camera parameters before any were set.
	ErrNoCameraParameters = errors.New("camera parameters are not set")
	// ErrSingularTransform is returned by GetTransform when the plane makes the image-to-plane
	// mapping degenerate, e.g. a plane containing the optical center.
	ErrSingularTransform = errors.New("image to plane transform is singular")
)

// PerspectiveCamera adapts CameraParameters to an interactive viewer. It holds a shared,
// immutable parameter object together with the image dimensions and the derived view state.
// Update must be called after the parameters or image dimensions change and before the view
// state, frustum planes or aspect ratio are relied upon.
type PerspectiveCamera struct {
	params        *CameraParameters
	width, height int
	aspectRatio   float64
	clippingRange [2]float64
	view          ViewState
}

// NewPerspectiveCamera returns a camera with unset image dimensions and the default view state.
// params may be nil and assigned later with SetCamera.
func NewPerspectiveCamera(params *CameraParameters) *PerspectiveCamera {
	return &PerspectiveCamera{
		params:        params,
		width:         UnsetDimension,
		height:        UnsetDimension,
		aspectRatio:   1,
		clippingRange: DefaultClippingRange,
		view:          DefaultViewState(),
	}
}

// Camera returns the shared camera parameters.
func (pc *PerspectiveCamera) Camera() *CameraParameters {
	return pc.params
}

// SetCamera replaces the camera parameters. Other cameras sharing the previous parameters are
// not affected.
func (pc *PerspectiveCamera) SetCamera(params *CameraParameters) {
	pc.params = params
}

// ImageDimensions returns the image width and height, UnsetDimension when unknown.
func (pc *PerspectiveCamera) ImageDimensions() (int, int) {
	return pc.width, pc.height
}

// SetImageDimensions sets the image width and height.
func (pc *PerspectiveCamera) SetImageDimensions(width, height int) {
	pc.width, pc.height = width, height
}

// AspectRatio returns the image aspect ratio computed by the last Update.
func (pc *PerspectiveCamera) AspectRatio() float64 {
	return pc.aspectRatio
}

// ClippingRange returns the near and far depth Update applies to the view state.
func (pc *PerspectiveCamera) ClippingRange() (float64, float64) {
	return pc.clippingRange[0], pc.clippingRange[1]
}

// SetClippingRange sets the near and far depth Update applies to the view state.
func (pc *PerspectiveCamera) SetClippingRange(near, far float64) error {
	if near <= 0 || far <= near {
		return errors.Errorf("invalid clipping range [%v, %v], need 0 < near < far", near, far)
	}
	pc.clippingRange = [2]float64{near, far}
	return nil
}

// ViewState returns the derived view state.
func (pc *PerspectiveCamera) ViewState() ViewState {
	return pc.view
}

// Position returns the camera position of the view state.
func (pc *PerspectiveCamera) Position() r3.Vector {
	return pc.view.Position
}

// Distance returns the distance from the camera position to its focal point.
func (pc *PerspectiveCamera) Distance() float64 {
	return pc.view.Distance()
}

// ProjectPoint projects a world point to image pixels. It reports false, leaving the pixel
// unspecified, when the point lies behind the camera.
func (pc *PerspectiveCamera) ProjectPoint(pt r3.Vector) (r2.Point, bool) {
	if pc.params == nil || pc.params.Depth(pt) < 0 {
		return r2.Point{}, false
	}
	return pc.params.Project(pt), true
}

// UnprojectPoint returns the world point seen at pixel whose depth along the optical axis is depth.
func (pc *PerspectiveCamera) UnprojectPoint(pixel r2.Point, depth float64) r3.Vector {
	if pc.params == nil {
		return r3.Vector{}
	}
	t := pc.params.Translation()
	norm := pc.params.Intrinsics().Unmap(pixel)
	homogeneous := r3.Vector{X: norm.X * depth, Y: norm.Y * depth, Z: depth}
	return pc.params.Rotation().TransposeMul(homogeneous.Sub(t))
}

// UnprojectPointAtOrigin back-projects pixel at the depth of the world origin, for callers with
// no better depth estimate.
func (pc *PerspectiveCamera) UnprojectPointAtOrigin(pixel r2.Point) r3.Vector {
	return pc.UnprojectPoint(pixel, pc.Depth(r3.Vector{}))
}

// Depth returns the depth of pt along the optical axis.
func (pc *PerspectiveCamera) Depth(pt r3.Vector) float64 {
	if pc.params == nil {
		return 0
	}
	return pc.params.Depth(pt)
}

// ScaleK multiplies the first two rows of the intrinsic matrix by factor, replacing the held
// parameters with new ones. Lens distortion is not carried over.
func (pc *PerspectiveCamera) ScaleK(factor float64) error {
	if pc.params == nil {
		return ErrNoCameraParameters
	}
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return errors.Errorf("invalid intrinsics scale factor %v", factor)
	}
	intrinsics, err := pc.params.Intrinsics().Scaled(factor)
	if err != nil {
		return err
	}
	params, err := NewCameraParameters(pc.params.Center(), pc.params.Rotation(), intrinsics)
	if err != nil {
		return errors.Wrap(err, "failed to scale camera intrinsics")
	}
	pc.SetCamera(params)
	return nil
}

// ScaledK returns a copy of the camera with ScaleK applied. The receiver is not modified.
func (pc *PerspectiveCamera) ScaledK(factor float64) (*PerspectiveCamera, error) {
	scaled := NewPerspectiveCamera(nil)
	scaled.DeepCopy(pc)
	if err := scaled.ScaleK(factor); err != nil {
		return nil, err
	}
	return scaled, nil
}

// CropCamera returns a copy of the camera for the ni x nj sub-image whose top left corner is
// pixel (i0, j0) of the original image. The extrinsics are unchanged.
func (pc *PerspectiveCamera) CropCamera(i0, ni, j0, nj int) (*PerspectiveCamera, error) {
	if pc.params == nil {
		return nil, ErrNoCameraParameters
	}
	intrinsics := pc.params.Intrinsics()
	pp := intrinsics.PrincipalPoint.Sub(r2.Point{X: float64(i0), Y: float64(j0)})
	params, err := NewCameraParameters(pc.params.Center(), pc.params.Rotation(), intrinsics.WithPrincipalPoint(pp))
	if err != nil {
		return nil, err
	}

	cropped := NewPerspectiveCamera(nil)
	cropped.DeepCopy(pc)
	cropped.SetCamera(params)
	cropped.SetImageDimensions(ni, nj)
	return cropped, nil
}

// Update recomputes the view state from the camera parameters. Unset image dimensions are
// inferred as twice the principal point. The distance between position and focal point is
// preserved while the focal point is moved onto the new optical axis. It reports false only when
// no camera parameters are set.
func (pc *PerspectiveCamera) Update() bool {
	if pc.params == nil {
		return false
	}
	ci := pc.params.Intrinsics()

	if pc.width == UnsetDimension || pc.height == UnsetDimension {
		pc.width = int(ci.PrincipalPoint.X * 2)
		pc.height = int(ci.PrincipalPoint.Y * 2)
	}

	pc.aspectRatio = ci.AspectRatio * float64(pc.width) / float64(pc.height)
	pc.view.ViewAngle = viewAngleDegrees(float64(pc.height), ci.FocalLength)

	rotation := pc.params.Rotation()
	up := rotation.Row(1).Mul(-1)
	view := rotation.Row(2)
	center := pc.params.Center()

	pc.view.Position = center
	distance := pc.view.Distance()
	if distance < minViewDistance {
		distance = minViewDistance
	}
	pc.view.ViewUp = up
	pc.view.FocalPoint = center.Add(view.Mul(distance / view.Norm()))
	pc.view.ClippingRange = pc.clippingRange
	return true
}

// GetFrustumPlanes returns the six frustum planes of the view state, see ViewState.FrustumPlanes.
// The result reflects the last Update.
func (pc *PerspectiveCamera) GetFrustumPlanes() [24]float64 {
	return pc.view.FrustumPlanes(pc.aspectRatio)
}

// GetTransform returns the 4x4 homogeneous transform mapping image points (u, v, 0, 1) onto
// world points lying on plane, given as (a, b, c, d) with a*x + b*y + c*z + d = 0. The result is
// the inverse of the matrix whose rows are the first two rows of K [R | T], the plane, and the
// last row of K [R | T]. A singular matrix yields the identity and ErrSingularTransform.
func (pc *PerspectiveCamera) GetTransform(plane [4]float64) (*mat.Dense, error) {
	if pc.params == nil {
		return identity4(), ErrNoCameraParameters
	}
	p := pc.params.Matrix()

	m := mat.NewDense(4, 4, nil)
	m.SetRow(0, mat.Row(nil, 0, p))
	m.SetRow(1, mat.Row(nil, 1, p))
	m.SetRow(2, plane[:])
	m.SetRow(3, mat.Row(nil, 2, p))

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return identity4(), errors.Wrap(ErrSingularTransform, err.Error())
	}
	return &inv, nil
}

// DeepCopy copies the image dimensions, aspect ratio, view state and clipping range of source.
// The camera parameters are shared with source, not cloned.
func (pc *PerspectiveCamera) DeepCopy(source *PerspectiveCamera) {
	pc.width, pc.height = source.width, source.height
	pc.aspectRatio = source.aspectRatio
	pc.clippingRange = source.clippingRange
	pc.view = source.view
	pc.params = source.params
}

func identity4() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}
