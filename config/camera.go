package config

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/camgeom/rimage/transform"
	"go.viam.com/camgeom/spatialmath"
	"go.viam.com/camgeom/utils"
)

// CameraConfig names a camera and holds its free-form attributes.
type CameraConfig struct {
	Name       string             `json:"name"`
	Attributes utils.AttributeMap `json:"attributes"`
}

// CameraAttributes are the attributes of a camera. Exactly one of Quaternion, RotationMatrix and
// LookAt gives the orientation.
type CameraAttributes struct {
	FocalLength    float64   `json:"focal_length"`
	PrincipalPoint []float64 `json:"principal_point"`
	AspectRatio    float64   `json:"aspect_ratio,omitempty"`
	Skew           float64   `json:"skew,omitempty"`
	Center         []float64 `json:"center"`

	// Quaternion is (w, x, y, z) of the world to camera rotation.
	Quaternion []float64 `json:"quaternion,omitempty"`
	// RotationMatrix is the row major world to camera rotation.
	RotationMatrix []float64 `json:"rotation_matrix,omitempty"`
	// LookAt is a world point on the optical axis; Up defaults to +Z.
	LookAt []float64 `json:"look_at,omitempty"`
	Up     []float64 `json:"up,omitempty"`

	ImageWidth    int               `json:"image_width,omitempty"`
	ImageHeight   int               `json:"image_height,omitempty"`
	ClippingRange []float64         `json:"clipping_range,omitempty"`
	Distortion    *DistortionConfig `json:"distortion,omitempty"`
}

// DistortionConfig selects a lens distortion model.
type DistortionConfig struct {
	Model      string    `json:"model"`
	Parameters []float64 `json:"parameters"`
}

// Validate checks the camera config, prefixing errors with path.
func (cc CameraConfig) Validate(path string) error {
	if cc.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	attrs, err := utils.DecodeAttributes[CameraAttributes](cc.Attributes)
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return attrs.Validate(path)
}

// Validate checks that the attributes describe a usable camera.
func (ca CameraAttributes) Validate(path string) error {
	var errs error
	if ca.FocalLength <= 0 {
		errs = multierr.Combine(errs, utils.NewConfigValidationFieldRequiredError(path, "focal_length"))
	}
	errs = multierr.Combine(errs, checkLength(path, "principal_point", ca.PrincipalPoint, 2))
	errs = multierr.Combine(errs, checkLength(path, "center", ca.Center, 3))
	if ca.AspectRatio < 0 {
		errs = multierr.Combine(errs, errors.Errorf("%s: aspect_ratio must be positive", path))
	}

	orientations := 0
	if ca.Quaternion != nil {
		orientations++
		errs = multierr.Combine(errs, checkLength(path, "quaternion", ca.Quaternion, 4))
	}
	if ca.RotationMatrix != nil {
		orientations++
		errs = multierr.Combine(errs, checkLength(path, "rotation_matrix", ca.RotationMatrix, 9))
	}
	if ca.LookAt != nil {
		orientations++
		errs = multierr.Combine(errs, checkLength(path, "look_at", ca.LookAt, 3))
		if ca.Up != nil {
			errs = multierr.Combine(errs, checkLength(path, "up", ca.Up, 3))
		}
	}
	if orientations != 1 {
		errs = multierr.Combine(errs,
			errors.Errorf("%s: exactly one of quaternion, rotation_matrix and look_at is required, got %d", path, orientations))
	}

	if (ca.ImageWidth == 0) != (ca.ImageHeight == 0) || ca.ImageWidth < 0 || ca.ImageHeight < 0 {
		errs = multierr.Combine(errs,
			errors.Errorf("%s: image_width and image_height must both be positive or both be unset", path))
	}
	if ca.ClippingRange != nil {
		errs = multierr.Combine(errs, validateClippingRange(path, ca.ClippingRange))
	}
	if ca.Distortion != nil {
		if _, err := transform.NewDistorter(transform.DistortionType(ca.Distortion.Model), ca.Distortion.Parameters); err != nil {
			errs = multierr.Combine(errs, utils.NewConfigValidationError(path+".distortion", err))
		}
	}
	return errs
}

// Intrinsics returns the camera intrinsics described by the attributes.
func (ca CameraAttributes) Intrinsics() (transform.CameraIntrinsics, error) {
	if len(ca.PrincipalPoint) != 2 {
		return transform.CameraIntrinsics{}, errors.New("principal_point must have 2 values")
	}
	intrinsics := transform.NewCameraIntrinsics(ca.FocalLength, r2.Point{X: ca.PrincipalPoint[0], Y: ca.PrincipalPoint[1]})
	if ca.AspectRatio != 0 {
		intrinsics.AspectRatio = ca.AspectRatio
	}
	intrinsics.Skew = ca.Skew
	if ca.Distortion != nil {
		d, err := transform.NewDistorter(transform.DistortionType(ca.Distortion.Model), ca.Distortion.Parameters)
		if err != nil {
			return transform.CameraIntrinsics{}, err
		}
		intrinsics.Distortion = d
	}
	return intrinsics, intrinsics.CheckValid()
}

// Orientation returns the world to camera rotation described by the attributes.
func (ca CameraAttributes) Orientation() (spatialmath.Orientation, error) {
	switch {
	case len(ca.Quaternion) == 4:
		q := ca.Quaternion
		return spatialmath.NewQuaternion(q[0], q[1], q[2], q[3]), nil
	case len(ca.RotationMatrix) == 9:
		rm, err := spatialmath.NewRotationMatrix(ca.RotationMatrix)
		if err != nil {
			return nil, err
		}
		return rm, nil
	case len(ca.LookAt) == 3 && len(ca.Center) == 3:
		up := r3.Vector{Z: 1}
		if len(ca.Up) == 3 {
			up = toVector(ca.Up)
		}
		rm, err := spatialmath.NewLookAtRotation(toVector(ca.LookAt).Sub(toVector(ca.Center)), up)
		if err != nil {
			return nil, err
		}
		return rm, nil
	}
	return nil, errors.New("no orientation given")
}

// Build returns the updated perspective camera described by the config. Its clipping range is
// the camera's own, else the viewer's, else the default.
func (cc CameraConfig) Build(viewer ViewerConfig) (*transform.PerspectiveCamera, error) {
	if err := cc.Validate(cc.Name); err != nil {
		return nil, err
	}
	attrs, err := utils.DecodeAttributes[CameraAttributes](cc.Attributes)
	if err != nil {
		return nil, err
	}
	intrinsics, err := attrs.Intrinsics()
	if err != nil {
		return nil, errors.Wrapf(err, "camera %q", cc.Name)
	}
	orientation, err := attrs.Orientation()
	if err != nil {
		return nil, errors.Wrapf(err, "camera %q", cc.Name)
	}
	params, err := transform.NewCameraParameters(toVector(attrs.Center), orientation, intrinsics)
	if err != nil {
		return nil, errors.Wrapf(err, "camera %q", cc.Name)
	}

	pc := transform.NewPerspectiveCamera(params)
	if attrs.ImageWidth > 0 {
		pc.SetImageDimensions(attrs.ImageWidth, attrs.ImageHeight)
	}
	clip := attrs.ClippingRange
	if clip == nil {
		clip = viewer.ClippingRange
	}
	if clip != nil {
		if err := pc.SetClippingRange(clip[0], clip[1]); err != nil {
			return nil, errors.Wrapf(err, "camera %q", cc.Name)
		}
	}
	pc.Update()
	return pc, nil
}

func checkLength(path, field string, v []float64, n int) error {
	if v == nil {
		return utils.NewConfigValidationFieldRequiredError(path, field)
	}
	if len(v) != n {
		return errors.Errorf("%s: %s must have %d values, got %d", path, field, n, len(v))
	}
	return nil
}

func cameraPath(i int) string {
	return fmt.Sprintf("cameras.%d", i)
}
