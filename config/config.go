// Package config defines the structures to configure the viewer and its cameras.
package config

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/camgeom/logging"
	"go.viam.com/camgeom/ruler"
	"go.viam.com/camgeom/spatialmath"
)

// Config describes the cameras a viewer can switch between and how it places ruler points.
type Config struct {
	ConfigFilePath string `json:"-"`

	LogLevel string                        `json:"log_level,omitempty"`
	Log      []logging.LoggerPatternConfig `json:"log,omitempty"`
	Viewer   ViewerConfig                  `json:"viewer,omitempty"`
	Cameras  []CameraConfig                `json:"cameras"`
}

// Validate returns every problem found in the config.
func (c *Config) Validate() error {
	var errs error
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			errs = multierr.Combine(errs, errors.Wrap(err, "log_level"))
		}
	}
	errs = multierr.Combine(errs, logging.ValidateConfig(c.Log))
	errs = multierr.Combine(errs, c.Viewer.Validate("viewer"))

	if len(c.Cameras) == 0 {
		errs = multierr.Combine(errs, errors.New("at least one camera is required"))
	}
	for i, cam := range c.Cameras {
		errs = multierr.Combine(errs, cam.Validate(cameraPath(i)))
	}
	names := lo.Map(c.Cameras, func(cam CameraConfig, _ int) string { return cam.Name })
	for _, dup := range lo.FindDuplicates(names) {
		errs = multierr.Combine(errs, errors.Errorf("camera name %q is not unique", dup))
	}
	return errs
}

// Level returns the configured log level, INFO when unset.
func (c *Config) Level() (logging.Level, error) {
	if c.LogLevel == "" {
		return logging.INFO, nil
	}
	return logging.LevelFromString(c.LogLevel)
}

// CameraNames returns the camera names in config order.
func (c *Config) CameraNames() []string {
	return lo.Map(c.Cameras, func(cam CameraConfig, _ int) string { return cam.Name })
}

// Camera returns the camera config with the given name. An empty name selects the first camera.
func (c *Config) Camera(name string) (*CameraConfig, error) {
	if len(c.Cameras) == 0 {
		return nil, errors.New("no cameras configured")
	}
	if name == "" {
		return &c.Cameras[0], nil
	}
	cam, ok := lo.Find(c.Cameras, func(cam CameraConfig) bool { return cam.Name == name })
	if !ok {
		return nil, errors.Errorf("no camera named %q, have %q", name, c.CameraNames())
	}
	return &cam, nil
}

// ViewerConfig holds settings shared by every camera of the viewer.
type ViewerConfig struct {
	// ClippingRange is the near and far depth applied to cameras without their own.
	ClippingRange []float64 `json:"clipping_range,omitempty"`
	// GroundOrigin and GroundNormal define the plane ruler points fall onto when nothing is picked.
	GroundOrigin    []float64 `json:"ground_origin,omitempty"`
	GroundNormal    []float64 `json:"ground_normal,omitempty"`
	PickDepthFactor float64   `json:"pick_depth_factor,omitempty"`
}

// Validate checks the viewer settings, prefixing errors with path.
func (vc ViewerConfig) Validate(path string) error {
	var errs error
	if vc.ClippingRange != nil {
		errs = multierr.Combine(errs, validateClippingRange(path, vc.ClippingRange))
	}
	if vc.GroundOrigin != nil && len(vc.GroundOrigin) != 3 {
		errs = multierr.Combine(errs, errors.Errorf("%s: ground_origin must have 3 values, got %d", path, len(vc.GroundOrigin)))
	}
	if vc.GroundNormal != nil {
		if len(vc.GroundNormal) != 3 {
			errs = multierr.Combine(errs, errors.Errorf("%s: ground_normal must have 3 values, got %d", path, len(vc.GroundNormal)))
		} else if toVector(vc.GroundNormal).Norm() == 0 {
			errs = multierr.Combine(errs, errors.Errorf("%s: ground_normal must be non-zero", path))
		}
	}
	if vc.PickDepthFactor < 0 {
		errs = multierr.Combine(errs, errors.Errorf("%s: pick_depth_factor must be positive", path))
	}
	return errs
}

// RulerConfig returns the ruler settings, using ruler defaults for anything unset.
func (vc ViewerConfig) RulerConfig() ruler.Config {
	cfg := ruler.DefaultConfig()
	if len(vc.GroundOrigin) == 3 {
		cfg.GroundPlane.Origin = toVector(vc.GroundOrigin)
	}
	if len(vc.GroundNormal) == 3 {
		cfg.GroundPlane.Normal = toVector(vc.GroundNormal)
	}
	if vc.PickDepthFactor > 0 {
		cfg.PickDepthFactor = vc.PickDepthFactor
	}
	return cfg
}

// GroundPlane returns the configured ground plane.
func (vc ViewerConfig) GroundPlane() spatialmath.Plane {
	return vc.RulerConfig().GroundPlane
}

func validateClippingRange(path string, clip []float64) error {
	if len(clip) != 2 {
		return errors.Errorf("%s: clipping_range must have 2 values, got %d", path, len(clip))
	}
	if clip[0] <= 0 || clip[1] <= clip[0] {
		return errors.Errorf("%s: clipping_range %v must satisfy 0 < near < far", path, clip)
	}
	return nil
}

func toVector(v []float64) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}
