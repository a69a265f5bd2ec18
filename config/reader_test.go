package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/camgeom/logging"
	"go.viam.com/camgeom/spatialmath"
)

const testConfig = `{
	// cameras of a two view survey
	"log_level": "debug",
	"log": [{"pattern": "camgeom.ruler", "level": "warn"}],
	"viewer": {
		"clipping_range": [0.1, 50],
		"ground_origin": [0, 0, 0],
		"ground_normal": [0, 0, 1],
		"pick_depth_factor": 20,
	},
	"cameras": [
		{
			"name": "overhead",
			"attributes": {
				"focal_length": 500,
				"principal_point": [320, 240],
				"center": [0, 0, ${CAMGEOM_HEIGHT}],
				"look_at": [0, 0, 0],
				"up": [0, 1, 0],
			},
		},
		{
			"name": "forward",
			"attributes": {
				"focal_length": 800,
				"principal_point": [640, 360],
				"aspect_ratio": 1,
				"center": [0, -10, 0],
				"rotation_matrix": [1, 0, 0, 0, 0, -1, 0, 1, 0],
				"image_width": 1280,
				"image_height": 720,
				"clipping_range": [1, 100],
				"distortion": {"model": "brown_conrady", "parameters": [0.01, -0.002]},
			},
		},
	],
}`

func TestRead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	t.Setenv("CAMGEOM_HEIGHT", "12")

	path := filepath.Join(t.TempDir(), "viewer.json5")
	test.That(t, os.WriteFile(path, []byte(testConfig), 0o600), test.ShouldBeNil)

	cfg, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.CameraNames(), test.ShouldResemble, []string{"overhead", "forward"})

	level, err := cfg.Level()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, logging.DEBUG)
	test.That(t, cfg.Log, test.ShouldResemble, []logging.LoggerPatternConfig{{Pattern: "camgeom.ruler", Level: "warn"}})

	rulerCfg := cfg.Viewer.RulerConfig()
	test.That(t, rulerCfg.PickDepthFactor, test.ShouldEqual, 20.)
	test.That(t, rulerCfg.GroundPlane, test.ShouldResemble, spatialmath.NewGroundPlane())

	overheadCfg, err := cfg.Camera("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, overheadCfg.Name, test.ShouldEqual, "overhead")
	overhead, err := overheadCfg.Build(cfg.Viewer)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, overhead.Camera().Center(), test.ShouldResemble, r3.Vector{Z: 12})
	test.That(t, overhead.Depth(r3.Vector{}), test.ShouldAlmostEqual, 12)
	near, far := overhead.ClippingRange()
	test.That(t, near, test.ShouldEqual, 0.1)
	test.That(t, far, test.ShouldEqual, 50.)
	width, height := overhead.ImageDimensions()
	test.That(t, width, test.ShouldEqual, 640)
	test.That(t, height, test.ShouldEqual, 480)

	forwardCfg, err := cfg.Camera("forward")
	test.That(t, err, test.ShouldBeNil)
	forward, err := forwardCfg.Build(cfg.Viewer)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, forward.Depth(r3.Vector{}), test.ShouldAlmostEqual, 10)
	test.That(t, forward.Camera().Intrinsics().Distortion.Parameters(), test.ShouldResemble,
		[]float64{0.01, -0.002, 0, 0, 0})
	near, far = forward.ClippingRange()
	test.That(t, near, test.ShouldEqual, 1.)
	test.That(t, far, test.ShouldEqual, 100.)
	width, height = forward.ImageDimensions()
	test.That(t, width, test.ShouldEqual, 1280)
	test.That(t, height, test.ShouldEqual, 720)

	_, err = cfg.Camera("side")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "side")

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromReaderValidate(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := FromReader("somepath", strings.NewReader(""), logger)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = FromReader("somepath", strings.NewReader(`{"cameras": 1}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "decode")

	_, err = FromReader("somepath", strings.NewReader(`{}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least one camera")

	_, err = FromReader("somepath", strings.NewReader(`{"cameras": [{"attributes": {}}]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"name" is required`)

	_, err = FromReader("somepath", strings.NewReader(`{"cameras": [
		{"name": "a", "attributes": {"focal_lenght": 500}},
	]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "focal_lenght")

	_, err = FromReader("somepath", strings.NewReader(`{"log_level": "loud", "cameras": [
		{"name": "a", "attributes": {"focal_length": 1, "principal_point": [1, 1], "center": [0, 0, 0], "quaternion": [1, 0, 0, 0]}},
		{"name": "a", "attributes": {"focal_length": 1, "principal_point": [1, 1], "center": [0, 0, 0], "quaternion": [1, 0, 0, 0]}},
	]}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "loud")
	test.That(t, err.Error(), test.ShouldContainSubstring, `camera name "a" is not unique`)
}

func TestConfigValidate(t *testing.T) {
	valid := CameraConfig{Name: "cam", Attributes: map[string]interface{}{
		"focal_length":    500.,
		"principal_point": []float64{320, 240},
		"center":          []float64{0, 0, 10},
		"quaternion":      []float64{0, 1, 0, 0},
	}}
	cfg := Config{Cameras: []CameraConfig{valid}}
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	cfg.LogLevel = "nope"
	cfg.Viewer = ViewerConfig{
		ClippingRange:   []float64{10, 1},
		GroundNormal:    []float64{0, 0, 0},
		GroundOrigin:    []float64{1},
		PickDepthFactor: -1,
	}
	cfg.Log = []logging.LoggerPatternConfig{{Pattern: "camgeom..ruler", Level: "info"}}
	errs := multierr.Errors(cfg.Validate())
	test.That(t, errs, test.ShouldHaveLength, 6)
}

func TestCameraAttributesValidate(t *testing.T) {
	base := func() CameraAttributes {
		return CameraAttributes{
			FocalLength:    500,
			PrincipalPoint: []float64{320, 240},
			Center:         []float64{0, 0, 10},
			LookAt:         []float64{0, 0, 0},
			Up:             []float64{0, 1, 0},
		}
	}
	test.That(t, base().Validate("cam"), test.ShouldBeNil)

	for _, tc := range []struct {
		name   string
		modify func(*CameraAttributes)
		errStr string
	}{
		{"no focal length", func(ca *CameraAttributes) { ca.FocalLength = 0 }, `"focal_length" is required`},
		{"short principal point", func(ca *CameraAttributes) { ca.PrincipalPoint = []float64{1} }, "principal_point must have 2 values"},
		{"no center", func(ca *CameraAttributes) { ca.Center = nil }, `"center" is required`},
		{"two orientations", func(ca *CameraAttributes) { ca.Quaternion = []float64{1, 0, 0, 0} }, "exactly one of"},
		{"no orientation", func(ca *CameraAttributes) { ca.LookAt = nil }, "exactly one of"},
		{"half image size", func(ca *CameraAttributes) { ca.ImageWidth = 100 }, "image_width and image_height"},
		{"bad clipping", func(ca *CameraAttributes) { ca.ClippingRange = []float64{0, 1} }, "clipping_range"},
		{"unknown distortion", func(ca *CameraAttributes) { ca.Distortion = &DistortionConfig{Model: "fisheye"} }, "fisheye"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ca := base()
			tc.modify(&ca)
			err := ca.Validate("cam")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errStr)
		})
	}
}

func TestCameraBuild(t *testing.T) {
	t.Run("quaternion", func(t *testing.T) {
		// half turn about x: the camera looks down -Z
		cc := CameraConfig{Name: "cam", Attributes: map[string]interface{}{
			"focal_length":    500.,
			"principal_point": []float64{320, 240},
			"center":          []float64{0, 0, 10},
			"quaternion":      []float64{0, 1, 0, 0},
		}}
		pc, err := cc.Build(ViewerConfig{})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pc.Depth(r3.Vector{}), test.ShouldAlmostEqual, 10)
		near, far := pc.ClippingRange()
		test.That(t, near, test.ShouldEqual, 0.01)
		test.That(t, far, test.ShouldEqual, 15.)
		test.That(t, pc.Distance(), test.ShouldAlmostEqual, 10)
	})

	t.Run("rotation matrix must be a rotation", func(t *testing.T) {
		cc := CameraConfig{Name: "cam", Attributes: map[string]interface{}{
			"focal_length":    500.,
			"principal_point": []float64{320, 240},
			"center":          []float64{0, 0, 10},
			"rotation_matrix": []float64{2, 0, 0, 0, 1, 0, 0, 0, 1},
		}}
		_, err := cc.Build(ViewerConfig{})
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := CameraConfig{Name: "cam"}.Build(ViewerConfig{})
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestRulerConfig(t *testing.T) {
	cfg := ViewerConfig{}.RulerConfig()
	test.That(t, cfg.PickDepthFactor, test.ShouldEqual, 100.)
	test.That(t, cfg.GroundPlane, test.ShouldResemble, spatialmath.NewGroundPlane())

	plane := ViewerConfig{GroundOrigin: []float64{0, 0, 2}, GroundNormal: []float64{0, 1, 0}}.GroundPlane()
	test.That(t, plane.Origin, test.ShouldResemble, r3.Vector{Z: 2})
	test.That(t, plane.Normal, test.ShouldResemble, r3.Vector{Y: 1})
}
