package rimage

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/camgeom/rimage/transform"
	"go.viam.com/camgeom/spatialmath"
)

func overheadCamera(t *testing.T) *transform.PerspectiveCamera {
	t.Helper()
	rot, err := spatialmath.NewLookAtRotation(r3.Vector{Z: -1}, r3.Vector{Y: 1})
	test.That(t, err, test.ShouldBeNil)
	params, err := transform.NewCameraParameters(r3.Vector{Z: 10}, rot,
		transform.NewCameraIntrinsics(500, r2.Point{X: 320, Y: 240}))
	test.That(t, err, test.ShouldBeNil)
	pc := transform.NewPerspectiveCamera(params)
	test.That(t, pc.Update(), test.ShouldBeTrue)
	return pc
}

func TestRenderCameraView(t *testing.T) {
	pc := overheadCamera(t)
	opts := DefaultViewOptions()
	opts.Ruler = &[2]r3.Vector{{X: 2}, {Y: -2}}

	img, err := RenderCameraView(pc, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 640)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 480)

	// (5, 5) sees (-6.3, 4.7, 0), away from every grid line
	r, g, b, a := img.At(5, 5).RGBA()
	test.That(t, []uint32{r, g, b, a}, test.ShouldResemble, []uint32{0, 0, 0, 0xffff})

	// ruler endpoint at (2, 0, 0)
	r, g, b, _ = img.At(420, 240).RGBA()
	test.That(t, r>>8, test.ShouldBeGreaterThan, 200)
	test.That(t, b>>8, test.ShouldBeLessThan, 60)

	// grid line x = 1 crosses (370, 300)
	r, g, b, _ = img.At(370, 300).RGBA()
	test.That(t, r+g+b, test.ShouldBeGreaterThan, 0)
}

func TestRenderCameraViewErrors(t *testing.T) {
	_, err := RenderCameraView(transform.NewPerspectiveCamera(nil), DefaultViewOptions())
	test.That(t, err, test.ShouldBeError, transform.ErrNoCameraParameters)

	pc := overheadCamera(t)
	pc.SetImageDimensions(0, 0)
	_, err = RenderCameraView(pc, DefaultViewOptions())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "dimensions")

	pc = overheadCamera(t)
	opts := DefaultViewOptions()
	opts.GridStep = 0
	_, err = RenderCameraView(pc, opts)
	test.That(t, err, test.ShouldNotBeNil)

	opts = DefaultViewOptions()
	opts.Ground.Normal = r3.Vector{}
	_, err = RenderCameraView(pc, opts)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestEncodeCameraView(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, EncodeCameraView(&buf, overheadCamera(t), DefaultViewOptions()), test.ShouldBeNil)
	img, err := png.Decode(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 640)
}
