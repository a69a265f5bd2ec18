package transform

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/camgeom/spatialmath"
)

func TestIntrinsicsMatrix(t *testing.T) {
	ci := CameraIntrinsics{
		FocalLength:    600,
		PrincipalPoint: r2.Point{X: 310, Y: 250},
		AspectRatio:    1.25,
		Skew:           3,
	}
	k := ci.Matrix()
	test.That(t, mat.EqualApprox(k, mat.NewDense(3, 3, []float64{
		600, 3, 310,
		0, 480, 250,
		0, 0, 1,
	}), 1e-12), test.ShouldBeTrue)

	back, err := NewCameraIntrinsicsFromMatrix(k)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.FocalLength, test.ShouldAlmostEqual, ci.FocalLength)
	test.That(t, back.AspectRatio, test.ShouldAlmostEqual, ci.AspectRatio)
	test.That(t, back.Skew, test.ShouldAlmostEqual, ci.Skew)
	test.That(t, back.PrincipalPoint, test.ShouldResemble, ci.PrincipalPoint)

	_, err = NewCameraIntrinsicsFromMatrix(mat.NewDense(2, 2, nil))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewCameraIntrinsicsFromMatrix(mat.NewDense(3, 3, []float64{600, 0, 320, 0, 0, 240, 0, 0, 1}))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestIntrinsicsCheckValid(t *testing.T) {
	valid := NewCameraIntrinsics(500, r2.Point{X: 320, Y: 240})
	test.That(t, valid.CheckValid(), test.ShouldBeNil)

	noFocal := valid
	noFocal.FocalLength = 0
	test.That(t, noFocal.CheckValid(), test.ShouldNotBeNil)

	badAspect := valid
	badAspect.AspectRatio = -2
	test.That(t, badAspect.CheckValid(), test.ShouldNotBeNil)

	var nilDistortion *BrownConrady
	withNil := valid
	withNil.Distortion = nilDistortion
	test.That(t, withNil.CheckValid(), test.ShouldNotBeNil)
}

func TestIntrinsicsMapUnmap(t *testing.T) {
	ci := NewCameraIntrinsics(500, r2.Point{X: 320, Y: 240})
	test.That(t, ci.Map(r2.Point{X: 0.1, Y: -0.2}), test.ShouldResemble, r2.Point{X: 370, Y: 140})
	test.That(t, ci.Unmap(r2.Point{X: 370, Y: 140}), test.ShouldResemble, r2.Point{X: 0.1, Y: -0.2})

	distortions := []Distorter{
		&BrownConrady{RadialK1: 0.1, RadialK2: -0.05, TangentialP1: 0.001, TangentialP2: -0.002},
		&InverseBrownConrady{RadialK1: -0.08, RadialK2: 0.01},
	}
	for _, d := range distortions {
		t.Run(string(d.ModelType()), func(t *testing.T) {
			distorted := ci
			distorted.Skew = 1.5
			distorted.AspectRatio = 0.9
			distorted.Distortion = d
			test.That(t, distorted.CheckValid(), test.ShouldBeNil)
			for _, norm := range []r2.Point{{0, 0}, {0.2, -0.1}, {-0.3, 0.25}} {
				pixel := distorted.Map(norm)
				back := distorted.Unmap(pixel)
				test.That(t, back.X, test.ShouldAlmostEqual, norm.X, 1e-8)
				test.That(t, back.Y, test.ShouldAlmostEqual, norm.Y, 1e-8)
			}
		})
	}
}

func TestIntrinsicsScaled(t *testing.T) {
	ci := CameraIntrinsics{
		FocalLength:    400,
		PrincipalPoint: r2.Point{X: 200, Y: 100},
		AspectRatio:    2,
		Skew:           1,
		Distortion:     &BrownConrady{RadialK1: 0.2},
	}
	scaled, err := ci.Scaled(0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scaled.FocalLength, test.ShouldAlmostEqual, 200)
	test.That(t, scaled.AspectRatio, test.ShouldAlmostEqual, 2)
	test.That(t, scaled.Skew, test.ShouldAlmostEqual, 0.5)
	test.That(t, scaled.PrincipalPoint, test.ShouldResemble, r2.Point{X: 100, Y: 50})
	test.That(t, scaled.Distortion, test.ShouldBeNil)
	test.That(t, ci.FocalLength, test.ShouldEqual, 400.)

	moved := ci.WithPrincipalPoint(r2.Point{X: 1, Y: 2})
	test.That(t, moved.PrincipalPoint, test.ShouldResemble, r2.Point{X: 1, Y: 2})
	test.That(t, ci.PrincipalPoint, test.ShouldResemble, r2.Point{X: 200, Y: 100})
	test.That(t, ci.String(), test.ShouldEqual, "f=400 pp=(200, 100) aspect=2 skew=1")
}

func TestCameraParameters(t *testing.T) {
	_, err := NewCameraParameters(r3.Vector{}, nil, NewCameraIntrinsics(500, r2.Point{}))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewCameraParameters(r3.Vector{}, spatialmath.NewZeroOrientation(), NewCameraIntrinsics(0, r2.Point{}))
	test.That(t, err, test.ShouldNotBeNil)

	center := r3.Vector{X: 1, Y: 2, Z: 3}
	intrinsics := NewCameraIntrinsics(100, r2.Point{X: 50, Y: 40})
	params, err := NewCameraParameters(center, spatialmath.NewZeroOrientation(), intrinsics)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, params.Center(), test.ShouldResemble, center)
	test.That(t, params.Translation(), test.ShouldResemble, r3.Vector{X: -1, Y: -2, Z: -3})
	test.That(t, params.Depth(r3.Vector{X: 1, Y: 2, Z: 5}), test.ShouldAlmostEqual, 2)
	test.That(t, params.ToCamera(r3.Vector{X: 2, Y: 2, Z: 5}), test.ShouldResemble, r3.Vector{X: 1, Z: 2})

	pt := r3.Vector{X: 2, Y: 1, Z: 7}
	pixel := params.Project(pt)
	test.That(t, pixel.X, test.ShouldAlmostEqual, 75)
	test.That(t, pixel.Y, test.ShouldAlmostEqual, 15)

	var h mat.VecDense
	h.MulVec(params.Matrix(), mat.NewVecDense(4, []float64{pt.X, pt.Y, pt.Z, 1}))
	test.That(t, h.AtVec(2), test.ShouldAlmostEqual, params.Depth(pt))
	test.That(t, h.AtVec(0)/h.AtVec(2), test.ShouldAlmostEqual, pixel.X)
	test.That(t, h.AtVec(1)/h.AtVec(2), test.ShouldAlmostEqual, pixel.Y)
}
