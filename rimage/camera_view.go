// Package rimage renders what a configured camera sees of the world.
package rimage

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"go.viam.com/camgeom/rimage/transform"
	"go.viam.com/camgeom/spatialmath"
)

// segmentSamples is how many pieces a world segment is cut into before projection, so that
// lens distortion bends it and points behind the camera drop out piecewise.
const segmentSamples = 32

var (
	backgroundColor = color.Black
	gridColor       = colorful.Hsv(210, 0.25, 0.55)
	rulerColor      = color.NRGBA{R: 255, G: 96, B: 0, A: 255}
	axisColors      = [3]color.Color{colorful.Hsv(0, 1, 1), colorful.Hsv(120, 1, 1), colorful.Hsv(240, 1, 1)}
)

// ViewOptions configures RenderCameraView.
type ViewOptions struct {
	// Ground is the plane the grid is laid on.
	Ground spatialmath.Plane
	// GridStep is the spacing of grid lines in world units.
	GridStep float64
	// GridExtent is how far the grid reaches from the ground origin along each axis.
	GridExtent float64
	// Ruler, when set, holds the world endpoints of a ruler to draw over the grid.
	Ruler *[2]r3.Vector
}

// DefaultViewOptions returns a unit grid on z = 0 reaching 10 units out.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		Ground:     spatialmath.NewGroundPlane(),
		GridStep:   1,
		GridExtent: 10,
	}
}

// RenderCameraView draws the ground grid, the world axes and an optional ruler as seen by the
// camera. The image has the camera's dimensions, so Update must have been called.
func RenderCameraView(pc *transform.PerspectiveCamera, opts ViewOptions) (image.Image, error) {
	if pc.Camera() == nil {
		return nil, transform.ErrNoCameraParameters
	}
	width, height := pc.ImageDimensions()
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("camera image dimensions %dx%d are not set", width, height)
	}
	if opts.GridStep <= 0 || opts.GridExtent < 0 {
		return nil, errors.Errorf("invalid grid step %v and extent %v", opts.GridStep, opts.GridExtent)
	}
	normal := opts.Ground.Normal
	if normal.Norm() == 0 {
		return nil, errors.New("ground plane normal must be non-zero")
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	// grid
	u := normal.Ortho()
	v := normal.Normalize().Cross(u)
	origin := opts.Ground.Origin
	n := int(math.Floor(opts.GridExtent / opts.GridStep))
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for i := -n; i <= n; i++ {
		offset := float64(i) * opts.GridStep
		traceSegment(dc, pc,
			origin.Add(u.Mul(offset)).Sub(v.Mul(opts.GridExtent)),
			origin.Add(u.Mul(offset)).Add(v.Mul(opts.GridExtent)))
		traceSegment(dc, pc,
			origin.Add(v.Mul(offset)).Sub(u.Mul(opts.GridExtent)),
			origin.Add(v.Mul(offset)).Add(u.Mul(opts.GridExtent)))
	}
	dc.Stroke()

	// axes
	dc.SetLineWidth(2)
	for i, axis := range []r3.Vector{{X: 1}, {Y: 1}, {Z: 1}} {
		dc.SetColor(axisColors[i])
		traceSegment(dc, pc, r3.Vector{}, axis.Mul(opts.GridStep))
		dc.Stroke()
	}

	pp := pc.Camera().Intrinsics().PrincipalPoint
	center := image.Pt(int(math.Round(pp.X)), int(math.Round(pp.Y)))
	DrawRectangleEmpty(dc, image.Rectangle{Min: center.Sub(image.Pt(3, 3)), Max: center.Add(image.Pt(3, 3))}, gridColor, 1)

	if opts.Ruler != nil {
		drawRuler(dc, pc, *opts.Ruler)
	}
	return dc.Image(), nil
}

// EncodeCameraView renders the camera view and writes it to w as a PNG.
func EncodeCameraView(w io.Writer, pc *transform.PerspectiveCamera, opts ViewOptions) error {
	img, err := RenderCameraView(pc, opts)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

// traceSegment adds the projection of the world segment from a to b to the current path.
func traceSegment(dc *gg.Context, pc *transform.PerspectiveCamera, a, b r3.Vector) {
	var prev r2.Point
	prevOK := false
	for i := 0; i <= segmentSamples; i++ {
		pt := a.Add(b.Sub(a).Mul(float64(i) / segmentSamples))
		pixel, ok := pc.ProjectPoint(pt)
		if ok && prevOK {
			dc.MoveTo(prev.X, prev.Y)
			dc.LineTo(pixel.X, pixel.Y)
		}
		prev, prevOK = pixel, ok
	}
}

func drawRuler(dc *gg.Context, pc *transform.PerspectiveCamera, endpoints [2]r3.Vector) {
	dc.SetColor(rulerColor)
	dc.SetLineWidth(2)
	traceSegment(dc, pc, endpoints[0], endpoints[1])
	dc.Stroke()

	var label r2.Point
	visible := false
	for _, pt := range endpoints {
		pixel, ok := pc.ProjectPoint(pt)
		if !ok {
			continue
		}
		dc.DrawCircle(pixel.X, pixel.Y, 4)
		dc.Fill()
		label, visible = pixel, true
	}
	if !visible {
		return
	}
	DrawString(dc, fmt.Sprintf("%.3f", endpoints[0].Distance(endpoints[1])),
		image.Pt(int(label.X)+8, int(label.Y)-8), rulerColor, 14)
}
