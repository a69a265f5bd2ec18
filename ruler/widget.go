// Package ruler keeps a two point measurement consistent between a 3D world view and the 2D
// image view of the active camera.
package ruler

import (
	"github.com/golang/geo/r3"

	"go.viam.com/camgeom/rimage/transform"
)

// View identifies which of the two views a widget or an event belongs to.
type View int

const (
	// WorldView is the 3D scene view.
	WorldView View = iota
	// CameraView is the 2D image view of the active camera.
	CameraView
)

func (v View) String() string {
	switch v {
	case WorldView:
		return "world"
	case CameraView:
		return "camera"
	}
	return "unknown"
}

// Endpoints of a ruler.
const (
	FirstEndpoint  = 0
	SecondEndpoint = 1
)

// Widget is the ruler overlay of one view. Camera view widgets store image points as (x, y, 0).
// Setters must not notify listeners; only user gestures do.
type Widget interface {
	PointWorldPosition(id int) r3.Vector
	SetPointWorldPosition(id int, pt r3.Vector)
	// Distance is the displayed measurement. World widgets measure their own endpoints, camera
	// widgets display whatever was last set.
	Distance() float64
	SetDistance(distance float64)
	IsRulerPlaced() bool
	Render()
	EnableWidget(enable bool)
	RemoveRuler()
}

// Notifier is implemented by widgets that report user gestures.
type Notifier interface {
	OnPointPlaced(func(id int))
	OnPointMoved(func(id int))
}

// CameraProvider supplies the camera currently driving the camera view.
type CameraProvider interface {
	ActiveCamera() (*transform.PerspectiveCamera, bool)
}

// CameraProviderFunc adapts a function to a CameraProvider.
type CameraProviderFunc func() (*transform.PerspectiveCamera, bool)

// ActiveCamera calls f.
func (f CameraProviderFunc) ActiveCamera() (*transform.PerspectiveCamera, bool) {
	return f()
}

// PointPicker finds the first rendered surface point along the segment from origin to target.
type PointPicker interface {
	Pick3DPoint(origin, target r3.Vector) (r3.Vector, bool)
}
