package ruler

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/camgeom/logging"
	"go.viam.com/camgeom/rimage/transform"
	"go.viam.com/camgeom/spatialmath"
)

// DefaultPickDepthFactor is how many camera distances past the camera a placed image point's
// pick ray extends.
const DefaultPickDepthFactor = 100.0

// ErrInvalidEndpoint is returned for endpoint ids other than FirstEndpoint and SecondEndpoint.
var ErrInvalidEndpoint = errors.New("ruler endpoint id must be 0 or 1")

// Config controls how image points without a picked surface are placed in the world.
type Config struct {
	// GroundPlane is intersected with the pick ray when nothing is picked.
	GroundPlane spatialmath.Plane
	// PickDepthFactor scales the camera distance to get the pick ray length.
	PickDepthFactor float64
}

// DefaultConfig returns a config using the z=0 ground plane and DefaultPickDepthFactor.
func DefaultConfig() Config {
	return Config{
		GroundPlane:     spatialmath.NewGroundPlane(),
		PickDepthFactor: DefaultPickDepthFactor,
	}
}

// PointUpdate is an endpoint position written to a widget.
type PointUpdate struct {
	View  View
	ID    int
	Point r3.Vector
}

// Update describes what a handler changed. An empty Update means nothing was done.
type Update struct {
	Points []PointUpdate
	// Distance is the world distance mirrored into the camera widget, valid if HasDistance.
	Distance    float64
	HasDistance bool
	Rendered    []View
}

// IsEmpty returns whether nothing was changed.
func (u Update) IsEmpty() bool {
	return len(u.Points) == 0 && !u.HasDistance && len(u.Rendered) == 0
}

// Synchronizer keeps the world view ruler and the camera view ruler consistent through the
// active camera.
type Synchronizer struct {
	world   Widget
	camera  Widget
	cameras CameraProvider
	picker  PointPicker
	cfg     Config
	logger  logging.Logger
}

// NewSynchronizer returns a synchronizer between the world and camera widgets. picker may be nil,
// in which case picking always fails. A zero PickDepthFactor or ground normal falls back to the
// defaults.
func NewSynchronizer(
	world, camera Widget,
	cameras CameraProvider,
	picker PointPicker,
	cfg Config,
	logger logging.Logger,
) *Synchronizer {
	if cfg.PickDepthFactor <= 0 {
		cfg.PickDepthFactor = DefaultPickDepthFactor
	}
	if cfg.GroundPlane.Normal.Norm2() == 0 {
		cfg.GroundPlane.Normal = spatialmath.NewGroundPlane().Normal
	}
	return &Synchronizer{
		world:   world,
		camera:  camera,
		cameras: cameras,
		picker:  picker,
		cfg:     cfg,
		logger:  logger,
	}
}

// Attach registers the synchronizer on every widget that reports gestures.
func (s *Synchronizer) Attach() {
	attach := func(w Widget, view View) {
		n, ok := w.(Notifier)
		if !ok {
			s.logger.Debugw("widget does not report gestures, not attaching", "view", view)
			return
		}
		n.OnPointPlaced(func(id int) {
			if _, err := s.HandlePointPlaced(view, id); err != nil {
				s.logger.Warnw("failed to handle placed point", "view", view, "id", id, "error", err)
			}
		})
		n.OnPointMoved(func(id int) {
			if _, err := s.HandlePointMoved(view, id); err != nil {
				s.logger.Warnw("failed to handle moved point", "view", view, "id", id, "error", err)
			}
		})
	}
	attach(s.world, WorldView)
	attach(s.camera, CameraView)
}

// HandlePointPlaced mirrors a point placed in view into the other view.
func (s *Synchronizer) HandlePointPlaced(view View, id int) (Update, error) {
	switch view {
	case WorldView:
		return s.AddCameraViewPoint(id)
	case CameraView:
		return s.AddWorldViewPoint(id)
	}
	return Update{}, errors.Errorf("unknown view %d", view)
}

// HandlePointMoved mirrors a point moved in view into the other view.
func (s *Synchronizer) HandlePointMoved(view View, id int) (Update, error) {
	switch view {
	case WorldView:
		return s.MoveCameraViewPoint(id)
	case CameraView:
		return s.MoveWorldViewPoint(id)
	}
	return Update{}, errors.Errorf("unknown view %d", view)
}

// AddWorldViewPoint places world endpoint id for the camera view endpoint just placed. The world
// point is the first picked surface along the pixel's ray, else the ray's intersection with the
// ground plane, else the pixel back-projected at the depth of the world origin.
func (s *Synchronizer) AddWorldViewPoint(id int) (Update, error) {
	camera, ok := s.activeCamera("AddWorldViewPoint", id)
	if !ok || !validEndpoint(id) {
		return Update{}, s.checkEndpoint(id)
	}

	pixel := toPixel(s.camera.PointWorldPosition(id))
	position := camera.Position()
	target := camera.UnprojectPoint(pixel, s.cfg.PickDepthFactor*camera.Distance())

	var pt r3.Vector
	if picked, ok := s.pick(position, target); ok {
		pt = camera.UnprojectPoint(pixel, camera.Depth(picked))
	} else if _, x, ok := s.cfg.GroundPlane.IntersectWithLine(position, target); ok {
		pt = x
	} else {
		s.logger.Debugw("pick ray misses the ground plane, using origin depth", "id", id)
		pt = camera.UnprojectPointAtOrigin(pixel)
	}

	var u Update
	s.setPoint(&u, s.world, WorldView, id, pt)
	if id == SecondEndpoint {
		s.render(&u, s.world, WorldView)
		s.mirrorDistance(&u)
		s.render(&u, s.camera, CameraView)
	}
	return u, nil
}

// AddCameraViewPoint projects the placed world endpoints into the camera view. The first endpoint
// is always refreshed; the second and a render follow when id is SecondEndpoint.
func (s *Synchronizer) AddCameraViewPoint(id int) (Update, error) {
	camera, ok := s.activeCamera("AddCameraViewPoint", id)
	if !ok || !validEndpoint(id) {
		return Update{}, s.checkEndpoint(id)
	}

	var u Update
	s.projectToCamera(&u, camera, FirstEndpoint)
	s.mirrorDistance(&u)
	if id == SecondEndpoint {
		s.projectToCamera(&u, camera, SecondEndpoint)
		s.render(&u, s.camera, CameraView)
	}
	return u, nil
}

// MoveWorldViewPoint follows a camera view endpoint drag by moving world endpoint id along the
// pixel's ray while keeping its depth.
func (s *Synchronizer) MoveWorldViewPoint(id int) (Update, error) {
	camera, ok := s.activeCamera("MoveWorldViewPoint", id)
	if !ok || !validEndpoint(id) {
		return Update{}, s.checkEndpoint(id)
	}

	depth := camera.Depth(s.world.PointWorldPosition(id))
	pt := camera.UnprojectPoint(toPixel(s.camera.PointWorldPosition(id)), depth)

	var u Update
	s.setPoint(&u, s.world, WorldView, id, pt)
	s.render(&u, s.world, WorldView)
	s.mirrorDistance(&u)
	s.render(&u, s.camera, CameraView)
	return u, nil
}

// MoveCameraViewPoint follows a world view endpoint drag by reprojecting it into the camera view.
func (s *Synchronizer) MoveCameraViewPoint(id int) (Update, error) {
	camera, ok := s.activeCamera("MoveCameraViewPoint", id)
	if !ok || !validEndpoint(id) {
		return Update{}, s.checkEndpoint(id)
	}

	var u Update
	s.projectToCamera(&u, camera, id)
	s.mirrorDistance(&u)
	s.render(&u, s.camera, CameraView)
	return u, nil
}

// UpdateCameraViewRuler redraws the camera view ruler from the world ruler, e.g. after the active
// camera changed. It does nothing until the world ruler is placed.
func (s *Synchronizer) UpdateCameraViewRuler() (Update, error) {
	if !s.world.IsRulerPlaced() {
		return Update{}, nil
	}
	return s.AddCameraViewPoint(SecondEndpoint)
}

// EnableWidgets enables or disables interaction with both rulers.
func (s *Synchronizer) EnableWidgets(enable bool) {
	s.world.EnableWidget(enable)
	s.camera.EnableWidget(enable)
}

// ResetRuler removes both rulers.
func (s *Synchronizer) ResetRuler() {
	s.world.RemoveRuler()
	s.camera.RemoveRuler()
}

func (s *Synchronizer) activeCamera(handler string, id int) (*transform.PerspectiveCamera, bool) {
	if s.cameras == nil {
		s.logger.Debugw("no camera provider, skipping", "handler", handler, "id", id)
		return nil, false
	}
	camera, ok := s.cameras.ActiveCamera()
	if !ok || camera == nil || camera.Camera() == nil {
		s.logger.Debugw("no active camera, skipping", "handler", handler, "id", id)
		return nil, false
	}
	return camera, true
}

func (s *Synchronizer) checkEndpoint(id int) error {
	if !validEndpoint(id) {
		return errors.Wrapf(ErrInvalidEndpoint, "got %d", id)
	}
	return nil
}

func (s *Synchronizer) pick(origin, target r3.Vector) (r3.Vector, bool) {
	if s.picker == nil {
		return r3.Vector{}, false
	}
	return s.picker.Pick3DPoint(origin, target)
}

func (s *Synchronizer) projectToCamera(u *Update, camera *transform.PerspectiveCamera, id int) {
	pixel, ok := camera.ProjectPoint(s.world.PointWorldPosition(id))
	if !ok {
		s.logger.Debugw("world point is behind the camera, not projecting", "id", id)
		return
	}
	s.setPoint(u, s.camera, CameraView, id, r3.Vector{X: pixel.X, Y: pixel.Y})
}

func (s *Synchronizer) setPoint(u *Update, w Widget, view View, id int, pt r3.Vector) {
	w.SetPointWorldPosition(id, pt)
	u.Points = append(u.Points, PointUpdate{View: view, ID: id, Point: pt})
}

func (s *Synchronizer) mirrorDistance(u *Update) {
	u.Distance = s.world.Distance()
	u.HasDistance = true
	s.camera.SetDistance(u.Distance)
}

func (s *Synchronizer) render(u *Update, w Widget, view View) {
	w.Render()
	u.Rendered = append(u.Rendered, view)
}

func toPixel(pt r3.Vector) r2.Point {
	return r2.Point{X: pt.X, Y: pt.Y}
}
