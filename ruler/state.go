package ruler

import (
	"sync"

	"github.com/golang/geo/r3"
)

// State is an in-memory Widget. It is what a view without its own widget toolkit uses, and what
// the synchronizer is tested against.
type State struct {
	mu       sync.Mutex
	view     View
	points   [2]r3.Vector
	placed   [2]bool
	distance float64
	enabled  bool
	renders  int

	renderFunc func()
	onPlaced   []func(id int)
	onMoved    []func(id int)
}

// NewState returns an empty widget for the given view.
func NewState(view View) *State {
	return &State{view: view}
}

// View returns the view the widget belongs to.
func (s *State) View() View {
	return s.view
}

// SetRenderFunc sets the function called by Render, typically a redraw request to the view.
func (s *State) SetRenderFunc(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderFunc = f
}

// PointWorldPosition returns the position of endpoint id.
func (s *State) PointWorldPosition(id int) r3.Vector {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !validEndpoint(id) {
		return r3.Vector{}
	}
	return s.points[id]
}

// SetPointWorldPosition moves endpoint id and marks it placed.
func (s *State) SetPointWorldPosition(id int, pt r3.Vector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !validEndpoint(id) {
		return
	}
	s.points[id] = pt
	s.placed[id] = true
}

// Distance returns the Euclidean distance between the endpoints for the world view and the last
// set distance for the camera view.
func (s *State) Distance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == WorldView {
		if !s.placed[FirstEndpoint] || !s.placed[SecondEndpoint] {
			return 0
		}
		return s.points[FirstEndpoint].Distance(s.points[SecondEndpoint])
	}
	return s.distance
}

// SetDistance sets the displayed distance. World views measure their endpoints and ignore it.
func (s *State) SetDistance(distance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distance = distance
}

// IsRulerPlaced returns whether both endpoints are placed.
func (s *State) IsRulerPlaced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placed[FirstEndpoint] && s.placed[SecondEndpoint]
}

// Render requests a redraw.
func (s *State) Render() {
	s.mu.Lock()
	s.renders++
	f := s.renderFunc
	s.mu.Unlock()
	if f != nil {
		f()
	}
}

// RenderCount returns how many times Render was called.
func (s *State) RenderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// EnableWidget enables or disables user interaction.
func (s *State) EnableWidget(enable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enable
}

// Enabled returns whether user interaction is enabled.
func (s *State) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// RemoveRuler clears both endpoints and the displayed distance.
func (s *State) RemoveRuler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = [2]r3.Vector{}
	s.placed = [2]bool{}
	s.distance = 0
}

// OnPointPlaced registers a listener for PlacePoint.
func (s *State) OnPointPlaced(f func(id int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPlaced = append(s.onPlaced, f)
}

// OnPointMoved registers a listener for MovePoint.
func (s *State) OnPointMoved(f func(id int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMoved = append(s.onMoved, f)
}

// PlacePoint records a user placing endpoint id at pt and notifies listeners. Disabled widgets
// ignore gestures.
func (s *State) PlacePoint(id int, pt r3.Vector) {
	s.gesture(id, pt, func() []func(int) { return s.onPlaced })
}

// MovePoint records a user dragging endpoint id to pt and notifies listeners. Disabled widgets
// ignore gestures.
func (s *State) MovePoint(id int, pt r3.Vector) {
	s.gesture(id, pt, func() []func(int) { return s.onMoved })
}

func (s *State) gesture(id int, pt r3.Vector, listeners func() []func(int)) {
	s.mu.Lock()
	if !s.enabled || !validEndpoint(id) {
		s.mu.Unlock()
		return
	}
	s.points[id] = pt
	s.placed[id] = true
	toNotify := append([]func(int){}, listeners()...)
	s.mu.Unlock()

	for _, f := range toNotify {
		f(id)
	}
}

func validEndpoint(id int) bool {
	return id == FirstEndpoint || id == SecondEndpoint
}
