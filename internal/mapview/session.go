package mapview

import (
	"errors"
	"sync"

	"bikeflow.dev/internal/traffic"
)

var ErrInvalidSize = errors.New("viewport width and height must be positive")

// TrafficSource answers per-station traffic queries.
type TrafficSource interface {
	StationTraffic(window traffic.TimeWindow) []traffic.StationRecord
}

// Session is one map view: a viewport, a time filter, and the markers drawn
// for them. Changes are published on the Session's Dispatcher; the Session
// itself subscribes to recompute traffic on time changes and to reposition
// markers on viewport changes.
type Session struct {
	mutex       sync.Mutex
	source      TrafficSource
	viewport    Viewport
	window      traffic.TimeWindow
	dispatcher  *Dispatcher
	view        *MarkerView
	lastRender  RenderResult
	scale       RadiusScale
	unsubscribe []func()
}

// NewSession creates a Session showing all traffic in viewport and renders
// the initial markers.
func NewSession(source TrafficSource, viewport Viewport) *Session {
	viewport.Zoom = ClampZoom(viewport.Zoom)
	s := &Session{
		source:     source,
		viewport:   viewport,
		window:     traffic.Unbounded(),
		dispatcher: &Dispatcher{},
		view:       NewMarkerView(viewport),
	}

	reposition := func(ev Event) { s.view.Reposition(ev.Viewport) }
	s.unsubscribe = []func(){
		s.dispatcher.Subscribe(EventTimeChange, s.refresh),
		s.dispatcher.Subscribe(EventMove, reposition),
		s.dispatcher.Subscribe(EventZoom, reposition),
		s.dispatcher.Subscribe(EventResize, reposition),
	}

	s.refresh(Event{Kind: EventTimeChange, Viewport: viewport, Window: s.window})
	return s
}

func (s *Session) refresh(ev Event) {
	stations := s.source.StationTraffic(ev.Window)
	scale := NewRadiusScale(traffic.MaxTraffic(stations), ev.Window)
	result := s.view.Render(stations, scale)

	s.mutex.Lock()
	s.lastRender = result
	s.scale = scale
	s.mutex.Unlock()
}

// Dispatcher returns the dispatcher carrying this Session's events.
func (s *Session) Dispatcher() *Dispatcher {
	return s.dispatcher
}

func (s *Session) publish(kind EventKind, update func()) {
	s.mutex.Lock()
	update()
	ev := Event{Kind: kind, Viewport: s.viewport, Window: s.window}
	s.mutex.Unlock()

	s.dispatcher.Notify(ev)
}

// SetTimeFilter applies a time control value: -1 for all traffic, otherwise
// the window around that minute of day.
func (s *Session) SetTimeFilter(slider int) error {
	window, err := traffic.WindowFromSlider(slider)
	if err != nil {
		return err
	}
	s.publish(EventTimeChange, func() { s.window = window })
	return nil
}

// MoveTo centers the viewport on lon/lat.
func (s *Session) MoveTo(lon, lat float64) {
	s.publish(EventMove, func() {
		s.viewport.CenterLon = lon
		s.viewport.CenterLat = lat
	})
}

// Pan moves the viewport by dx, dy pixels.
func (s *Session) Pan(dx, dy float64) {
	s.publish(EventMove, func() {
		center := Point{X: float64(s.viewport.Width)/2 + dx, Y: float64(s.viewport.Height)/2 + dy}
		s.viewport.CenterLon, s.viewport.CenterLat = s.viewport.Unproject(center)
	})
}

// ZoomTo sets the zoom level, clamped to [MinZoom, MaxZoom].
func (s *Session) ZoomTo(zoom float64) {
	s.publish(EventZoom, func() { s.viewport.Zoom = ClampZoom(zoom) })
}

// Resize changes the viewport pixel size.
func (s *Session) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	s.publish(EventResize, func() {
		s.viewport.Width = width
		s.viewport.Height = height
	})
	return nil
}

func (s *Session) Viewport() Viewport {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.viewport
}

func (s *Session) Window() traffic.TimeWindow {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.window
}

// WindowLabel is the text shown next to the time control.
func (s *Session) WindowLabel() string {
	return s.Window().String()
}

// LastRender returns the result of the most recent traffic refresh.
func (s *Session) LastRender() RenderResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastRender
}

// Scale returns the radius scale the current markers were sized with.
func (s *Session) Scale() RadiusScale {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.scale
}

// Markers returns the current markers in station order.
func (s *Session) Markers() []Marker {
	return s.view.Markers()
}

// Close removes the Session's own subscriptions. Later events no longer
// update markers.
func (s *Session) Close() {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
}
