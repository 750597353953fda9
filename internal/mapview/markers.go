package mapview

import (
	"sort"
	"sync"

	"bikeflow.dev/internal/traffic"
)

// viewportMargin keeps markers near the edge rendered while panning.
const viewportMargin = 50.0

// Marker is the drawable state of one station.
type Marker struct {
	StationID    string  `json:"stationId"`
	Name         string  `json:"name"`
	Lon          float64 `json:"lon"`
	Lat          float64 `json:"lat"`
	Position     Point   `json:"position"`
	Radius       float64 `json:"radius"`
	Flow         float64 `json:"flow"`
	Arrivals     int     `json:"arrivals"`
	Departures   int     `json:"departures"`
	TotalTraffic int     `json:"totalTraffic"`
	Visible      bool    `json:"visible"`
}

// RenderResult lists which station ids entered, stayed, and left the view in
// one Render call. Each list is sorted.
type RenderResult struct {
	Entered []string `json:"entered"`
	Updated []string `json:"updated"`
	Exited  []string `json:"exited"`
}

// MarkerView binds stations to markers by station id, so a re-render updates
// existing markers in place instead of replacing them.
type MarkerView struct {
	mutex     sync.RWMutex
	projector Projector
	markers   map[string]*Marker
	order     []string
}

func NewMarkerView(projector Projector) *MarkerView {
	return &MarkerView{
		projector: projector,
		markers:   make(map[string]*Marker),
	}
}

// Render replaces the marker data with stations sized by scale.
func (mv *MarkerView) Render(stations []traffic.StationRecord, scale RadiusScale) RenderResult {
	mv.mutex.Lock()
	defer mv.mutex.Unlock()

	var result RenderResult
	seen := make(map[string]struct{}, len(stations))
	order := make([]string, 0, len(stations))

	for _, s := range stations {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		order = append(order, s.ID)

		m, ok := mv.markers[s.ID]
		if ok {
			result.Updated = append(result.Updated, s.ID)
		} else {
			m = &Marker{StationID: s.ID}
			mv.markers[s.ID] = m
			result.Entered = append(result.Entered, s.ID)
		}

		m.Name = s.Name
		m.Lon = s.Lon
		m.Lat = s.Lat
		m.Arrivals = s.Arrivals
		m.Departures = s.Departures
		m.TotalTraffic = s.TotalTraffic
		m.Radius = scale.Radius(s.TotalTraffic)
		m.Flow = Flow(s)
		mv.place(m)
	}

	for id := range mv.markers {
		if _, ok := seen[id]; !ok {
			delete(mv.markers, id)
			result.Exited = append(result.Exited, id)
		}
	}
	mv.order = order

	sort.Strings(result.Entered)
	sort.Strings(result.Updated)
	sort.Strings(result.Exited)
	return result
}

// Reposition recomputes every marker position with projector, as after a
// pan, zoom, or resize.
func (mv *MarkerView) Reposition(projector Projector) {
	mv.mutex.Lock()
	defer mv.mutex.Unlock()

	mv.projector = projector
	for _, m := range mv.markers {
		mv.place(m)
	}
}

func (mv *MarkerView) place(m *Marker) {
	m.Position = mv.projector.Project(m.Lon, m.Lat)
	if vp, ok := mv.projector.(Viewport); ok {
		m.Visible = vp.Contains(m.Position, viewportMargin+m.Radius)
	} else {
		m.Visible = true
	}
}

// Markers returns copies of the markers in station order.
func (mv *MarkerView) Markers() []Marker {
	mv.mutex.RLock()
	defer mv.mutex.RUnlock()

	markers := make([]Marker, 0, len(mv.order))
	for _, id := range mv.order {
		markers = append(markers, *mv.markers[id])
	}
	return markers
}

// Marker returns the marker for a station id.
func (mv *MarkerView) Marker(id string) (Marker, bool) {
	mv.mutex.RLock()
	defer mv.mutex.RUnlock()

	m, ok := mv.markers[id]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}
