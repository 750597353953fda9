package mapview

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeflow.dev/internal/traffic"
)

type indexSource struct {
	mutex    sync.Mutex
	index    *traffic.MinuteBucketIndex
	stations []traffic.StationRecord
	windows  []traffic.TimeWindow
}

func (s *indexSource) StationTraffic(window traffic.TimeWindow) []traffic.StationRecord {
	s.mutex.Lock()
	s.windows = append(s.windows, window)
	s.mutex.Unlock()
	return s.index.ComputeStationTraffic(s.stations, window)
}

func (s *indexSource) queries() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.windows)
}

func newIndexSource() *indexSource {
	at := func(hour, minute int) time.Time {
		return time.Date(2024, time.March, 1, hour, minute, 0, 0, time.UTC)
	}
	return &indexSource{
		index: traffic.Ingest([]traffic.TripRecord{
			traffic.NewTrip("A", "B", at(0, 5), at(0, 10)),
			traffic.NewTrip("B", "A", at(0, 50), at(1, 5)),
		}),
		stations: []traffic.StationRecord{
			{ID: "A", Name: "Station A", Lon: DefaultCenter[0], Lat: DefaultCenter[1]},
			{ID: "B", Name: "Station B", Lon: -70.0, Lat: 42.36},
		},
	}
}

func TestNewSessionRendersAllTraffic(t *testing.T) {
	source := newIndexSource()
	s := NewSession(source, DefaultViewport(800, 600))

	assert.Equal(t, 1, source.queries())
	assert.False(t, s.Window().Bounded())
	assert.Equal(t, "(any time)", s.WindowLabel())
	assert.Equal(t, []string{"A", "B"}, s.LastRender().Entered)

	markers := s.Markers()
	require.Len(t, markers, 2)
	assert.Equal(t, 2, markers[0].TotalTraffic)
	assert.InDelta(t, 25, markers[0].Radius, 1e-9)
	assert.InDelta(t, 400, markers[0].Position.X, 1e-6)
	assert.True(t, markers[0].Visible)
	assert.False(t, markers[1].Visible)
}

func TestSessionSetTimeFilter(t *testing.T) {
	source := newIndexSource()
	s := NewSession(source, DefaultViewport(800, 600))

	require.NoError(t, s.SetTimeFilter(5))
	assert.Equal(t, 2, source.queries())
	assert.Equal(t, "12:05 AM", s.WindowLabel())
	assert.Equal(t, []string{"A", "B"}, s.LastRender().Updated)

	markers := s.Markers()
	require.Len(t, markers, 2)
	assert.Equal(t, 1, markers[0].TotalTraffic)
	assert.Equal(t, 2, markers[1].TotalTraffic)
	assert.InDelta(t, 50, markers[1].Radius, 1e-9)
	assert.InDelta(t, 3+47/1.4142135623730951, markers[0].Radius, 1e-6)
	lo, hi := s.Scale().Range()
	assert.Equal(t, [2]float64{3, 50}, [2]float64{lo, hi})

	assert.ErrorIs(t, s.SetTimeFilter(1440), traffic.ErrMinuteOutOfRange)
	assert.Equal(t, 2, source.queries())

	require.NoError(t, s.SetTimeFilter(traffic.SliderUnbounded))
	assert.False(t, s.Window().Bounded())
}

func TestSessionViewportChangesRepositionWithoutRequery(t *testing.T) {
	source := newIndexSource()
	s := NewSession(source, DefaultViewport(800, 600))

	var kinds []EventKind
	s.Dispatcher().Subscribe(EventMove, func(ev Event) { kinds = append(kinds, ev.Kind) })
	s.Dispatcher().Subscribe(EventZoom, func(ev Event) { kinds = append(kinds, ev.Kind) })

	s.Pan(100, 0)
	assert.Greater(t, s.Viewport().CenterLon, DefaultCenter[0])
	assert.InDelta(t, 300, s.Markers()[0].Position.X, 1e-6)

	s.ZoomTo(30)
	assert.Equal(t, MaxZoom, s.Viewport().Zoom)

	s.MoveTo(-70.0, 42.36)
	markers := s.Markers()
	assert.False(t, markers[0].Visible)
	assert.True(t, markers[1].Visible)

	require.NoError(t, s.Resize(1024, 768))
	assert.Equal(t, 1024, s.Viewport().Width)
	assert.ErrorIs(t, s.Resize(0, 768), ErrInvalidSize)

	assert.Equal(t, []EventKind{EventMove, EventZoom, EventMove}, kinds)
	assert.Equal(t, 1, source.queries())
}

func TestSessionClampsInitialZoom(t *testing.T) {
	vp := DefaultViewport(800, 600)
	vp.Zoom = 2
	s := NewSession(newIndexSource(), vp)
	assert.Equal(t, MinZoom, s.Viewport().Zoom)
}

func TestSessionClose(t *testing.T) {
	source := newIndexSource()
	s := NewSession(source, DefaultViewport(800, 600))

	s.Close()
	assert.Zero(t, s.Dispatcher().Len())

	require.NoError(t, s.SetTimeFilter(600))
	assert.Equal(t, 1, source.queries())
}
