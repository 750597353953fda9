package bikeshare

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeflow.dev/internal/metrics"
	"bikeflow.dev/internal/traffic"
)

// stubSource serves fixed feeds and can be switched to fail.
type stubSource struct {
	mutex    sync.Mutex
	stations []traffic.StationRecord
	trips    []traffic.TripRecord
	err      error
	fetches  atomic.Int32
}

func (s *stubSource) FetchStations(ctx context.Context) ([]traffic.StationRecord, IngestReport, error) {
	s.fetches.Add(1)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return nil, IngestReport{}, s.err
	}
	report := newIngestReport()
	report.StationsRead = len(s.stations)
	return s.stations, report, nil
}

func (s *stubSource) FetchTrips(ctx context.Context) ([]traffic.TripRecord, IngestReport, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	report := newIngestReport()
	report.TripsRead = len(s.trips)
	report.TripsAccepted = len(s.trips)
	return s.trips, report, nil
}

func (s *stubSource) fail(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.err = err
}

func newTestManager(t *testing.T) (*Manager, *metrics.Metrics) {
	t.Helper()
	config := testConfig()
	m := metrics.New(prometheus.NewRegistry())

	manager, err := InitManager(context.Background(), config, newTestFeedSource(t, config), nil, m)
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)
	return manager, m
}

func byID(stations []traffic.StationRecord) map[string]traffic.StationRecord {
	out := make(map[string]traffic.StationRecord, len(stations))
	for _, s := range stations {
		out[s.ID] = s
	}
	return out
}

func TestManagerLoadsSnapshot(t *testing.T) {
	manager, m := newTestManager(t)

	assert.True(t, manager.HasData())
	snapshot := manager.Snapshot()
	assert.Len(t, snapshot.Stations, 6)
	assert.Equal(t, 6, snapshot.Index.Len())
	assert.Equal(t, 2, snapshot.Report.StationsSkipped)
	assert.Equal(t, 3, snapshot.Report.TripsSkipped)
	assert.False(t, snapshot.LastUpdated.IsZero())
	assert.Equal(t, snapshot.Report, manager.Report())
	assert.Equal(t, 6, manager.Report().TripsAccepted)

	assert.Equal(t, 6.0, testutil.ToFloat64(m.StationsLoaded))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.TripsIndexed))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TripsIngestedTotal.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedFetchesTotal.WithLabelValues("trips", "ok")))
}

func TestManagerStationTraffic(t *testing.T) {
	manager, m := newTestManager(t)

	all := byID(manager.StationTraffic(traffic.Unbounded()))
	require.Len(t, all, 6)
	assert.Equal(t, traffic.StationRecord{ID: "M32006", Name: "MIT at Mass Ave / Amherst St",
		Lat: 42.3581, Lon: -71.093198, Departures: 2, Arrivals: 2, TotalTraffic: 4}, all["M32006"])
	assert.Equal(t, 3, all["M32011"].TotalTraffic)
	assert.Equal(t, 1, all["M32018"].Departures)
	assert.Zero(t, all["M32041"].TotalTraffic)

	morning, err := traffic.Around(8 * 60)
	require.NoError(t, err)
	rush := byID(manager.StationTraffic(morning))
	assert.Equal(t, 2, rush["M32006"].Departures)
	assert.Equal(t, 1, rush["M32006"].Arrivals)
	assert.Equal(t, 2, rush["M32011"].TotalTraffic)
	// The 09:10 arrival at South Station falls on the open end of the window.
	assert.Zero(t, rush["A32010"].TotalTraffic)

	midnight, _ := traffic.Around(0)
	late := byID(manager.StationTraffic(midnight))
	assert.Equal(t, 1, late["M32018"].Departures)
	assert.Equal(t, 1, late["M32011"].Arrivals)
	assert.Zero(t, late["M32011"].Departures)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("unbounded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("bounded")))
}

func TestManagerFindStation(t *testing.T) {
	manager, _ := newTestManager(t)

	window, _ := traffic.Around(8 * 60)
	station, ok := manager.FindStation("M32006", window)
	require.True(t, ok)
	assert.Equal(t, 3, station.TotalTraffic)

	_, ok = manager.FindStation("nope", window)
	assert.False(t, ok)
}

func TestManagerStationsNear(t *testing.T) {
	manager, _ := newTestManager(t)

	near := manager.StationsNear(42.3581, -71.093198, 1500, 10, traffic.Unbounded())
	var ids []string
	for _, s := range near {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"M32006", "M32041", "M32011"}, ids)
	assert.Equal(t, 4, near[0].TotalTraffic)

	assert.Len(t, manager.StationsNear(42.3581, -71.093198, 1500, 2, traffic.Unbounded()), 2)
	assert.Empty(t, manager.StationsNear(40.0, -74.0, 1500, 10, traffic.Unbounded()))
}

func TestManagerSummary(t *testing.T) {
	manager, _ := newTestManager(t)

	window, _ := traffic.Around(8 * 60)
	summary := manager.Summary(window, 2)

	assert.Equal(t, 6, summary.Stations)
	assert.Equal(t, 2, summary.ActiveStations)
	assert.Equal(t, 3, summary.Departures)
	assert.Equal(t, 2, summary.Arrivals)
	require.Len(t, summary.Busiest, 2)
	assert.Equal(t, "M32006", summary.Busiest[0].ID)
	assert.Equal(t, "M32011", summary.Busiest[1].ID)
	assert.Equal(t, 6, summary.Report.TripsAccepted)

	all := manager.Summary(traffic.Unbounded(), 100)
	assert.Len(t, all.Busiest, 6)
	assert.Equal(t, 6, all.Departures)
	assert.Equal(t, 6, all.Arrivals)
	assert.Empty(t, manager.Summary(traffic.Unbounded(), -1).Busiest)
}

func TestManagerSummaryUsesOneSnapshot(t *testing.T) {
	at := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	source := &stubSource{
		stations: []traffic.StationRecord{{ID: "A"}, {ID: "B"}},
		trips:    []traffic.TripRecord{traffic.NewTrip("A", "B", at, at.Add(10*time.Minute))},
	}

	manager, err := InitManager(context.Background(), testConfig(), source, nil, nil)
	require.NoError(t, err)
	defer manager.Shutdown()
	first := manager.Snapshot()

	source.mutex.Lock()
	source.stations = []traffic.StationRecord{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	source.trips = nil
	source.mutex.Unlock()
	require.NoError(t, manager.Reload(context.Background()))
	require.NotSame(t, first, manager.Snapshot())

	stale := manager.summarize(first, traffic.Unbounded(), 5)
	assert.Equal(t, 2, stale.Stations)
	assert.Equal(t, 1, stale.Departures)
	assert.Equal(t, first.Report, stale.Report)
	assert.Equal(t, first.LastUpdated, stale.LastUpdated)
	assert.Equal(t, 1, stale.Report.TripsAccepted)

	current := manager.Summary(traffic.Unbounded(), 5)
	assert.Equal(t, 3, current.Stations)
	assert.Zero(t, current.Departures)
	assert.Zero(t, current.Report.TripsAccepted)
}

func TestManagerStartsEmptyWhenFeedFails(t *testing.T) {
	source := &stubSource{}
	source.fail(fmt.Errorf("%w: connection refused", ErrFetchFailed))

	manager, err := InitManager(context.Background(), testConfig(), source, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	defer manager.Shutdown()

	assert.False(t, manager.HasData())
	assert.Empty(t, manager.StationTraffic(traffic.Unbounded()))
	assert.Zero(t, manager.Summary(traffic.Unbounded(), 5).Stations)
	manager.PrintStatistics()
}

func TestManagerReloadFailureKeepsSnapshot(t *testing.T) {
	at := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	source := &stubSource{
		stations: []traffic.StationRecord{{ID: "A"}, {ID: "B"}},
		trips:    []traffic.TripRecord{traffic.NewTrip("A", "B", at, at.Add(10*time.Minute))},
	}

	manager, err := InitManager(context.Background(), testConfig(), source, nil, nil)
	require.NoError(t, err)
	defer manager.Shutdown()
	before := manager.Snapshot()

	source.fail(fmt.Errorf("%w: bad shape", ErrMalformedFeed))
	err = manager.Reload(context.Background())
	assert.ErrorIs(t, err, ErrMalformedFeed)

	assert.True(t, manager.HasData())
	assert.Same(t, before, manager.Snapshot())
	assert.Equal(t, 2, manager.Summary(traffic.Unbounded(), 0).Departures+manager.Summary(traffic.Unbounded(), 0).Arrivals)
}

func TestManagerPeriodicRefreshAndShutdown(t *testing.T) {
	source := &stubSource{stations: []traffic.StationRecord{{ID: "A"}}}
	config := testConfig()
	config.StationsURL = "https://example.invalid/stations.json"
	config.RefreshInterval = 5 * time.Millisecond

	manager, err := InitManager(context.Background(), config, source, nil, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return source.fetches.Load() >= 3 }, time.Second, time.Millisecond)

	manager.Shutdown()
	manager.Shutdown()
	stopped := source.fetches.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, source.fetches.Load())
}

func TestManagerNoRefreshForLocalFiles(t *testing.T) {
	source := &stubSource{}
	config := testConfig()
	config.RefreshInterval = time.Millisecond

	manager, err := InitManager(context.Background(), config, source, nil, nil)
	require.NoError(t, err)
	defer manager.Shutdown()

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), source.fetches.Load())
}
