package bikeshare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"bikeflow.dev/internal/logging"
	"bikeflow.dev/internal/metrics"
	"bikeflow.dev/internal/traffic"
	"bikeflow.dev/internal/utils"
)

// Snapshot is one fully ingested load of both feeds. It is never modified
// after it is published by the Manager.
type Snapshot struct {
	Stations    []traffic.StationRecord
	Index       *traffic.MinuteBucketIndex
	Lanes       []BikeLane
	Report      IngestReport
	LastUpdated time.Time
	byID        map[string]int
}

func newSnapshot(stations []traffic.StationRecord, trips []traffic.TripRecord, report IngestReport, now time.Time) *Snapshot {
	byID := make(map[string]int, len(stations))
	for i, s := range stations {
		byID[s.ID] = i
	}
	return &Snapshot{
		Stations:    stations,
		Index:       traffic.Ingest(trips),
		Report:      report,
		LastUpdated: now,
		byID:        byID,
	}
}

func emptySnapshot() *Snapshot {
	return newSnapshot(nil, nil, newIngestReport(), time.Time{})
}

// Summary describes the traffic in one window across all stations.
type Summary struct {
	Window         traffic.TimeWindow
	Stations       int
	ActiveStations int
	Departures     int
	Arrivals       int
	Busiest        []traffic.StationRecord
	Report         IngestReport
	LastUpdated    time.Time
}

// Manager owns the current snapshot and answers traffic queries against it.
type Manager struct {
	source       DataSource
	config       Config
	logger       *slog.Logger
	metrics      *metrics.Metrics
	snapshot     *Snapshot
	hasData      bool
	mutex        sync.RWMutex
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// InitManager loads both feeds from source and builds the first snapshot. A
// feed failure is logged and leaves the manager serving an empty snapshot; it
// is also returned so the caller can decide whether to continue.
func InitManager(ctx context.Context, config Config, source DataSource, logger *slog.Logger, m *metrics.Metrics) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	manager := &Manager{
		source:       source,
		config:       config,
		logger:       logger.With(slog.String("component", "bikeshare_manager")),
		metrics:      m,
		snapshot:     emptySnapshot(),
		shutdownChan: make(chan struct{}),
	}

	err := manager.Reload(ctx)

	if config.periodicRefreshEnabled() {
		manager.wg.Add(1)
		go manager.refreshPeriodically()
	}

	return manager, err
}

// Reload fetches both feeds and swaps in a new snapshot. On failure the
// current snapshot is kept.
func (manager *Manager) Reload(ctx context.Context) error {
	started := time.Now()

	stations, stationReport, err := manager.source.FetchStations(ctx)
	if err != nil {
		manager.metrics.ObserveFetch("stations", fetchStatus(err))
		logging.LogError(manager.logger, "failed to load stations feed", err,
			slog.String("source", manager.config.StationsURL))
		return fmt.Errorf("loading stations: %w", err)
	}
	manager.metrics.ObserveFetch("stations", "ok")

	trips, tripReport, err := manager.source.FetchTrips(ctx)
	if err != nil {
		manager.metrics.ObserveFetch("trips", fetchStatus(err))
		logging.LogError(manager.logger, "failed to load trips feed", err,
			slog.String("source", manager.config.TripsURL))
		return fmt.Errorf("loading trips: %w", err)
	}
	manager.metrics.ObserveFetch("trips", "ok")

	lanes, laneReport := manager.loadBikeLanes(ctx)

	report := newIngestReport()
	report.merge(stationReport)
	report.merge(tripReport)
	report.merge(laneReport)

	snapshot := newSnapshot(stations, trips, report, time.Now())
	snapshot.Lanes = lanes

	manager.mutex.Lock()
	manager.snapshot = snapshot
	manager.hasData = true
	manager.mutex.Unlock()

	manager.metrics.ObserveSnapshot(len(stations), report.TripsAccepted, report.TripsSkipped)
	manager.metrics.ObserveLanes(len(lanes))
	logging.LogOperation(manager.logger, "bikeshare_snapshot_loaded",
		slog.Int("stations", len(stations)),
		slog.Int("stations_skipped", report.StationsSkipped),
		slog.Int("trips_accepted", report.TripsAccepted),
		slog.Int("trips_skipped", report.TripsSkipped),
		slog.Int("bike_lanes", len(lanes)),
		slog.Int("bike_lanes_skipped", report.LanesSkipped),
		slog.Duration("duration", time.Since(started)))
	if report.TripsSkipped > 0 || report.StationsSkipped > 0 || report.LanesSkipped > 0 {
		manager.logger.Warn("skipped malformed feed rows", slog.Any("skip_reasons", report.SkipReasons))
	}

	return nil
}

// loadBikeLanes fetches the lane overlay when the source provides one. A lane
// feed failure is logged and counted but never fails the reload.
func (manager *Manager) loadBikeLanes(ctx context.Context) ([]BikeLane, IngestReport) {
	source, ok := manager.source.(LaneSource)
	if !ok || len(manager.config.BikeLaneURLs) == 0 {
		return nil, newIngestReport()
	}

	lanes, report, err := source.FetchBikeLanes(ctx)
	if err != nil {
		manager.metrics.ObserveFetch("lanes", fetchStatus(err))
		logging.LogError(manager.logger, "failed to load bike lane feed", err,
			slog.Int("lanes_loaded", len(lanes)),
			slog.Int("feeds_failed", report.LaneFeedsFailed))
		return lanes, report
	}
	manager.metrics.ObserveFetch("lanes", "ok")
	return lanes, report
}

func fetchStatus(err error) string {
	if errors.Is(err, ErrMalformedFeed) {
		return "malformed"
	}
	return "fetch_failed"
}

// refreshPeriodically reloads remote feeds every RefreshInterval until Shutdown.
func (manager *Manager) refreshPeriodically() {
	defer manager.wg.Done()

	ticker := time.NewTicker(manager.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			// Reload logs its own failures and keeps the previous snapshot.
			_ = manager.Reload(ctx)
			cancel()
		case <-manager.shutdownChan:
			manager.logger.Info("shutting down periodic feed refresh")
			return
		}
	}
}

// Shutdown stops the background refresh. It is safe to call more than once.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
	})
}

// Snapshot returns the current snapshot.
func (manager *Manager) Snapshot() *Snapshot {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return manager.snapshot
}

// HasData reports whether at least one load has succeeded.
func (manager *Manager) HasData() bool {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()
	return manager.hasData
}

// Report returns the ingest report of the current snapshot.
func (manager *Manager) Report() IngestReport {
	return manager.Snapshot().Report
}

// StationTraffic returns every station with its traffic for window.
func (manager *Manager) StationTraffic(window traffic.TimeWindow) []traffic.StationRecord {
	return manager.trafficFor(manager.Snapshot(), window)
}

func (manager *Manager) trafficFor(snapshot *Snapshot, window traffic.TimeWindow) []traffic.StationRecord {
	started := time.Now()
	result := snapshot.Index.ComputeStationTraffic(snapshot.Stations, window)
	manager.metrics.ObserveQuery(window.Bounded(), started)
	return result
}

// BikeLanes returns the lane overlay of the current snapshot.
func (manager *Manager) BikeLanes() []BikeLane {
	return manager.Snapshot().Lanes
}

// FindStation returns one station with its traffic for window.
func (manager *Manager) FindStation(id string, window traffic.TimeWindow) (traffic.StationRecord, bool) {
	snapshot := manager.Snapshot()
	i, ok := snapshot.byID[id]
	if !ok {
		return traffic.StationRecord{}, false
	}
	result := snapshot.Index.ComputeStationTraffic(snapshot.Stations[i:i+1], window)
	return result[0], true
}

type stationWithDistance struct {
	station  traffic.StationRecord
	distance float64
}

// StationsNear returns up to maxCount stations within radius meters of
// lat/lon, nearest first, with their traffic for window.
func (manager *Manager) StationsNear(lat, lon, radius float64, maxCount int, window traffic.TimeWindow) []traffic.StationRecord {
	if radius <= 0 {
		radius = 1000
	}

	var candidates []stationWithDistance
	for _, s := range manager.StationTraffic(window) {
		distance := utils.Haversine(lat, lon, s.Lat, s.Lon)
		if distance <= radius {
			candidates = append(candidates, stationWithDistance{s, distance})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	stations := make([]traffic.StationRecord, 0, len(candidates))
	for i := 0; i < len(candidates) && i < maxCount; i++ {
		stations = append(stations, candidates[i].station)
	}
	return stations
}

// Summary aggregates the traffic for window, listing the top busiest stations.
func (manager *Manager) Summary(window traffic.TimeWindow, top int) Summary {
	return manager.summarize(manager.Snapshot(), window, top)
}

// summarize reads counts, report and timestamp from the one snapshot so a
// concurrent Reload cannot mix two loads into a single summary.
func (manager *Manager) summarize(snapshot *Snapshot, window traffic.TimeWindow, top int) Summary {
	stations := manager.trafficFor(snapshot, window)

	summary := Summary{
		Window:      window,
		Stations:    len(stations),
		Report:      snapshot.Report,
		LastUpdated: snapshot.LastUpdated,
	}
	for _, s := range stations {
		summary.Departures += s.Departures
		summary.Arrivals += s.Arrivals
		if s.TotalTraffic > 0 {
			summary.ActiveStations++
		}
	}

	ranked := make([]traffic.StationRecord, len(stations))
	copy(ranked, stations)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalTraffic > ranked[j].TotalTraffic
	})
	if top > len(ranked) {
		top = len(ranked)
	}
	if top < 0 {
		top = 0
	}
	summary.Busiest = ranked[:top]
	return summary
}

// PrintStatistics logs the size of the current snapshot.
func (manager *Manager) PrintStatistics() {
	snapshot := manager.Snapshot()
	logging.LogOperation(manager.logger, "bikeshare_statistics",
		slog.String("stations_source", manager.config.StationsURL),
		slog.String("trips_source", manager.config.TripsURL),
		slog.Time("last_updated", snapshot.LastUpdated),
		slog.Int("stations", len(snapshot.Stations)),
		slog.Int("trips", snapshot.Index.Len()),
		slog.Int("bike_lanes", len(snapshot.Lanes)))
}
