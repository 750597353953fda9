package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for feed loading and traffic queries.
type Metrics struct {
	FeedFetchesTotal   *prometheus.CounterVec
	TripsIngestedTotal *prometheus.CounterVec
	StationsLoaded     prometheus.Gauge
	TripsIndexed       prometheus.Gauge
	BikeLanesLoaded    prometheus.Gauge
	QueriesTotal       *prometheus.CounterVec
	QueryDuration      prometheus.Histogram
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in tests
// to avoid duplicate registration against the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FeedFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikeflow",
			Subsystem: "feed",
			Name:      "fetches_total",
			Help:      "Total number of feed fetches by feed and status.",
		}, []string{"feed", "status"}), // feed: stations, trips, lanes; status: ok, fetch_failed, malformed
		TripsIngestedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikeflow",
			Subsystem: "ingest",
			Name:      "trips_total",
			Help:      "Total number of trip rows read by outcome.",
		}, []string{"status"}), // status: accepted, skipped
		StationsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bikeflow",
			Subsystem: "ingest",
			Name:      "stations_loaded",
			Help:      "Number of stations in the current snapshot.",
		}),
		TripsIndexed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bikeflow",
			Subsystem: "ingest",
			Name:      "trips_indexed",
			Help:      "Number of trips in the current minute bucket index.",
		}),
		BikeLanesLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bikeflow",
			Subsystem: "ingest",
			Name:      "bike_lanes_loaded",
			Help:      "Number of bike lanes in the current overlay.",
		}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikeflow",
			Subsystem: "traffic",
			Name:      "queries_total",
			Help:      "Total number of station traffic queries by window kind.",
		}, []string{"window"}), // window: bounded, unbounded
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bikeflow",
			Subsystem: "traffic",
			Name:      "query_duration_seconds",
			Help:      "Time spent computing station traffic.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

// ObserveQuery records one traffic query. A nil receiver is a no-op.
func (m *Metrics) ObserveQuery(bounded bool, started time.Time) {
	if m == nil {
		return
	}
	window := "unbounded"
	if bounded {
		window = "bounded"
	}
	m.QueriesTotal.WithLabelValues(window).Inc()
	m.QueryDuration.Observe(time.Since(started).Seconds())
}

// ObserveFetch records the outcome of one feed fetch. A nil receiver is a no-op.
func (m *Metrics) ObserveFetch(feed, status string) {
	if m == nil {
		return
	}
	m.FeedFetchesTotal.WithLabelValues(feed, status).Inc()
}

// ObserveSnapshot records the size of a freshly ingested snapshot. A nil receiver is a no-op.
func (m *Metrics) ObserveSnapshot(stations, accepted, skipped int) {
	if m == nil {
		return
	}
	m.StationsLoaded.Set(float64(stations))
	m.TripsIndexed.Set(float64(accepted))
	m.TripsIngestedTotal.WithLabelValues("accepted").Add(float64(accepted))
	m.TripsIngestedTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveLanes records the size of the bike lane overlay. A nil receiver is a no-op.
func (m *Metrics) ObserveLanes(lanes int) {
	if m == nil {
		return
	}
	m.BikeLanesLoaded.Set(float64(lanes))
}
