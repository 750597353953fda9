package bikeshare

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"bikeflow.dev/internal/logging"
	"bikeflow.dev/internal/traffic"
)

var (
	// ErrFetchFailed marks a feed that could not be retrieved at all.
	ErrFetchFailed = errors.New("feed fetch failed")
	// ErrMalformedFeed marks a feed that was retrieved but does not have the expected shape.
	ErrMalformedFeed = errors.New("malformed feed")
)

// SkipUnreadableRow is recorded for CSV rows the reader cannot tokenize.
const SkipUnreadableRow = "unreadable_row"

// Required trip CSV columns.
var tripColumns = []string{"start_station_id", "end_station_id", "started_at", "ended_at"}

// DataSource supplies the station list and the trip list. An empty result is
// not an error; failures wrap ErrFetchFailed or ErrMalformedFeed.
type DataSource interface {
	FetchStations(ctx context.Context) ([]traffic.StationRecord, IngestReport, error)
	FetchTrips(ctx context.Context) ([]traffic.TripRecord, IngestReport, error)
}

// FeedSource reads the station JSON document, the trip CSV document and the
// bike lane GeoJSON documents from http(s) URLs or local file paths.
type FeedSource struct {
	stationsURL string
	tripsURL    string
	laneURLs    []string
	location    *time.Location
	client      *http.Client
	logger      *slog.Logger
}

// NewFeedSource creates a FeedSource for config. Trip timestamps are read in
// config.TimeZone.
func NewFeedSource(config Config, client *http.Client, logger *slog.Logger) (*FeedSource, error) {
	loc, err := config.location()
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", config.TimeZone, err)
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedSource{
		stationsURL: config.StationsURL,
		tripsURL:    config.TripsURL,
		laneURLs:    config.BikeLaneURLs,
		location:    loc,
		client:      client,
		logger:      logger.With(slog.String("component", "bikeshare_feed")),
	}, nil
}

func (s *FeedSource) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("%w: reading local file %s: %v", ErrFetchFailed, source, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", ErrFetchFailed, source, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading %s: %v", ErrFetchFailed, source, err)
	}
	if resp.StatusCode != http.StatusOK {
		logging.SafeCloseWithLogging(resp.Body, s.logger, "feed_response_body", slog.String("source", source))
		return nil, fmt.Errorf("%w: downloading %s: unexpected status %s", ErrFetchFailed, source, resp.Status)
	}
	return resp.Body, nil
}

type stationsDocument struct {
	Data *struct {
		Stations []rawStation `json:"stations"`
	} `json:"data"`
}

type rawStation struct {
	ShortName any    `json:"short_name"`
	Name      string `json:"name"`
	Lat       any    `json:"lat"`
	Lon       any    `json:"lon"`
}

// FetchStations loads the station document. Stations without a short_name or
// with unusable coordinates are skipped and counted.
func (s *FeedSource) FetchStations(ctx context.Context) (stations []traffic.StationRecord, report IngestReport, err error) {
	body, err := s.open(ctx, s.stationsURL)
	if err != nil {
		return nil, IngestReport{}, err
	}
	defer logging.HandleDeferredError(&err, body.Close, s.logger, "close_stations_feed")

	return decodeStations(body)
}

func decodeStations(r io.Reader) ([]traffic.StationRecord, IngestReport, error) {
	report := newIngestReport()

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc stationsDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, report, fmt.Errorf("%w: decoding stations: %v", ErrMalformedFeed, err)
	}
	if doc.Data == nil || doc.Data.Stations == nil {
		return nil, report, fmt.Errorf("%w: stations document has no data.stations list", ErrMalformedFeed)
	}

	stations := make([]traffic.StationRecord, 0, len(doc.Data.Stations))
	for _, raw := range doc.Data.Stations {
		report.StationsRead++

		id := toString(raw.ShortName)
		if id == "" {
			report.skipStation(SkipMissingShortName)
			continue
		}
		lat, latErr := toFloat(raw.Lat)
		lon, lonErr := toFloat(raw.Lon)
		if latErr != nil || lonErr != nil || math.Abs(lat) > 90 || math.Abs(lon) > 180 {
			report.skipStation(SkipInvalidCoordinates)
			continue
		}

		stations = append(stations, traffic.StationRecord{
			ID:   id,
			Name: raw.Name,
			Lat:  lat,
			Lon:  lon,
		})
	}
	return stations, report, nil
}

// FetchTrips loads the trip CSV. A missing required column rejects the whole
// document; bad rows are skipped and counted by reason.
func (s *FeedSource) FetchTrips(ctx context.Context) (trips []traffic.TripRecord, report IngestReport, err error) {
	body, err := s.open(ctx, s.tripsURL)
	if err != nil {
		return nil, IngestReport{}, err
	}
	defer logging.HandleDeferredError(&err, body.Close, s.logger, "close_trips_feed")

	return decodeTrips(ctx, body, s.location)
}

func decodeTrips(ctx context.Context, r io.Reader, loc *time.Location) ([]traffic.TripRecord, IngestReport, error) {
	report := newIngestReport()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, report, fmt.Errorf("%w: trips document is empty", ErrMalformedFeed)
	}
	if err != nil {
		return nil, report, fmt.Errorf("%w: reading trips header: %v", ErrMalformedFeed, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[strings.ToLower(name)] = i
	}
	positions := make([]int, len(tripColumns))
	width := 0
	for i, name := range tripColumns {
		pos, ok := columns[name]
		if !ok {
			return nil, report, fmt.Errorf("%w: trips header is missing column %q", ErrMalformedFeed, name)
		}
		positions[i] = pos
		if pos+1 > width {
			width = pos + 1
		}
	}

	var trips []traffic.TripRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			report.TripsRead++
			report.skipTrip(SkipUnreadableRow)
			continue
		}
		if err != nil {
			return nil, report, fmt.Errorf("%w: reading trips: %v", ErrFetchFailed, err)
		}
		report.TripsRead++

		if report.TripsRead%10000 == 0 && ctx.Err() != nil {
			return nil, report, ctx.Err()
		}

		if len(record) < width {
			report.skipTrip(SkipShortRow)
			continue
		}

		trip, err := traffic.ParseTrip(
			record[positions[0]],
			record[positions[1]],
			record[positions[2]],
			record[positions[3]],
			loc,
		)
		if err != nil {
			report.skipTrip(skipReasonFor(err))
			continue
		}

		trips = append(trips, trip)
		report.TripsAccepted++
	}
	return trips, report, nil
}

func skipReasonFor(err error) string {
	var tripErr *traffic.TripParseError
	if !errors.As(err, &tripErr) {
		return SkipUnreadableRow
	}
	switch tripErr.Field {
	case "started_at":
		return SkipInvalidStartedAt
	case "ended_at":
		return SkipInvalidEndedAt
	default:
		return SkipMissingStationID
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	case float64:
		return t, nil
	default:
		return 0, errors.New("not a number")
	}
}
