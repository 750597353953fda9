package bikeshare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"bikeflow.dev/internal/logging"
)

// LaneSource is implemented by a DataSource that can also supply the bike
// lane overlay. The Manager loads lanes only from sources that implement it.
type LaneSource interface {
	FetchBikeLanes(ctx context.Context) ([]BikeLane, IngestReport, error)
}

// BikeLane is one feature of a lane feed. Each path holds {lat, lon} pairs,
// the order polyline encoding expects.
type BikeLane struct {
	ID     string
	Source string
	Name   string
	Paths  [][][]float64
}

// Property keys that name a lane, tried in order. Boston and Cambridge
// publish under different schemas.
var laneNameKeys = []string{"name", "NAME", "Name", "STREET_NAM", "STREET", "Street", "street"}

// Property keys used as the lane id when the feature has no top level id.
var laneIDKeys = []string{"OBJECTID", "FID", "ID", "id"}

type laneDocument struct {
	Type     string        `json:"type"`
	Features []laneFeature `json:"features"`
}

type laneFeature struct {
	ID         any            `json:"id"`
	Properties map[string]any `json:"properties"`
	Geometry   *laneGeometry  `json:"geometry"`
}

type laneGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// FetchBikeLanes loads every configured lane feed. A feed that fails is
// counted in LaneFeedsFailed and its error is joined into the returned error;
// lanes from the other feeds are still returned.
func (s *FeedSource) FetchBikeLanes(ctx context.Context) ([]BikeLane, IngestReport, error) {
	report := newIngestReport()
	var lanes []BikeLane
	var errs []error

	for _, source := range s.laneURLs {
		feedLanes, feedReport, err := s.fetchLaneFeed(ctx, source)
		report.merge(feedReport)
		if err != nil {
			report.LaneFeedsFailed++
			errs = append(errs, fmt.Errorf("lane feed %s: %w", source, err))
			continue
		}
		lanes = append(lanes, feedLanes...)
	}
	return lanes, report, errors.Join(errs...)
}

func (s *FeedSource) fetchLaneFeed(ctx context.Context, source string) (lanes []BikeLane, report IngestReport, err error) {
	body, err := s.open(ctx, source)
	if err != nil {
		return nil, newIngestReport(), err
	}
	defer logging.HandleDeferredError(&err, body.Close, s.logger, "close_lanes_feed")

	return decodeBikeLanes(body, laneSourceName(source))
}

// laneSourceName labels a feed by its file name without extension, so
// ".../existing-bike-network-2022.geojson" becomes "existing-bike-network-2022".
func laneSourceName(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	base := path.Base(strings.ReplaceAll(source, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func decodeBikeLanes(r io.Reader, source string) ([]BikeLane, IngestReport, error) {
	report := newIngestReport()

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc laneDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, report, fmt.Errorf("%w: decoding bike lanes: %v", ErrMalformedFeed, err)
	}
	if doc.Type != "FeatureCollection" {
		return nil, report, fmt.Errorf("%w: bike lane document is %q, not a FeatureCollection", ErrMalformedFeed, doc.Type)
	}

	lanes := make([]BikeLane, 0, len(doc.Features))
	for i, feature := range doc.Features {
		report.LanesRead++

		if feature.Geometry == nil || len(feature.Geometry.Coordinates) == 0 {
			report.skipLane(SkipMissingGeometry)
			continue
		}
		paths, err := lanePaths(feature.Geometry)
		if errors.Is(err, errUnsupportedGeometry) {
			report.skipLane(SkipUnsupportedGeometry)
			continue
		}
		if err != nil || len(paths) == 0 {
			report.skipLane(SkipInvalidPath)
			continue
		}

		lanes = append(lanes, BikeLane{
			ID:     source + "_" + laneFeatureID(feature, i),
			Source: source,
			Name:   firstProperty(feature.Properties, laneNameKeys),
			Paths:  paths,
		})
		report.LanesAccepted++
	}
	return lanes, report, nil
}

var errUnsupportedGeometry = errors.New("unsupported geometry")

// lanePaths converts LineString and MultiLineString coordinates from GeoJSON
// [lon, lat] order to {lat, lon}. Lines with an out of range position or
// fewer than two positions are dropped.
func lanePaths(g *laneGeometry) ([][][]float64, error) {
	var lines [][][]float64
	switch g.Type {
	case "LineString":
		var line [][]float64
		if err := json.Unmarshal(g.Coordinates, &line); err != nil {
			return nil, err
		}
		lines = [][][]float64{line}
	case "MultiLineString":
		if err := json.Unmarshal(g.Coordinates, &lines); err != nil {
			return nil, err
		}
	default:
		return nil, errUnsupportedGeometry
	}

	paths := make([][][]float64, 0, len(lines))
	for _, line := range lines {
		if p, ok := convertLine(line); ok {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func convertLine(line [][]float64) ([][]float64, bool) {
	if len(line) < 2 {
		return nil, false
	}
	out := make([][]float64, 0, len(line))
	for _, pos := range line {
		if len(pos) < 2 || math.Abs(pos[0]) > 180 || math.Abs(pos[1]) > 90 {
			return nil, false
		}
		out = append(out, []float64{pos[1], pos[0]})
	}
	return out, true
}

func laneFeatureID(feature laneFeature, index int) string {
	if id := toString(feature.ID); id != "" {
		return id
	}
	if id := firstProperty(feature.Properties, laneIDKeys); id != "" {
		return id
	}
	return fmt.Sprint(index)
}

func firstProperty(props map[string]any, keys []string) string {
	for _, key := range keys {
		if v := toString(props[key]); v != "" {
			return v
		}
	}
	return ""
}
