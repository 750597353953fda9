package traffic

import (
	"fmt"
	"strings"
	"time"
)

// TripRecord is one ride between two stations. StartMinute and EndMinute are
// the wall-clock minute of day of StartedAt and EndedAt; Ingest recomputes
// them, so only the timestamps need to be set.
type TripRecord struct {
	StartedAt      time.Time
	EndedAt        time.Time
	StartStationID string
	EndStationID   string
	StartMinute    int
	EndMinute      int
}

// TimestampLayouts are tried in order when parsing trip timestamps.
var TimestampLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// TripParseError describes why a trip could not be built.
type TripParseError struct {
	Field string
	Value string
	Err   error
}

func (e *TripParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *TripParseError) Unwrap() error {
	return e.Err
}

// MinuteOfDay returns hour*60+minute of t's wall clock.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// NewTrip builds a TripRecord from already parsed timestamps.
func NewTrip(startStationID, endStationID string, startedAt, endedAt time.Time) TripRecord {
	return TripRecord{
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		StartStationID: startStationID,
		EndStationID:   endStationID,
		StartMinute:    MinuteOfDay(startedAt),
		EndMinute:      MinuteOfDay(endedAt),
	}
}

// ParseTrip builds a TripRecord from raw feed fields. Timestamps are read as
// wall-clock times in loc. Any unparseable field rejects the whole trip.
func ParseTrip(startStationID, endStationID, startedAt, endedAt string, loc *time.Location) (TripRecord, error) {
	startStationID = strings.TrimSpace(startStationID)
	endStationID = strings.TrimSpace(endStationID)
	if startStationID == "" {
		return TripRecord{}, &TripParseError{Field: "start_station_id", Value: startStationID}
	}
	if endStationID == "" {
		return TripRecord{}, &TripParseError{Field: "end_station_id", Value: endStationID}
	}

	start, err := ParseTimestamp(startedAt, loc)
	if err != nil {
		return TripRecord{}, &TripParseError{Field: "started_at", Value: startedAt, Err: err}
	}
	end, err := ParseTimestamp(endedAt, loc)
	if err != nil {
		return TripRecord{}, &TripParseError{Field: "ended_at", Value: endedAt, Err: err}
	}

	return NewTrip(startStationID, endStationID, start, end), nil
}

// ParseTimestamp parses value with the first matching layout in TimestampLayouts.
// Layouts without a zone are interpreted in loc; RFC3339 values are converted to loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	var lastErr error
	for _, layout := range TimestampLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t.In(loc), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
