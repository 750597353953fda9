package bikeshare

// Skip reasons recorded in IngestReport.SkipReasons.
const (
	SkipMissingShortName    = "missing_short_name"
	SkipInvalidCoordinates  = "invalid_coordinates"
	SkipShortRow            = "short_row"
	SkipMissingStationID    = "missing_station_id"
	SkipInvalidStartedAt    = "invalid_started_at"
	SkipInvalidEndedAt      = "invalid_ended_at"
	SkipMissingGeometry     = "missing_geometry"
	SkipUnsupportedGeometry = "unsupported_geometry"
	SkipInvalidPath         = "invalid_path"
)

// IngestReport counts what was read and what was skipped while loading feeds.
// Malformed rows are skipped and counted rather than aborting the load.
type IngestReport struct {
	StationsRead    int            `json:"stationsRead"`
	StationsSkipped int            `json:"stationsSkipped"`
	TripsRead       int            `json:"tripsRead"`
	TripsAccepted   int            `json:"tripsAccepted"`
	TripsSkipped    int            `json:"tripsSkipped"`
	LanesRead       int            `json:"lanesRead"`
	LanesAccepted   int            `json:"lanesAccepted"`
	LanesSkipped    int            `json:"lanesSkipped"`
	LaneFeedsFailed int            `json:"laneFeedsFailed"`
	SkipReasons     map[string]int `json:"skipReasons"`
}

func newIngestReport() IngestReport {
	return IngestReport{SkipReasons: make(map[string]int)}
}

func (r *IngestReport) skipStation(reason string) {
	r.StationsSkipped++
	r.SkipReasons[reason]++
}

func (r *IngestReport) skipTrip(reason string) {
	r.TripsSkipped++
	r.SkipReasons[reason]++
}

func (r *IngestReport) skipLane(reason string) {
	r.LanesSkipped++
	r.SkipReasons[reason]++
}

// merge folds the counters of other into r.
func (r *IngestReport) merge(other IngestReport) {
	r.StationsRead += other.StationsRead
	r.StationsSkipped += other.StationsSkipped
	r.TripsRead += other.TripsRead
	r.TripsAccepted += other.TripsAccepted
	r.TripsSkipped += other.TripsSkipped
	r.LanesRead += other.LanesRead
	r.LanesAccepted += other.LanesAccepted
	r.LanesSkipped += other.LanesSkipped
	r.LaneFeedsFailed += other.LaneFeedsFailed
	for reason, n := range other.SkipReasons {
		r.SkipReasons[reason] += n
	}
}
