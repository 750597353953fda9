package traffic

// StationRecord is a dock location plus the traffic computed for the most
// recent window it was queried with.
type StationRecord struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Lon          float64 `json:"lon"`
	Lat          float64 `json:"lat"`
	Arrivals     int     `json:"arrivals"`
	Departures   int     `json:"departures"`
	TotalTraffic int     `json:"totalTraffic"`
}

// Counts holds departure and arrival tallies per station id.
type Counts struct {
	Departures map[string]int
	Arrivals   map[string]int
	// Trips is the number of departures in the window.
	Trips int
}

// CountByStation tallies departures by start station and arrivals by end
// station over w.
func (idx *MinuteBucketIndex) CountByStation(w TimeWindow) Counts {
	c := Counts{
		Departures: make(map[string]int),
		Arrivals:   make(map[string]int),
	}
	idx.each(&idx.departures, w, func(t *TripRecord) {
		c.Departures[t.StartStationID]++
		c.Trips++
	})
	idx.each(&idx.arrivals, w, func(t *TripRecord) {
		c.Arrivals[t.EndStationID]++
	})
	return c
}

// ComputeStationTraffic returns a copy of stations, in the same order, with
// Arrivals, Departures and TotalTraffic set for w. Stations without trips get
// zeros and trips naming unknown stations are ignored. The input slice is not
// modified.
func (idx *MinuteBucketIndex) ComputeStationTraffic(stations []StationRecord, w TimeWindow) []StationRecord {
	counts := idx.CountByStation(w)

	out := make([]StationRecord, len(stations))
	for i, s := range stations {
		s.Arrivals = counts.Arrivals[s.ID]
		s.Departures = counts.Departures[s.ID]
		s.TotalTraffic = s.Arrivals + s.Departures
		out[i] = s
	}
	return out
}

// MaxTraffic returns the largest TotalTraffic in stations, or 0.
func MaxTraffic(stations []StationRecord) int {
	max := 0
	for _, s := range stations {
		if s.TotalTraffic > max {
			max = s.TotalTraffic
		}
	}
	return max
}

// DepartureRatio returns Departures/TotalTraffic, or 0.5 for a station with no traffic.
func (s StationRecord) DepartureRatio() float64 {
	if s.TotalTraffic == 0 {
		return 0.5
	}
	return float64(s.Departures) / float64(s.TotalTraffic)
}
