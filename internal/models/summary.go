package models

import (
	"bikeflow.dev/internal/bikeshare"
)

type TrafficSummary struct {
	Window            TimeWindowModel        `json:"window"`
	Stations          int                    `json:"stations"`
	ActiveStations    int                    `json:"activeStations"`
	Departures        int                    `json:"departures"`
	Arrivals          int                    `json:"arrivals"`
	BusiestStationIDs []string               `json:"busiestStationIds"`
	Busiest           []Station              `json:"busiest"`
	Ingest            bikeshare.IngestReport `json:"ingest"`
	LastUpdated       int64                  `json:"lastUpdated"`
}

func NewTrafficSummary(s bikeshare.Summary) TrafficSummary {
	summary := TrafficSummary{
		Window:            NewTimeWindowModel(s.Window),
		Stations:          s.Stations,
		ActiveStations:    s.ActiveStations,
		Departures:        s.Departures,
		Arrivals:          s.Arrivals,
		BusiestStationIDs: make([]string, 0, len(s.Busiest)),
		Busiest:           make([]Station, 0, len(s.Busiest)),
		Ingest:            s.Report,
	}
	for _, station := range s.Busiest {
		summary.BusiestStationIDs = append(summary.BusiestStationIDs, station.ID)
		summary.Busiest = append(summary.Busiest, NewStation(station))
	}
	if !s.LastUpdated.IsZero() {
		summary.LastUpdated = s.LastUpdated.UnixMilli()
	}
	return summary
}
