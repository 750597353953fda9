package models

import "bikeflow.dev/internal/traffic"

type Station struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Arrivals       int     `json:"arrivals"`
	Departures     int     `json:"departures"`
	TotalTraffic   int     `json:"totalTraffic"`
	DepartureRatio float64 `json:"departureRatio"`
}

func NewStation(record traffic.StationRecord) Station {
	return Station{
		ID:             record.ID,
		Name:           record.Name,
		Lat:            record.Lat,
		Lon:            record.Lon,
		Arrivals:       record.Arrivals,
		Departures:     record.Departures,
		TotalTraffic:   record.TotalTraffic,
		DepartureRatio: record.DepartureRatio(),
	}
}

func NewStationReference(record traffic.StationRecord) StationReference {
	return StationReference{
		ID:   record.ID,
		Name: record.Name,
		Lat:  record.Lat,
		Lon:  record.Lon,
	}
}

// NearbyStation is a Station found by a location search.
type NearbyStation struct {
	Station
	Distance  float64 `json:"distance"`
	Direction string  `json:"direction"`
}

// StationsData is a station list computed for one window.
type StationsData struct {
	List          []Station       `json:"list"`
	LimitExceeded bool            `json:"limitExceeded"`
	Window        TimeWindowModel `json:"window"`
	References    ReferencesModel `json:"references"`
}

type NearbyStationsData struct {
	List          []NearbyStation `json:"list"`
	LimitExceeded bool            `json:"limitExceeded"`
	Window        TimeWindowModel `json:"window"`
	References    ReferencesModel `json:"references"`
}
