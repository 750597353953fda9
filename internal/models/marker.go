package models

import "bikeflow.dev/internal/mapview"

type Marker struct {
	StationID    string  `json:"stationId"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Radius       float64 `json:"radius"`
	Flow         float64 `json:"flow"`
	TotalTraffic int     `json:"totalTraffic"`
	Visible      bool    `json:"visible"`
}

func NewMarker(m mapview.Marker) Marker {
	return Marker{
		StationID:    m.StationID,
		X:            m.Position.X,
		Y:            m.Position.Y,
		Radius:       m.Radius,
		Flow:         m.Flow,
		TotalTraffic: m.TotalTraffic,
		Visible:      m.Visible,
	}
}

// MarkersData is the marker layer for one viewport and time window.
type MarkersData struct {
	Viewport    mapview.Viewport `json:"viewport"`
	Window      TimeWindowModel  `json:"window"`
	RadiusRange [2]float64       `json:"radiusRange"`
	Visible     int              `json:"visible"`
	List        []Marker         `json:"list"`
	References  ReferencesModel  `json:"references"`
}
