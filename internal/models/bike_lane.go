package models

import "bikeflow.dev/internal/mapview"

// LaneStyle is the line paint shared by every lane of the overlay.
type LaneStyle struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

// DefaultLaneStyle is a translucent green line three pixels wide.
func DefaultLaneStyle() LaneStyle {
	return LaneStyle{Color: "#5bb450", Width: 3, Opacity: 0.4}
}

// EncodedPolyline is one lane path in encoded polyline format.
type EncodedPolyline struct {
	Points string `json:"points"`
	Length int    `json:"length"`
	Levels string `json:"levels"`
}

type BikeLane struct {
	ID        string            `json:"id"`
	Source    string            `json:"source"`
	Name      string            `json:"name"`
	Polylines []EncodedPolyline `json:"polylines"`
}

// BikeLanesData is the lane overlay. Bounds is set when the list was clipped
// to a viewport.
type BikeLanesData struct {
	Style      LaneStyle       `json:"style"`
	Bounds     *mapview.Bounds `json:"bounds,omitempty"`
	List       []BikeLane      `json:"list"`
	References ReferencesModel `json:"references"`
}
