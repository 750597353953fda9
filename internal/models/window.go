package models

import "bikeflow.dev/internal/traffic"

// TimeWindowModel describes the window a traffic response was computed for.
type TimeWindowModel struct {
	Minute  int      `json:"minute"`
	Bounded bool     `json:"bounded"`
	Label   string   `json:"label"`
	Buckets [][2]int `json:"buckets"`
}

func NewTimeWindowModel(w traffic.TimeWindow) TimeWindowModel {
	return TimeWindowModel{
		Minute:  w.Minute(),
		Bounded: w.Bounded(),
		Label:   w.String(),
		Buckets: w.Ranges(),
	}
}
