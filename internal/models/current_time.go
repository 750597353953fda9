package models

import (
	"time"

	"bikeflow.dev/internal/traffic"
)

// CurrentTimeModel Current time specific model
type CurrentTimeModel struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
	MinuteOfDay  int    `json:"minuteOfDay"`
	TimeZone     string `json:"timeZone"`
}

// CurrentTimeData Combined data structure for current time endpoint
type CurrentTimeData struct {
	Entry      CurrentTimeModel `json:"entry"`
	References ReferencesModel  `json:"references"`
}

// NewCurrentTimeData reports t as seen in the service time zone. MinuteOfDay
// is the time control value that selects the window around t.
func NewCurrentTimeData(t time.Time) CurrentTimeData {
	return CurrentTimeData{
		Entry: CurrentTimeModel{
			ReadableTime: t.Format(time.RFC3339),
			Time:         t.UnixMilli(),
			MinuteOfDay:  traffic.MinuteOfDay(t),
			TimeZone:     t.Location().String(),
		},
		References: NewEmptyReferences(),
	}
}
