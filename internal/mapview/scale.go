package mapview

import (
	"math"

	"bikeflow.dev/internal/traffic"
)

// Marker radius ranges in pixels. A bounded window holds far fewer trips, so
// its markers get a larger range to stay readable.
var (
	UnboundedRadiusRange = [2]float64{0, 25}
	WindowedRadiusRange  = [2]float64{3, 50}
)

// RadiusScale maps total traffic to a marker radius so that marker area grows
// linearly with traffic.
type RadiusScale struct {
	domainMax float64
	rangeMin  float64
	rangeMax  float64
}

// NewRadiusScale returns the scale for stations whose busiest total is maxTraffic.
func NewRadiusScale(maxTraffic int, window traffic.TimeWindow) RadiusScale {
	r := UnboundedRadiusRange
	if window.Bounded() {
		r = WindowedRadiusRange
	}
	return RadiusScale{
		domainMax: float64(maxTraffic),
		rangeMin:  r[0],
		rangeMax:  r[1],
	}
}

// Radius returns the marker radius for total. An empty domain maps every
// value to the middle of the range.
func (s RadiusScale) Radius(total int) float64 {
	if s.domainMax <= 0 {
		return (s.rangeMin + s.rangeMax) / 2
	}
	t := math.Sqrt(math.Max(0, float64(total))) / math.Sqrt(s.domainMax)
	return s.rangeMin + t*(s.rangeMax-s.rangeMin)
}

// Range returns the output range of the scale.
func (s RadiusScale) Range() (float64, float64) {
	return s.rangeMin, s.rangeMax
}

// Flow values for marker coloring.
const (
	FlowArrivals   = 0.0
	FlowBalanced   = 0.5
	FlowDepartures = 1.0
)

// Flow quantizes a station's departure ratio into three classes: mostly
// arrivals, balanced, mostly departures.
func Flow(station traffic.StationRecord) float64 {
	ratio := station.DepartureRatio()
	switch {
	case ratio < 1.0/3:
		return FlowArrivals
	case ratio < 2.0/3:
		return FlowBalanced
	default:
		return FlowDepartures
	}
}
