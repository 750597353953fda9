package traffic

import (
	"errors"
	"fmt"
)

const (
	// MinutesPerDay is the length of every minute-of-day container.
	MinutesPerDay = 24 * 60

	// WindowRadius is the half-width of a bounded window, in minutes.
	WindowRadius = 60

	// SliderUnbounded is the time control value meaning "any time".
	SliderUnbounded = -1
)

// ErrMinuteOutOfRange is returned for minute-of-day values outside [0, MinutesPerDay).
var ErrMinuteOutOfRange = errors.New("minute of day out of range")

// TimeWindow selects either every trip or the trips within WindowRadius minutes
// of a minute-of-day. The zero value is the unbounded window.
type TimeWindow struct {
	minute  int
	bounded bool
}

// Unbounded returns the window covering the whole day.
func Unbounded() TimeWindow {
	return TimeWindow{}
}

// Around returns the ±WindowRadius window centered on minute m.
func Around(m int) (TimeWindow, error) {
	if m < 0 || m >= MinutesPerDay {
		return TimeWindow{}, fmt.Errorf("%w: %d", ErrMinuteOutOfRange, m)
	}
	return TimeWindow{minute: m, bounded: true}, nil
}

// WindowFromSlider converts a time control value in [-1, 1439] to a window.
func WindowFromSlider(value int) (TimeWindow, error) {
	if value == SliderUnbounded {
		return Unbounded(), nil
	}
	return Around(value)
}

// Bounded reports whether the window is limited to a band of the day.
func (w TimeWindow) Bounded() bool {
	return w.bounded
}

// Minute returns the window center, or SliderUnbounded for the unbounded window.
func (w TimeWindow) Minute() int {
	if !w.bounded {
		return SliderUnbounded
	}
	return w.minute
}

// Ranges returns the half-open bucket ranges covered by the window in the order
// they are read. A wrapping window yields [lo, 1440) followed by [0, hi).
func (w TimeWindow) Ranges() [][2]int {
	if !w.bounded {
		return [][2]int{{0, MinutesPerDay}}
	}

	lo := (w.minute - WindowRadius + MinutesPerDay) % MinutesPerDay
	hi := (w.minute + WindowRadius) % MinutesPerDay
	if lo <= hi {
		return [][2]int{{lo, hi}}
	}
	return [][2]int{{lo, MinutesPerDay}, {0, hi}}
}

// Contains reports whether minute m falls in one of the window's buckets.
func (w TimeWindow) Contains(m int) bool {
	for _, r := range w.Ranges() {
		if m >= r[0] && m < r[1] {
			return true
		}
	}
	return false
}

// String renders the window the way the time control labels it.
func (w TimeWindow) String() string {
	if !w.bounded {
		return "(any time)"
	}
	return FormatMinute(w.minute)
}

// FormatMinute renders a minute-of-day as a 12-hour clock time, e.g. "3:05 PM".
func FormatMinute(m int) string {
	m = ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	hour, minute := m/60, m%60

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, suffix)
}
