package utils

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"bikeflow.dev/internal/traffic"
)

// ParseFloatParam retrieves a float64 value from the provided URL query parameters.
// If the key is not present it returns 0; if the value is invalid or not finite
// (NaN, Inf) it returns 0 and records an error for key in fieldErrors.
func ParseFloatParam(params url.Values, key string, fieldErrors map[string][]string) (float64, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return 0, fieldErrors
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return 0, fieldErrors
	}
	return f, fieldErrors
}

// ParseIntParam is ParseFloatParam for integers, returning defaultValue when
// the key is absent.
func ParseIntParam(params url.Values, key string, defaultValue int, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return defaultValue, fieldErrors
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return defaultValue, fieldErrors
	}
	return i, fieldErrors
}

// ParseTimeWindowParam reads the "time" slider parameter: absent or -1 is the
// unbounded window, 0..1439 a window around that minute of day.
func ParseTimeWindowParam(params url.Values, fieldErrors map[string][]string) (traffic.TimeWindow, map[string][]string) {
	minute, fieldErrors := ParseIntParam(params, "time", traffic.SliderUnbounded, fieldErrors)
	if len(fieldErrors["time"]) > 0 {
		return traffic.Unbounded(), fieldErrors
	}

	window, err := traffic.WindowFromSlider(minute)
	if err != nil {
		fieldErrors["time"] = append(fieldErrors["time"], "time must be -1 or a minute of day between 0 and 1439")
		return traffic.Unbounded(), fieldErrors
	}
	return window, fieldErrors
}
