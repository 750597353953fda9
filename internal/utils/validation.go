package utils

import (
	"errors"
	"math"
	"regexp"
)

var (
	// Allow alphanumeric, underscore, hyphen, dot - common in station short names
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if !(lat >= -90.0 && lat <= 90.0) {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if !(lon >= -180.0 && lon <= 180.0) {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateRadius validates radius values for location searches
func ValidateRadius(radius float64) error {
	if math.IsNaN(radius) || radius < 0 {
		return errors.New("radius must be non-negative")
	}

	// Docks more than 10km away are not "nearby"
	if radius > 10000 {
		return errors.New("radius too large (max 10000 meters)")
	}

	return nil
}

// ValidateLocationParams validates a complete set of location parameters
func ValidateLocationParams(lat, lon, radius float64) map[string][]string {
	fieldErrors := make(map[string][]string)

	if err := ValidateLatitude(lat); err != nil {
		fieldErrors["lat"] = append(fieldErrors["lat"], err.Error())
	}

	if err := ValidateLongitude(lon); err != nil {
		fieldErrors["lon"] = append(fieldErrors["lon"], err.Error())
	}

	if radius != 0 {
		if err := ValidateRadius(radius); err != nil {
			fieldErrors["radius"] = append(fieldErrors["radius"], err.Error())
		}
	}

	return fieldErrors
}

// ValidateViewportParams validates map viewport dimensions. Zoom is checked
// against [minZoom, maxZoom]; width and height must be positive and at most 8192 pixels.
func ValidateViewportParams(zoom, minZoom, maxZoom float64, width, height int) map[string][]string {
	fieldErrors := make(map[string][]string)

	if !(zoom >= minZoom && zoom <= maxZoom) {
		fieldErrors["zoom"] = append(fieldErrors["zoom"], "zoom out of range")
	}
	if width <= 0 || width > 8192 {
		fieldErrors["width"] = append(fieldErrors["width"], "width must be between 1 and 8192 pixels")
	}
	if height <= 0 || height > 8192 {
		fieldErrors["height"] = append(fieldErrors["height"], "height must be between 1 and 8192 pixels")
	}

	return fieldErrors
}
