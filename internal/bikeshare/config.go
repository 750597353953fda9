package bikeshare

import (
	"strings"
	"time"
)

type Config struct {
	StationsURL string
	TripsURL    string
	// BikeLaneURLs are GeoJSON documents drawn as the lane overlay. Empty
	// turns the overlay off.
	BikeLaneURLs    []string
	TimeZone        string
	RefreshInterval time.Duration
	Verbose         bool
}

// location returns the zone trip timestamps are written in.
func (config Config) location() (*time.Location, error) {
	if config.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(config.TimeZone)
}

func (config Config) periodicRefreshEnabled() bool {
	return config.RefreshInterval > 0 && (isRemote(config.StationsURL) || isRemote(config.TripsURL))
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
