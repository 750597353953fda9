package app

import (
	"log/slog"
	"time"

	"bikeflow.dev/internal/appconf"
	"bikeflow.dev/internal/bikeshare"
	"bikeflow.dev/internal/metrics"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config          appconf.Config
	BikeshareConfig bikeshare.Config
	Logger          *slog.Logger
	Manager         *bikeshare.Manager
	Metrics         *metrics.Metrics
	Location        *time.Location
}

// Now returns the current time in the zone trip timestamps are read in, so
// that minute-of-day values line up with the index.
func (app *Application) Now() time.Time {
	if app.Location == nil {
		return time.Now()
	}
	return time.Now().In(app.Location)
}
