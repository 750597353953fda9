package appconf

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment is the deployment the server runs in.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the -env flag value to an Environment.
// Unknown values fall back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch env {
	case "test":
		return Test
	case "production":
		return Production
	default:
		return Development
	}
}

// Config holds all the configuration settings for the server. Values come from
// the environment (and an optional .env file) and may be overridden by flags.
// RateLimit is requests per second per API key: 0 blocks every keyed request
// and -1 turns limiting off.
type Config struct {
	Port            int           `env:"BIKEFLOW_PORT" envDefault:"4000" validate:"gt=0,lte=65535"`
	EnvName         string        `env:"BIKEFLOW_ENV" envDefault:"development" validate:"oneof=development test production"`
	Env             Environment
	ApiKeys         []string      `env:"BIKEFLOW_API_KEYS" envDefault:"test" envSeparator:"," validate:"min=1,dive,required"`
	RateLimit       int           `env:"BIKEFLOW_RATE_LIMIT" envDefault:"100" validate:"gte=-1"`
	LogLevel        string        `env:"BIKEFLOW_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	StationsURL     string        `env:"BIKEFLOW_STATIONS_URL" envDefault:"https://dsc-courses.github.io/dsc209r-2025-fa/labs/lab07/data/bluebikes-stations.json" validate:"required"`
	TripsURL        string        `env:"BIKEFLOW_TRIPS_URL" envDefault:"https://dsc-courses.github.io/dsc209r-2025-fa/labs/lab07/data/bluebikes-traffic-2024-03.csv" validate:"required"`
	BikeLaneURLs    []string      `env:"BIKEFLOW_BIKE_LANE_URLS" envDefault:"https://bostonopendata-boston.opendata.arcgis.com/datasets/boston::existing-bike-network-2022.geojson,https://raw.githubusercontent.com/cambridgegis/cambridgegis_data/main/Recreation/Bike_Facilities/RECREATION_BikeFacilities.geojson" envSeparator:"," validate:"dive,required"`
	TimeZone        string        `env:"BIKEFLOW_TIME_ZONE" envDefault:"America/New_York" validate:"required"`
	RefreshInterval time.Duration `env:"BIKEFLOW_REFRESH_INTERVAL" envDefault:"24h" validate:"gte=0"`
	Verbose         bool          `env:"BIKEFLOW_VERBOSE" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.Env = EnvFlagToEnvironment(cfg.EnvName)
	return cfg, nil
}

// Validate checks field constraints and that the time zone can be loaded.
// It also syncs Env with EnvName, since flags set the name.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid configuration: time zone %q: %w", c.TimeZone, err)
	}
	c.Env = EnvFlagToEnvironment(c.EnvName)
	return nil
}
