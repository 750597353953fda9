package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bikeflow.dev/internal/app"
	"bikeflow.dev/internal/appconf"
	"bikeflow.dev/internal/bikeshare"
	"bikeflow.dev/internal/logging"
	"bikeflow.dev/internal/metrics"
	"bikeflow.dev/internal/restapi"
	"bikeflow.dev/internal/webui"
)

func main() {
	cfg, err := appconf.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := parseFlags(os.Args[1:], &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err)
		os.Exit(1)
	}
}

// parseFlags lets command-line flags override the environment.
func parseFlags(args []string, cfg *appconf.Config) error {
	fs := flag.NewFlagSet("bikeflow", flag.ContinueOnError)

	apiKeys := strings.Join(cfg.ApiKeys, ",")
	bikeLaneURLs := strings.Join(cfg.BikeLaneURLs, ",")

	fs.IntVar(&cfg.Port, "port", cfg.Port, "API server port")
	fs.StringVar(&cfg.EnvName, "env", cfg.EnvName, "Environment (development|test|production)")
	fs.StringVar(&apiKeys, "api-keys", apiKeys, "Comma Separated API Keys (test, etc)")
	fs.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Requests per second allowed for each API key (0 blocks, -1 disables limiting)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.StationsURL, "stations-url", cfg.StationsURL, "URL or path of the station JSON document")
	fs.StringVar(&cfg.TripsURL, "trips-url", cfg.TripsURL, "URL or path of the trip CSV document")
	fs.StringVar(&bikeLaneURLs, "bike-lane-urls", bikeLaneURLs, "Comma Separated URLs or paths of bike lane GeoJSON documents (empty disables the overlay)")
	fs.StringVar(&cfg.TimeZone, "time-zone", cfg.TimeZone, "Time zone trip timestamps are written in")
	fs.DurationVar(&cfg.RefreshInterval, "refresh-interval", cfg.RefreshInterval, "How often remote feeds are reloaded (0 disables)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log ingest statistics")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.ApiKeys = splitList(apiKeys)
	cfg.BikeLaneURLs = splitList(bikeLaneURLs)
	cfg.Env = appconf.EnvFlagToEnvironment(cfg.EnvName)
	return nil
}

// splitList splits a comma separated flag value, dropping blank entries.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func bikeshareConfig(cfg appconf.Config) bikeshare.Config {
	return bikeshare.Config{
		StationsURL:     cfg.StationsURL,
		TripsURL:        cfg.TripsURL,
		BikeLaneURLs:    cfg.BikeLaneURLs,
		TimeZone:        cfg.TimeZone,
		RefreshInterval: cfg.RefreshInterval,
		Verbose:         cfg.Verbose,
	}
}

func run(cfg appconf.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	bsConfig := bikeshareConfig(cfg)
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("loading time zone: %w", err)
	}

	source, err := bikeshare.NewFeedSource(bsConfig, nil, logger)
	if err != nil {
		return err
	}

	manager, err := bikeshare.InitManager(ctx, bsConfig, source, logger, m)
	if err != nil {
		// Keep serving; data endpoints answer 503 until a refresh succeeds.
		logging.LogError(logger, "failed to load bike-share feeds", err)
	}
	defer manager.Shutdown()

	if cfg.Verbose {
		manager.PrintStatistics()
	}

	application := &app.Application{
		Config:          cfg,
		BikeshareConfig: bsConfig,
		Logger:          logger,
		Manager:         manager,
		Metrics:         m,
		Location:        loc,
	}

	api := restapi.NewRestAPI(application)
	defer api.Shutdown()

	router := httprouter.New()
	api.SetRoutes(router)
	restapi.SetMetricsRoute(router, registry)
	webui.SetWebUIRoutes(router, application)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.WithMiddleware(router),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env.String())
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
