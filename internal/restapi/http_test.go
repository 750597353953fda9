package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"bikeflow.dev/internal/app"
	"bikeflow.dev/internal/appconf"
	"bikeflow.dev/internal/bikeshare"
	"bikeflow.dev/internal/logging"
	"bikeflow.dev/internal/metrics"
	"bikeflow.dev/internal/models"
)

func testLogger() *slog.Logger {
	return logging.NewStructuredLogger(io.Discard, slog.LevelError)
}

// createTestApi creates a RestAPI backed by a manager loaded from the testdata feeds.
func createTestApi(t *testing.T) *RestAPI {
	api, _ := createTestApiWithRegistry(t, appconf.Config{})
	return api
}

func createTestApiWithRegistry(t *testing.T, config appconf.Config) (*RestAPI, *prometheus.Registry) {
	t.Helper()

	bikeshareConfig := bikeshare.Config{
		StationsURL:  models.FixturePath(t, "stations.json"),
		TripsURL:     models.FixturePath(t, "trips.csv"),
		BikeLaneURLs: []string{models.FixturePath(t, "bike_lanes.geojson")},
		TimeZone:     "America/New_York",
	}
	source, err := bikeshare.NewFeedSource(bikeshareConfig, nil, testLogger())
	require.NoError(t, err)

	return createTestApiWithSource(t, config, bikeshareConfig, source)
}

func createTestApiWithSource(t *testing.T, config appconf.Config, bikeshareConfig bikeshare.Config, source bikeshare.DataSource) (*RestAPI, *prometheus.Registry) {
	t.Helper()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// A failed load leaves the manager serving no data, which some tests want.
	manager, _ := bikeshare.InitManager(context.Background(), bikeshareConfig, source, testLogger(), m)
	t.Cleanup(manager.Shutdown)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	config.Env = appconf.EnvFlagToEnvironment("test")
	if config.ApiKeys == nil {
		config.ApiKeys = []string{"test"}
	}
	if config.RateLimit == 0 {
		config.RateLimit = 100
	}

	api := NewRestAPI(&app.Application{
		Config:          config,
		BikeshareConfig: bikeshareConfig,
		Logger:          testLogger(),
		Manager:         manager,
		Metrics:         m,
		Location:        loc,
	})
	t.Cleanup(api.Shutdown)

	return api, registry
}

func newTestServer(api *RestAPI, registry *prometheus.Registry) *httptest.Server {
	router := httprouter.New()
	api.SetRoutes(router)
	if registry != nil {
		SetMetricsRoute(router, registry)
	}
	return httptest.NewServer(api.WithMiddleware(router))
}

// serveAndRetrieveEndpoint sets up a test server, makes a request to the specified endpoint, and returns the response
// and decoded model.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	server := newTestServer(api, nil)
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	return resp, response
}

// serveAndRetrieveFieldErrors requests an endpoint expected to fail validation.
func serveAndRetrieveFieldErrors(t *testing.T, endpoint string) (*http.Response, map[string][]string) {
	api := createTestApi(t)
	server := newTestServer(api, nil)
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body.FieldErrors
}

func dataMap(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "response data should be an object")
	return data
}

func listOf(t *testing.T, model models.ResponseModel) []map[string]interface{} {
	t.Helper()
	raw, ok := dataMap(t, model)["list"].([]interface{})
	require.True(t, ok, "response data should contain a list")

	list := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		list = append(list, item.(map[string]interface{}))
	}
	return list
}

func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	entry, ok := dataMap(t, model)["entry"].(map[string]interface{})
	require.True(t, ok, "response data should contain an entry")
	return entry
}
