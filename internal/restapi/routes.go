package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func validateAPIKey(api *RestAPI, finalHandler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) keyed(handler http.HandlerFunc) http.Handler {
	return api.limit(validateAPIKey(api, handler))
}

// SetRoutes registers the API endpoints on router.
func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/where/current-time.json", api.keyed(api.currentTimeHandler))
	router.Handler(http.MethodGet, "/api/where/stations.json", api.keyed(api.stationsHandler))
	router.Handler(http.MethodGet, "/api/where/station/:id", api.keyed(api.stationHandler))
	router.Handler(http.MethodGet, "/api/where/stations-for-location.json", api.keyed(api.stationsForLocationHandler))
	router.Handler(http.MethodGet, "/api/where/station-markers.json", api.keyed(api.stationMarkersHandler))
	router.Handler(http.MethodGet, "/api/where/traffic-summary.json", api.keyed(api.trafficSummaryHandler))
	router.Handler(http.MethodGet, "/api/where/bike-lanes.json", api.keyed(api.bikeLanesHandler))

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

// SetMetricsRoute exposes the collectors in gatherer at /metrics.
func SetMetricsRoute(router *httprouter.Router, gatherer prometheus.Gatherer) {
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// WithMiddleware applies the middleware shared by every route: request
// logging, security headers, and compression.
func (api *RestAPI) WithMiddleware(handler http.Handler) http.Handler {
	return NewRequestLoggingMiddleware(api.Logger)(api.WithSecurityHeaders(CompressionMiddleware(handler)))
}
