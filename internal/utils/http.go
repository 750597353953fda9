package utils

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// ExtractIDFromParams retrieves the "id" route parameter and removes a ".json" suffix.
func ExtractIDFromParams(r *http.Request) string {
	return ExtractParam(r, "id")
}

// ExtractParam retrieves a route parameter from the request context and removes a ".json" suffix.
func ExtractParam(r *http.Request, paramName string) string {
	params := httprouter.ParamsFromContext(r.Context())
	rawID := params.ByName(paramName)
	return strings.TrimSuffix(rawID, ".json")
}
