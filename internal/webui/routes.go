package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"bikeflow.dev/internal/app"
)

// WebUI serves debugging pages that dump the loaded data.
type WebUI struct {
	*app.Application
}

func SetWebUIRoutes(router *httprouter.Router, application *app.Application) {
	webUI := &WebUI{Application: application}
	router.HandlerFunc(http.MethodGet, "/debug/", webUI.debugIndexHandler)
}
