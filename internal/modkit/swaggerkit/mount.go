// Package swaggerkit serves the api's OpenAPI doc and the swagger UI
package swaggerkit

import (
	"net/http"

	phttp "hostdesk/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount serves the UI at /api/docs/ and the doc at /api/docs/doc.json when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON("/api/v1"))
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName(instance),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
