// Package httpkit is what modules import to register routes, chi stays in platform
package httpkit

import (
	"net/http"

	phttp "hostdesk/internal/platform/net/http"
)

// Router is the platform router seam
type Router = phttp.Router

// Response lets a handler pick its own status
type Response = phttp.Response

// Param returns a route parameter, empty when absent
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }
