package modkit

import (
	"net/http"

	"hostdesk/internal/modkit/httpkit"
	str "hostdesk/internal/platform/strings"
)

// Router is re-exported so option call sites only import modkit
type Router = httpkit.Router

// Base implements Module from options, modules embed it
type Base struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
	routes []func(Router)
	ports  any
}

// Build applies opts in order, later options win for scalar fields
func Build(opts ...Option) Base {
	var b Base
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Name panics when no name was set
func (b Base) Name() string { return str.MustString(b.name, "module name") }

// Prefix is the normalized mount path, it panics on an empty prefix
func (b Base) Prefix() string { return str.MustPrefix(b.prefix) }

// Ports returns the value set by WithPorts
func (b Base) Ports() any { return b.ports }

// Middlewares returns a copy of the module scoped middleware
func (b Base) Middlewares() []func(http.Handler) http.Handler {
	return append([]func(http.Handler) http.Handler(nil), b.mw...)
}

// MountRoutes mounts every registration under Prefix behind the module middleware
func (b Base) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, b.Prefix(), b.mw, func(sub httpkit.Router) {
		for _, fn := range b.routes {
			fn(sub)
		}
	})
}
