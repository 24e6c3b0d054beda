package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// chiRouter adapts a chi.Router, root and sub routers alike
type chiRouter struct{ r chi.Router }

// AdaptChi adapts a *chi.Mux to a Router
func AdaptChi(m *chi.Mux) Router { return chiRouter{r: m} }

// Param returns a chi route parameter, empty when absent
func Param(r *http.Request, name string) string { return chi.URLParam(r, name) }

func (c chiRouter) Get(p string, h Handler)   { c.r.Method(http.MethodGet, p, http.HandlerFunc(h)) }
func (c chiRouter) Post(p string, h Handler)  { c.r.Method(http.MethodPost, p, http.HandlerFunc(h)) }
func (c chiRouter) Patch(p string, h Handler) { c.r.Method(http.MethodPatch, p, http.HandlerFunc(h)) }

func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

// Mux returns the wrapped router, a sub router serves only its own routes
func (c chiRouter) Mux() http.Handler { return c.r }
