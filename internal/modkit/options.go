package modkit

import "net/http"

// Option configures a Base
type Option func(*Base)

// WithName sets the name used in logs
func WithName(name string) Option { return func(b *Base) { b.name = name } }

// WithPrefix sets the mount path under /api/v1
func WithPrefix(prefix string) Option { return func(b *Base) { b.prefix = prefix } }

// WithMiddlewares appends middleware scoped to the module's routes
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Base) { b.mw = append(b.mw, mw...) }
}

// WithRoutes appends route registrations, they run in order on the module router
func WithRoutes(fn ...func(r Router)) Option {
	return func(b *Base) { b.routes = append(b.routes, fn...) }
}

// WithPorts sets what Ports returns
func WithPorts(p any) Option { return func(b *Base) { b.ports = p } }
