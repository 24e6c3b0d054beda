// Package middleware wraps the chi middleware the api uses and adds the zerolog ones
package middleware

import (
	"net/http"
	"time"

	pstrings "hostdesk/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestID accepts or mints X-Request-Id and stores it on the context
func RequestID() func(http.Handler) http.Handler { return chimw.RequestID }

// RealIP sets RemoteAddr from X-Real-IP or X-Forwarded-For
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// NoCache marks every response uncacheable, pages change with each edit
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// StripSlashes routes /foo/ as /foo
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// Compress gzips/deflates JSON responses at level
func Compress(level int) func(http.Handler) http.Handler {
	c := chimw.NewCompressor(level, "application/json")
	return c.Handler
}

// CORSOptions is the part of go-chi/cors the api configures
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors, empty lists fall back to what the dashboard sends
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "PATCH", "OPTIONS"}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-Id"}),
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
