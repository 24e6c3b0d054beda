// Package http serves the meta endpoints: liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"hostdesk/internal/core/version"
	"hostdesk/internal/modkit/httpkit"
)

// Pinger is what the readiness probe calls, the store adapter satisfies it
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies, PG may be nil or any value
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
}

// probeTimeout bounds the readiness ping
const probeTimeout = 2 * time.Second

type handlers struct{ deps Deps }

// Register mounts /health, /ready, /version and /service
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck is one dependency probe, Status is ok, fail, skipped or unknown
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse is ok, degraded or fail
type ReadyResponse struct {
	Status string       `json:"status"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse carries uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"`
}

func utc(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.deps.ServiceName, Started: utc(h.deps.StartedAt), Now: utc(time.Now())}, nil
}

func probe(ctx context.Context, name string, dep any) ReadyCheck {
	if dep == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	p, ok := dep.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}

// ready answers 503 when a dependency fails so load balancers drain the node
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	pg := probe(ctx, "pg", h.deps.PG)
	out := ReadyResponse{Status: "ok", Checks: []ReadyCheck{pg}, Now: utc(time.Now())}
	switch pg.Status {
	case "ok":
		return out, nil
	case "fail":
		out.Status = "fail"
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	out.Status = "degraded"
	return out, nil
}

func (h *handlers) version(*http.Request) (any, error) { return version.Info(), nil }

func (h *handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: utc(h.deps.StartedAt),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
	}, nil
}
