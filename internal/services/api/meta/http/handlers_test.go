package http

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "hostdesk/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(stdctx.Context) error { return p.err }

func get(t *testing.T, d Deps, path string, out any) int {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return rec.Code
}

func TestReady_Statuses(t *testing.T) {
	tests := []struct {
		name string
		pg   any
		want string
		pgSt string
		code int
	}{
		{name: "ok", pg: pinger{}, want: "ok", pgSt: "ok", code: http.StatusOK},
		{name: "fail", pg: pinger{err: errors.New("refused")}, want: "fail", pgSt: "fail", code: http.StatusServiceUnavailable},
		{name: "skipped", pg: nil, want: "degraded", pgSt: "skipped", code: http.StatusOK},
		{name: "unknown", pg: struct{}{}, want: "degraded", pgSt: "unknown", code: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got ReadyResponse
			if code := get(t, Deps{PG: tc.pg}, "/ready", &got); code != tc.code {
				t.Fatalf("status = %d", code)
			}
			if got.Status != tc.want || len(got.Checks) != 1 || got.Checks[0].Status != tc.pgSt {
				t.Fatalf("ready = %+v", got)
			}
		})
	}
}

func TestHealthAndService(t *testing.T) {
	started := time.Now().Add(-90 * time.Second)
	d := Deps{ServiceName: "hostdesk-api", StartedAt: started}

	var h HealthResponse
	get(t, d, "/health", &h)
	if !h.OK || h.Service != "hostdesk-api" {
		t.Fatalf("health = %+v", h)
	}

	var s ServiceResponse
	get(t, d, "/service", &s)
	if s.Name != "hostdesk-api" || s.Uptime < 89 {
		t.Fatalf("service = %+v", s)
	}

	var v struct {
		Service string `json:"service"`
		Version string `json:"version"`
	}
	get(t, d, "/version", &v)
	if v.Service != "hostdesk-api" || v.Version == "" {
		t.Fatalf("version = %+v", v)
	}
}
