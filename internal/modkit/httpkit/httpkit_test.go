package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hostdesk/internal/platform/config"
	phttp "hostdesk/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type editIn struct {
	IsFrozen *bool `json:"is_frozen" validate:"required"`
}

func newAPI(t *testing.T) http.Handler {
	t.Helper()
	mux := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(mux), CommonStack(StackOptions{}), func(api Router) {
		MountUnder(api, "/dashboard", nil, func(r Router) {
			Get(r, "/{slug}/hosted-collectives", func(r *http.Request) (any, error) {
				return map[string]string{"host": Param(r, "slug")}, nil
			})
			PostValid(r, "/{slug}/hosted-collectives/navigate", func(_ *http.Request, in editIn) (any, error) {
				return in, nil
			})
			PatchJSON(r, "/{slug}/hosted-collectives/{id}", func(r *http.Request, in editIn) (any, error) {
				return Response{Status: http.StatusAccepted, Body: Param(r, "id")}, nil
			})
		})
	})
	return mux
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Request-Id", "rid-3")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMountedSugar(t *testing.T) {
	h := newAPI(t)

	rec := do(h, "GET", "/api/v1/dashboard/opensource/hosted-collectives/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d %s", rec.Code, rec.Body.String())
	}
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.RequestID != "rid-3" || env.Data.(map[string]any)["host"] != "opensource" {
		t.Fatalf("envelope = %+v", env)
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Fatal("common stack not applied")
	}

	rec = do(h, "POST", "/api/v1/dashboard/opensource/hosted-collectives/navigate", `{}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"field":"is_frozen"`) {
		t.Fatalf("post = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(h, "PATCH", "/api/v1/dashboard/opensource/hosted-collectives/abc", `{"is_frozen":true}`)
	if rec.Code != http.StatusAccepted || !strings.Contains(rec.Body.String(), `"data":"abc"`) {
		t.Fatalf("patch = %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(h, "GET", "/dashboard/opensource/hosted-collectives", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unversioned path = %d", rec.Code)
	}
}

func TestStackFromConfig(t *testing.T) {
	o := StackFromConfig(config.New().Prefix("CORE_API_"))
	if o.CORSOrigins != nil || o.Timeout != 30*time.Second || o.SlowRequest != 500*time.Millisecond {
		t.Fatalf("defaults = %+v", o)
	}

	t.Setenv("CORE_API_CORS_ORIGINS", "https://admin.example.org, https://ops.example.org")
	t.Setenv("CORE_API_TIMEOUT", "5s")
	o = StackFromConfig(config.New().Prefix("CORE_API_"))
	if len(o.CORSOrigins) != 2 || o.CORSOrigins[1] != "https://ops.example.org" || o.Timeout != 5*time.Second {
		t.Fatalf("overrides = %+v", o)
	}
	if n := len(CommonStack(o)); n != 9 {
		t.Fatalf("stack size = %d", n)
	}
}
