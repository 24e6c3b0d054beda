package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func header(name string) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			w.Header().Set(name, "1")
			next.ServeHTTP(w, r)
		})
	}
}

func TestAdaptChi_RoutesAndScopedMiddleware(t *testing.T) {
	r := AdaptChi(chi.NewRouter())
	r.Use(header("X-Root"))

	echoSlug := func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		_, _ = w.Write([]byte(req.Method + " " + Param(req, "slug")))
	}
	r.Route("/dashboard", func(sub Router) {
		sub.Use(header("X-Dashboard"))
		if sub.Mux() == nil {
			t.Fatal("sub router Mux is nil")
		}
		sub.Get("/{slug}", echoSlug)
		sub.Post("/{slug}", echoSlug)
		sub.Patch("/{slug}", echoSlug)
	})
	r.Handle("/raw", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusAccepted)
	}))

	for _, method := range []string{"GET", "POST", "PATCH"} {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(method, "/dashboard/opensource", nil))
		if rec.Body.String() != method+" opensource" {
			t.Fatalf("%s body = %q", method, rec.Body.String())
		}
		if rec.Header().Get("X-Root") != "1" || rec.Header().Get("X-Dashboard") != "1" {
			t.Fatalf("%s headers = %v", method, rec.Header())
		}
	}

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest("DELETE", "/raw", nil))
	if rec.Code != stdhttp.StatusAccepted || rec.Header().Get("X-Dashboard") != "" {
		t.Fatalf("raw = %d %v", rec.Code, rec.Header())
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest("DELETE", "/dashboard/opensource", nil))
	if rec.Code != stdhttp.StatusMethodNotAllowed {
		t.Fatalf("unregistered method = %d", rec.Code)
	}
}

func TestParam_Missing(t *testing.T) {
	if got := Param(httptest.NewRequest("GET", "/", nil), "slug"); got != "" {
		t.Fatalf("Param = %q", got)
	}
}
