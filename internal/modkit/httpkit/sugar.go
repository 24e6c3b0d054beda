package httpkit

import (
	"net/http"

	phttp "hostdesk/internal/platform/net/http"
)

// Get mounts a body-less handler, its result goes out in the envelope
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.Query(h))
}

// PostValid mounts a handler whose T body is bound and validated first
func PostValid[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// PatchJSON is PostValid for PATCH
func PatchJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Patch(path, phttp.JSONHandler(h))
}
