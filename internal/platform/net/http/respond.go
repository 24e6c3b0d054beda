// Package http holds the chi router seam, the JSON envelope writers and the server
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "hostdesk/internal/platform/net"
)

// Envelope is the body every endpoint writes
type Envelope = pnet.Wire

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return-style handlers produce
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Error returns a response whose status comes from the error code
func Error(err error) Response { return Response{Body: err} }

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if resp.Status == stdhttp.StatusNoContent {
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	}

	reqID := pnet.RequestID(r.Context())
	var (
		status int
		wire   Envelope
	)
	if err, ok := resp.Body.(error); ok && err != nil {
		// the error decides the status, not resp.Status
		status, wire = pnet.Error(err, reqID)
	} else {
		status, wire = pnet.Reply(resp.Status, resp.Body, reqID)
	}
	JSON(w, status, wire)
}
