package http

import (
	"net/http"

	"hostdesk/internal/platform/net/http/bind"
)

// JSONHandler binds and validates a T body, then wraps fn's result in the envelope
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Query(func(r *http.Request) (any, error) {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return nil, err
		}
		return fn(r, in)
	})
}

// Query wraps a body-less fn, a returned Response passes through untouched
func Query(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}
