// Package errors is the structured error every layer returns
// import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for clients, the numbers are on the wire so only append
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable
	ErrorCodeConflict
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
)

type codeInfo struct {
	name   string
	status int
}

var codes = map[ErrorCode]codeInfo{
	ErrorCodeUnknown:         {"unknown", http.StatusInternalServerError},
	ErrorCodePanic:           {"panic", http.StatusInternalServerError},
	ErrorCodeUnavailable:     {"unavailable", http.StatusServiceUnavailable},
	ErrorCodeConflict:        {"conflict", http.StatusConflict},
	ErrorCodeInvalidArgument: {"invalid_argument", http.StatusUnprocessableEntity},
	ErrorCodeValidation:      {"validation", http.StatusBadRequest},
	ErrorCodeJSON:            {"json", http.StatusBadRequest},
	ErrorCodeNotFound:        {"not_found", http.StatusNotFound},
	ErrorCodeDuplicateKey:    {"duplicate_key", http.StatusConflict},
	ErrorCodeDB:              {"db", http.StatusInternalServerError},
}

// String is the log name of c
func (c ErrorCode) String() string {
	if ci, ok := codes[c]; ok {
		return ci.name
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// Status is the http status c maps to, 500 for codes it does not know
func (c ErrorCode) Status() int {
	if ci, ok := codes[c]; ok {
		return ci.status
	}
	return http.StatusInternalServerError
}

// Error carries a client facing message and code over an optional cause
type Error struct {
	cause error
	msg   string
	code  ErrorCode
	field string
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Code is the machine facing classification
func (e *Error) Code() ErrorCode { return e.code }

// Field names the input the error is about, empty when none
func (e *Error) Field() string { return e.field }

// Wire is what clients see of an error, the cause never leaves the process
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// As finds our *Error anywhere in the chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf is ErrorCodeUnknown for foreign errors and nil
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return err != nil && CodeOf(err) == code }

// WireFrom is the zero Wire for nil, foreign errors keep their text under ErrorCodeUnknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return Wire{Code: e.code, Message: e.msg, Field: e.field}
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// HTTP is the status and wire form of err, 200 and a zero Wire for nil
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return CodeOf(err).Status(), WireFrom(err)
}

// WithField returns a copy of err naming field, foreign errors pass through
func WithField(err error, field string) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	c.field = field
	return &c
}

// Root is the innermost error of the chain
func Root(err error) error {
	for err != nil {
		next := stderrs.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return err
}

// Newf builds an *Error with a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap puts code and msg over cause, nil cause still yields an error
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{cause: cause, code: code, msg: msg}
}

func NotFoundf(format string, a ...any) error    { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error  { return Newf(ErrorCodeInvalidArgument, format, a...) }
func Conflictf(format string, a ...any) error    { return Newf(ErrorCodeConflict, format, a...) }
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }
func DBf(format string, a ...any) error          { return Newf(ErrorCodeDB, format, a...) }
func JSONErrf(format string, a ...any) error     { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error    { return Newf(ErrorCodePanic, format, a...) }
