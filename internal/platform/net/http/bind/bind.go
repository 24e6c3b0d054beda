// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "hostdesk/internal/platform/errors"
	"hostdesk/internal/platform/logger"
	"hostdesk/internal/platform/validate"

	"github.com/go-playground/validator/v10"
)

// Options controls body parsing
type Options struct {
	MaxBytes     int64 // 0 means 1MB
	AllowUnknown bool
}

const defaultMaxBytes = 1 << 20

// ParseJSON decodes one JSON object into T and runs its validate tags
// decode failures are ErrorCodeJSON, tag failures ErrorCodeValidation with the field attached
func ParseJSON[T any](r *http.Request, opts ...Options) (T, error) {
	var zero T
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = defaultMaxBytes
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.C(r.Context()).Warn().Err(err).Msg("close request body")
		}
	}()

	dec := json.NewDecoder(io.LimitReader(r.Body, o.MaxBytes))
	if !o.AllowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, perr.JSONErrf("empty body")
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if err := validate.Get().Validator.Struct(dst); err != nil {
		var inv *validator.InvalidValidationError
		if errors.As(err, &inv) {
			logger.C(r.Context()).Error().Err(inv).Msg("validator misuse")
			return zero, perr.JSONErrf("validation error")
		}
		field, msg := validate.FieldAndMessage(err)
		return zero, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
	}
	return dst, nil
}
