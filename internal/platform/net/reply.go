package net

import (
	"net/http"

	perr "hostdesk/internal/platform/errors"
)

// Wire is the response envelope every transport writes
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Reply builds a success envelope for status, 0 means 200
func Reply(status int, data any, reqID string) (int, Wire) {
	if status == 0 {
		status = http.StatusOK
	}
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
		Data:       data,
	}
}

// Error maps err to its http status and wire form, nil is a plain 200
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return Reply(http.StatusOK, nil, reqID)
	}
	status, w := perr.HTTP(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		Field:      w.Field,
		RequestID:  reqID,
	}
}
