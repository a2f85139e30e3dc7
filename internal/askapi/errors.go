// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package askapi

import (
	"errors"
	"strconv"
)

// ClientError represents an error from the ask client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches any ClientError of the same type, so the sentinels below work
// with errors.Is regardless of message or status.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeStatus
	ErrTypeTimeout
	ErrTypeInvalidResponse
)

// String returns a short name used in log attributes.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeStatus:
		return "status"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is checks. They match any ClientError of the
// same type.
var (
	ErrConnection      = &ClientError{Type: ErrTypeConnection, Message: "cannot reach documentation service"}
	ErrStatus          = &ClientError{Type: ErrTypeStatus, Message: "unexpected status from documentation service"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response"}
)

// TypeOf returns the ErrorType of err, or ErrTypeUnknown when err is not a
// ClientError.
func TypeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

func statusError(op string, code int, status string) *ClientError {
	if status == "" {
		status = strconv.Itoa(code)
	}
	return &ClientError{
		Type:       ErrTypeStatus,
		Message:    op + " failed: " + status,
		StatusCode: code,
	}
}
