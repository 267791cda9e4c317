package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a failed service call.
type Kind string

const (
	KindNetwork            Kind = "network"
	KindTimeout            Kind = "timeout"
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindServerError        Kind = "server_error"
	KindServiceUnavailable Kind = "service_unavailable"
	KindUnknown            Kind = "unknown"
)

// Error is a classified analysis-service failure. Message holds the
// server-provided text verbatim when the service returned one.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
	return string(e.Kind)
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Transient reports whether the error class is worth retrying.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindServiceUnavailable:
		return true
	}
	return false
}

// KindOf extracts the Kind from an error chain, defaulting to unknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsTransient reports whether err should feed a retry policy.
func IsTransient(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return false
}

// classifyTransport maps a request/transport failure onto the taxonomy.
// No response was received, so the only classes are timeout and network.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, cause: err}
	}
	return &Error{Kind: KindNetwork, cause: err}
}

// classifyStatus maps a non-2xx status onto the taxonomy.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusServiceUnavailable:
		return KindServiceUnavailable
	case status >= 500:
		return KindServerError
	default:
		return KindUnknown
	}
}
