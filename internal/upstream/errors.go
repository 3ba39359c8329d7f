// Package upstream holds the error taxonomy shared by every outbound client
// (AGMARKNET prices, Groq chat) and the single policy that maps those errors
// onto HTTP responses.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrCancelled is returned when the caller's context was cancelled or its
// deadline passed while a request was outstanding.
var ErrCancelled = errors.New("upstream: request cancelled")

// MalformedBody is the Body of an Error raised for a 2xx response whose
// payload does not have the expected shape.
const MalformedBody = "malformed"

// MissingCredentialError reports that a client was built without the API
// credential it needs. It is raised before any network activity.
type MissingCredentialError struct {
	Service string // e.g. "agmarknet"
	Key     string // environment variable the operator should set
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s: missing credential %s", e.Service, e.Key)
}

// Error is a non-2xx response, or a 2xx response with an unusable body.
type Error struct {
	Service string
	Status  int
	Body    string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Service, e.Status, e.Body)
}

// TransportError wraps network-level failures (DNS, connect, reset).
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FromDoError classifies an error returned by http.Client.Do.
// Cancellation and deadline expiry of ctx become ErrCancelled; anything else
// is a TransportError.
func FromDoError(ctx context.Context, service string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", service, ErrCancelled)
	}
	return &TransportError{Service: service, Err: err}
}

// FromResponse builds an Error for a non-2xx response. The body is read
// best-effort: a read failure leaves it empty. limit caps how much is kept.
func FromResponse(service string, resp *http.Response, limit int64) *Error {
	var body string
	if resp.Body != nil {
		if b, err := io.ReadAll(io.LimitReader(resp.Body, limit)); err == nil {
			body = string(b)
		}
	}
	return &Error{Service: service, Status: resp.StatusCode, Body: body}
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// HTTPStatus maps an error from an outbound client onto the status returned
// to our own callers:
//
//	MissingCredentialError -> 500
//	Error, TransportError   -> 502
//	ErrCancelled            -> 504
//	anything else           -> 500
func HTTPStatus(err error) int {
	var missing *MissingCredentialError
	var upErr *Error
	var transport *TransportError
	switch {
	case errors.As(err, &missing):
		return http.StatusInternalServerError
	case errors.Is(err, ErrCancelled):
		return http.StatusGatewayTimeout
	case errors.As(err, &upErr), errors.As(err, &transport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code paired with HTTPStatus.
func Code(err error) string {
	var missing *MissingCredentialError
	var upErr *Error
	var transport *TransportError
	switch {
	case errors.As(err, &missing):
		return "missing_api_key"
	case errors.Is(err, ErrCancelled):
		return "upstream_timeout"
	case errors.As(err, &upErr):
		return "upstream_error"
	case errors.As(err, &transport):
		return "upstream_unreachable"
	default:
		return "server_error"
	}
}
