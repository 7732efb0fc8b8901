package inference

import "errors"

var (
	// ErrNoCredentials is returned before any I/O when no access token is configured.
	ErrNoCredentials = errors.New("inference: no access token configured")
	// ErrTransport wraps network, timeout and cancellation failures.
	ErrTransport = errors.New("inference: transport failure")
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("inference: unexpected status")
	// ErrShape is returned when a response body matches no known shape.
	ErrShape = errors.New("inference: unrecognized response shape")
)
