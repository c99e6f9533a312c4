// Package provider implements the HTTP transport used by balance adapters.
//
// This package contains:
//   - HTTPProvider: JSON REST GET requests over HTTP
//   - ProviderMonitor: latency and error-rate tracking per endpoint
package provider

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse marks a response body that could not be decoded.
var ErrInvalidResponse = errors.New("invalid response")

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}
