package elevation

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled while
	// waiting between attempts or before an uncached call.
	ErrContextCancelled = errors.New("context cancelled")
)

// CardinalityError reports that the total number of elevation results
// returned across all batches does not match the number of coordinate pairs
// requested. It is the single authoritative failure gate of a fetch: failed
// batches contribute zero results and surface here.
type CardinalityError struct {
	Requested int
	Received  int
}

// Error implements the error interface.
func (e *CardinalityError) Error() string {
	return fmt.Sprintf("requested %d elevations but received %d results", e.Requested, e.Received)
}

// HTTPStatusError reports a non-200 HTTP response from the elevation
// endpoint.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("elevation endpoint responded with %s", e.Status)
}

// APIStatusError reports a response body whose status field is not "OK",
// which the elevation API uses to signal request-level problems (invalid key,
// over quota) inside a 200 response.
type APIStatusError struct {
	Status string
}

// Error implements the error interface.
func (e *APIStatusError) Error() string {
	return fmt.Sprintf("elevation API returned status %q", e.Status)
}
