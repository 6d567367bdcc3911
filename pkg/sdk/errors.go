package geodex

import "fmt"

// APIError is a non-2xx reply from the geodex API. Code carries the wire
// error code ("bad_request", "unauthorized", ...); Message is human-readable.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("geodex: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}
