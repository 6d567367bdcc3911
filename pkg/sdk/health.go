package geodex

import (
	"context"
	"errors"
	"net/http"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string                 `json:"status"` // "ok", "degraded", "error"
	Checks map[string]HealthCheck `json:"checks"`
}

// HealthCheck is one dependency probe outcome.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health reports the health of the server's dependencies. A 503 reply still
// carries the per-check breakdown, so it is returned alongside the error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		out.Status = "error"
		return out, err
	}
	return out, err
}
