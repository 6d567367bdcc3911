package geodex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// UsageReport is the token usage and budget state for one period.
type UsageReport struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider"`
	PeriodStartMs int64        `json:"period_start_ms"`
	PeriodEndMs   int64        `json:"period_end_ms"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}

// UsageMetrics holds consumption counters.
type UsageMetrics struct {
	Tokens int `json:"tokens"`
}

// BudgetStatus holds the configured limit and what is left of it.
type BudgetStatus struct {
	TokensLimit     int   `json:"tokens_limit"`
	TokensRemaining int   `json:"tokens_remaining"`
	IsExhausted     bool  `json:"is_exhausted"`
	ResetsAtMs      int64 `json:"resets_at_ms"`
}

// Usage periods accepted by the API.
const (
	PeriodDay   = "day"
	PeriodMonth = "month"
	PeriodTotal = "total"
)

// Usage fetches the token usage report for a period (PeriodDay, PeriodMonth
// or PeriodTotal; empty defaults to month on the server).
func (c *Client) Usage(ctx context.Context, period string) (UsageReport, error) {
	path := "/api/v1/usage"
	if period != "" {
		path = fmt.Sprintf("%s?period=%s", path, url.QueryEscape(period))
	}

	var out UsageReport
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}
