package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ErrUnavailable marks a tick-status read that failed or returned unparseable
// content. It flags the data point as missing for the current poll; it never
// aborts the polling loop.
var ErrUnavailable = errors.New("tick status unavailable")

// tickResponse is the JSON shape of a tick-status endpoint. The pointer field
// distinguishes an absent field from a zero tick.
type tickResponse struct {
	Tick *uint64 `json:"tick"`
}

// StatusClient reads tick counters from HTTP status endpoints. Every call is
// bounded by the client timeout; a call that exceeds it counts as unavailable
// for that round.
type StatusClient struct {
	client *http.Client
}

// NewStatusClient ...
func NewStatusClient(timeout time.Duration) *StatusClient {
	return &StatusClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Tick fetches the current tick from url. Network errors, non-200 responses,
// truncated bodies and responses without a tick field all come back as
// ErrUnavailable.
func (c *StatusClient) Tick(ctx context.Context, url string) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, ErrUnavailable
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, ErrUnavailable
	}

	var tr tickResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return 0, ErrUnavailable
	}

	if tr.Tick == nil {
		return 0, ErrUnavailable
	}

	return *tr.Tick, nil
}
