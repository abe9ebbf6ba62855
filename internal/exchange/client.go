package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// respLimit caps how much of an upstream response body is read; ticker
// dumps for large venues run to a few megabytes.
const respLimit = 16 << 20

// Client is the shared REST plumbing used by every adapter sub-package:
// one base URL, a pooled http.Client, and a token-bucket limiter so polling
// plus user-triggered order-book look-ups stay inside venue rate limits.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client for the given API root. rps bounds outbound
// requests per second; burst allows short spikes (the depth prefetcher
// issues small batches).
func NewClient(baseURL string, rps float64, burst int) *Client {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// GetJSON performs a rate-limited GET against path (joined to the base URL)
// and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("exchange: rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("exchange: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("exchange: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, respLimit))
	if err != nil {
		return fmt.Errorf("exchange: read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("exchange: get %s: status %d: %w", path, resp.StatusCode, domain.ErrUpstream)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("exchange: decode %s: %w", path, err)
	}
	return nil
}
