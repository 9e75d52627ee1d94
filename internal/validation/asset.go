package validation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"murmur/internal/middleware"
)

// AssetChecker verifies that a referenced asset URL is reachable. Writes
// that carry media run this check synchronously, so implementations must
// bound how long they can take.
type AssetChecker interface {
	Check(ctx context.Context, rawURL string) error
}

// HTTPAssetChecker probes asset URLs with a GET request. Only a 200
// response counts as reachable.
type HTTPAssetChecker struct {
	client *http.Client
}

// NewHTTPAssetChecker returns an HTTPAssetChecker whose probes are bounded
// by the given timeout.
func NewHTTPAssetChecker(timeout time.Duration) *HTTPAssetChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPAssetChecker{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPAssetChecker) Check(ctx context.Context, rawURL string) error {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		middleware.AssetProbeFailures.Inc()
		return fmt.Errorf("URL is not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		middleware.AssetProbeFailures.Inc()
		return fmt.Errorf("URL is not reachable: status %d", resp.StatusCode)
	}
	return nil
}
