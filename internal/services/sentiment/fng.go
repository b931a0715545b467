// Package sentiment fetches the alternative.me Fear & Greed index.
// The indicator is best-effort: a single attempt, no retry, and callers
// treat any failure as "unknown" rather than aborting the cycle.
package sentiment

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const fngURL = "https://api.alternative.me/fng/?limit=1"

// FNGClient reads the latest Fear & Greed index value.
type FNGClient struct {
	url        string
	httpClient *http.Client
}

func NewFNGClient(timeout time.Duration) *FNGClient {
	return &FNGClient{
		url:        fngURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewFNGClientWithURL is used by tests to point at a stub server.
func NewFNGClientWithURL(url string, timeout time.Duration) *FNGClient {
	c := NewFNGClient(timeout)
	c.url = url
	return c
}

// GetFNG returns the current index value in 0..100.
func (c *FNGClient) GetFNG(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "fng request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read fng response")
	}
	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("fng API returned status %d", resp.StatusCode)
	}

	value := gjson.GetBytes(body, "data.0.value")
	if !value.Exists() {
		return 0, errors.New("fng payload has no value")
	}

	fng := int(value.Int())
	if fng < 0 || fng > 100 {
		return 0, errors.Errorf("fng value out of range: %d", fng)
	}

	return fng, nil
}
