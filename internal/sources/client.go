package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nishad/oncotarget/internal/apperrors"
)

// rateLimitedClient wraps an http.Client with a per-adapter token bucket
// so each source self-regulates against its own published rate limits
// without the orchestrator needing to know the per-source policy
// (spec.md §4.3: "adapters are responsible for their own rate limiting").
type rateLimitedClient struct {
	http    *http.Client
	limiter *rate.Limiter
}

func newRateLimitedClient(requestsPerSecond float64, timeout time.Duration) *rateLimitedClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 3
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &rateLimitedClient{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (c *rateLimitedClient) getJSON(ctx context.Context, op apperrors.Op, url string, out interface{}) error {
	body, err := c.get(ctx, op, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.E(op, apperrors.KindParse, err)
	}
	return nil
}

func (c *rateLimitedClient) getXML(ctx context.Context, op apperrors.Op, url string, out interface{}) error {
	body, err := c.get(ctx, op, url)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, out); err != nil {
		return apperrors.E(op, apperrors.KindParse, err)
	}
	return nil
}

func (c *rateLimitedClient) get(ctx context.Context, op apperrors.Op, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.E(op, apperrors.KindCancelled, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.E(op, apperrors.KindValidation, err)
	}
	req.Header.Set("Accept", "application/json, application/xml;q=0.9, */*;q=0.5")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.E(op, apperrors.KindTransientExternal, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.E(op, apperrors.KindTransientExternal, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.E(op, apperrors.KindTransientExternal,
			apperrors.Errorf("%s returned %s: %s", url, resp.Status, truncate(string(body), 200)))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
