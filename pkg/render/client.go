// Package render provides a client for the permit-report rendering service.
// Rendering failures are non-fatal to the pipeline; callers keep the
// textual decision and drop the report handle.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/schem-safety/permit-cli/internal/resilience"
)

// Client defines the rendering operation used by the reporting stage.
type Client interface {
	Render(ctx context.Context, req RenderRequest) (*RenderResponse, error)
}

// RenderRequest carries everything the renderer needs for a permit report.
type RenderRequest struct {
	RiskScore   float64  `json:"risk_score"`
	Band        string   `json:"band"`
	Narrative   string   `json:"narrative"`
	Title       string   `json:"title"`
	Checklist   []string `json:"checklist,omitempty"`
	AccentColor string   `json:"accent_color,omitempty"`
}

// RenderResponse holds the handle of the rendered report file.
type RenderResponse struct {
	Path string `json:"path"`
}

// Option configures the render client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetryConfig overrides the default retry behavior.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a render client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		retry:   resilience.DefaultRetryConfig(),
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retry.OnRetry = resilience.RetryLogger("render", "render")
	return c
}

func (c *httpClient) Render(ctx context.Context, req RenderRequest) (*RenderResponse, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "render: marshal request")
	}

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/render", bytes.NewReader(raw))
		if err != nil {
			return nil, eris.Wrap(err, "render: create request")
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, resilience.NewTransientError(err, 0)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "render: read response body")
		}
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("render: status %d: %s", resp.StatusCode, string(b)), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("render: unexpected status %d: %s", resp.StatusCode, string(b))
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}

	var result RenderResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "render: unmarshal response")
	}
	return &result, nil
}
