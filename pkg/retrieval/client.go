// Package retrieval provides a client for the document-retrieval service
// that fronts the safety-regulation vector index.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/schem-safety/permit-cli/internal/resilience"
)

// Client defines the retrieval operations used by the pipeline.
type Client interface {
	// Search returns the top-ranked documents for a query. An empty result
	// set is not an error.
	Search(ctx context.Context, query string, topK int) ([]Document, error)
	// IndexDocument submits a source document for indexing. Index
	// construction itself is owned by the retrieval service.
	IndexDocument(ctx context.Context, doc IndexRequest) error
}

// Document is one ranked retrieval result.
type Document struct {
	SourceID string  `json:"source_id"`
	Content  string  `json:"content"`
	Score    float64 `json:"score,omitempty"`
}

// IndexRequest is a source document submitted for indexing.
type IndexRequest struct {
	SourceID string `json:"source_id"`
	Content  string `json:"content"`
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []Document `json:"results"`
}

// Option configures the retrieval client.
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
	apiKey  string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a retrieval client for the service at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		retry:   resilience.DefaultRetryConfig(),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retry.OnRetry = resilience.RetryLogger("retrieval", "post")
	return c
}

// post sends a JSON body and returns the response bytes. Transient HTTP
// statuses are retried with backoff; exhaustion surfaces as a
// ServiceUnavailableError.
func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "retrieval: marshal request")
	}

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
		if err != nil {
			return nil, eris.Wrap(err, "retrieval: create request")
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(err, 0)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "retrieval: read response body")
		}
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				fmt.Errorf("retrieval: status %d: %s", resp.StatusCode, string(b)), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("retrieval: unexpected status %d: %s", resp.StatusCode, string(b))
		}
		return b, nil
	})
	if err != nil {
		if resilience.IsTransient(err) {
			return nil, resilience.Unavailable("retrieval service", err)
		}
		return nil, err
	}
	return body, nil
}

func (c *httpClient) Search(ctx context.Context, query string, topK int) ([]Document, error) {
	body, err := c.post(ctx, "/v1/search", searchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "retrieval: unmarshal response")
	}
	return result.Results, nil
}

func (c *httpClient) IndexDocument(ctx context.Context, doc IndexRequest) error {
	_, err := c.post(ctx, "/v1/index", doc)
	return err
}
