// Package notion publishes triage decisions to the safety team's Notion
// decision log.
package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/schem-safety/permit-cli/internal/model"
)

// Client defines the Notion operations used by this application.
type Client interface {
	PublishDecision(ctx context.Context, dbID string, d model.Decision) error
}

// ClientOption configures the Notion client.
type ClientOption func(*notionClient)

// WithRateLimit overrides the default Notion rate limit (3 req/s).
func WithRateLimit(rps float64) ClientOption {
	return func(c *notionClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// notionClient implements Client by wrapping a *notionapi.Client.
type notionClient struct {
	inner   *notionapi.Client
	limiter *rate.Limiter
}

// NewClient creates a Notion client with the given integration token.
// Calls are throttled to 3 req/s (Notion's published limit).
func NewClient(token string, opts ...ClientOption) Client {
	c := &notionClient{
		inner:   notionapi.NewClient(notionapi.Token(token)),
		limiter: rate.NewLimiter(3, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *notionClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// PublishDecision appends one decision row to the decision-log database.
func (c *notionClient) PublishDecision(ctx context.Context, dbID string, d model.Decision) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "notion: rate limit")
	}

	props := notionapi.Properties{
		"Request": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: d.Input}}},
		},
		"Band": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(d.Band)},
		},
		"Risk Score": notionapi.NumberProperty{Number: d.RiskScore},
		"Decision": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: d.Message}}},
		},
	}
	if d.HazardType != "" {
		props["Hazard Type"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: d.HazardType}}},
		}
	}

	_, err := c.inner.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{DatabaseID: notionapi.DatabaseID(dbID)},
		Properties: props,
	})
	if err != nil {
		return eris.Wrap(err, "notion: publish decision")
	}
	return nil
}
