package anthropic

import (
	"context"
	"strings"
)

// Complete sends a single zero-temperature user prompt and returns the
// response text. The pipeline stages expect deterministic sampling.
func Complete(ctx context.Context, c Client, model, prompt string) (string, error) {
	zero := 0.0
	resp, err := c.CreateMessage(ctx, MessageRequest{
		Model:       model,
		MaxTokens:   1024,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: &zero,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
