package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagesStub(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-haiku-4-5-20251001",
			"content":     []map[string]any{{"type": "text", "text": text}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
}

func TestCreateMessage(t *testing.T) {
	ts := messagesStub(t, "P: 3\nE: 6\nC: 15")
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	resp, err := c.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 256,
		Messages:  []Message{{Role: "user", Content: "score this"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "P: 3\nE: 6\nC: 15", resp.Text())
	assert.Equal(t, int64(10), resp.Usage.InputTokens)
}

func TestComplete_TrimsWhitespace(t *testing.T) {
	ts := messagesStub(t, "  MISSING: where is the work located?\n")
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL))
	got, err := Complete(context.Background(), c, "claude-haiku-4-5-20251001", "check intent")
	require.NoError(t, err)
	assert.Equal(t, "MISSING: where is the work located?", got)
}
