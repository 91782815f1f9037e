package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/schem-safety/permit-cli/pkg/anthropic"
	"github.com/schem-safety/permit-cli/pkg/render"
	"github.com/schem-safety/permit-cli/pkg/retrieval"
)

// --- Completion mock ---

type mockCompletion struct {
	mock.Mock
}

func (m *mockCompletion) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// textResp wraps plain text as a completion response.
func textResp(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

// --- Retrieval mock ---

type mockSearch struct {
	mock.Mock
}

func (m *mockSearch) Search(ctx context.Context, query string, topK int) ([]retrieval.Document, error) {
	args := m.Called(ctx, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]retrieval.Document), args.Error(1)
}

func (m *mockSearch) IndexDocument(ctx context.Context, doc retrieval.IndexRequest) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// --- Render mock ---

type mockRender struct {
	mock.Mock
}

func (m *mockRender) Render(ctx context.Context, req render.RenderRequest) (*render.RenderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.RenderResponse), args.Error(1)
}
