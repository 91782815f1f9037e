package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/pkg/anthropic"
)

// IntentGate decides whether a request carries enough information to
// proceed or must come back with a clarifying question.
type IntentGate struct {
	completion anthropic.Client
	model      string
}

// NewIntentGate creates the intake stage.
func NewIntentGate(completion anthropic.Client, modelID string) *IntentGate {
	return &IntentGate{completion: completion, model: modelID}
}

// Evaluate asks the completion service whether the input names a task type
// and a location. A response leading with the MISSING marker short-circuits
// the pipeline with the rest of that line as the clarifying question; an
// empty or malformed response never blocks the request.
func (g *IntentGate) Evaluate(ctx context.Context, state *model.WorkflowState) (model.Update, error) {
	resp, err := anthropic.Complete(ctx, g.completion, g.model, intentPrompt(state.UserInput, state.PriorContext))
	if err != nil {
		return model.Update{}, err
	}

	if question, missing := parseMissing(resp); missing {
		zap.L().Info("gate: insufficient information", zap.String("question", question))
		return model.Update{
			NeedsMoreInfo:      model.BoolPtr(true),
			ClarifyingQuestion: model.StringPtr(question),
			Messages:           []string{question},
		}, nil
	}

	return model.Update{NeedsMoreInfo: model.BoolPtr(false)}, nil
}

// parseMissing applies the prefix reading of the MISSING marker: only a
// response that starts with the marker counts, mentions elsewhere in the
// text do not.
func parseMissing(resp string) (question string, missing bool) {
	if !strings.HasPrefix(resp, missingMarker) {
		return "", false
	}
	rest := strings.TrimPrefix(resp, missingMarker)
	rest = strings.TrimPrefix(rest, ":")
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	question = strings.TrimSpace(rest)
	if question == "" {
		question = "Could you describe the task and where it will take place?"
	}
	return question, true
}
