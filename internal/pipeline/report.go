package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/internal/classify"
	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/pkg/anthropic"
	"github.com/schem-safety/permit-cli/pkg/render"
)

// Reporter consolidates the conversation, writes the hazard narrative,
// renders the permit report, and selects the user-facing decision.
type Reporter struct {
	completion anthropic.Client
	model      string
	renderer   render.Client
}

// NewReporter creates the reporting stage.
func NewReporter(completion anthropic.Client, modelID string, renderer render.Client) *Reporter {
	return &Reporter{completion: completion, model: modelID, renderer: renderer}
}

// Finalize produces the decision message and, when rendering succeeds, the
// report handle. Rendering failure keeps the textual decision.
func (r *Reporter) Finalize(ctx context.Context, state *model.WorkflowState) (model.Update, error) {
	task := r.consolidateTask(ctx, state)

	narrative, err := anthropic.Complete(ctx, r.completion, r.model, narrativePrompt(task, state.Evidence))
	if err != nil {
		return model.Update{}, err
	}

	assessment := state.Assessment
	decision := classify.Message(assessment.Band, assessment.RiskScore)

	update := model.Update{
		DecisionMessage: model.StringPtr(decision),
		Messages:        []string{decision},
	}

	resp, renderErr := r.renderer.Render(ctx, render.RenderRequest{
		RiskScore:   assessment.RiskScore,
		Band:        string(assessment.Band),
		Narrative:   narrative,
		Title:       task,
		Checklist:   checklistFor(task + " " + state.UserInput),
		AccentColor: classify.Color(assessment.Band),
	})
	if renderErr != nil {
		// Non-fatal: the decision stands without a report file.
		zap.L().Warn("report: render failed", zap.Error(renderErr))
		return update, nil
	}
	update.ReportPath = model.StringPtr(resp.Path)

	return update, nil
}

// consolidateTask asks the completion service to fold the transcript into
// one canonical task description, falling back to a literal concatenation
// when the call yields nothing usable.
func (r *Reporter) consolidateTask(ctx context.Context, state *model.WorkflowState) string {
	task, err := anthropic.Complete(ctx, r.completion, r.model, summaryPrompt(state.PriorContext, state.UserInput))
	if err != nil {
		zap.L().Warn("report: task consolidation failed, using raw transcript", zap.Error(err))
		task = ""
	}
	task = strings.TrimSpace(strings.ReplaceAll(task, `"`, ""))
	if task == "" {
		task = strings.TrimSpace(state.PriorContext + " " + state.UserInput)
	}
	return task
}
