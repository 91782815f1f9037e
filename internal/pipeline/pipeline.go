// Package pipeline implements the work-permit triage pipeline: intake gate,
// evidence retrieval, Fine-Kinney scoring, and reporting, sequenced by a
// fixed-order engine.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/internal/model"
)

// StageFunc is a pure function of the current state producing a partial
// update. Collaborator I/O happens inside stages, never in the engine.
type StageFunc func(ctx context.Context, state *model.WorkflowState) (model.Update, error)

type stageEntry struct {
	id model.Stage
	fn StageFunc
}

// Engine runs the stages in fixed order, applies the merge policy after
// each one, and halts as soon as a stage signals that more information is
// needed. It carries no business logic of its own.
type Engine struct {
	stages []stageEntry
}

// New wires the four stages into an engine. All collaborators are injected
// through the stage constructors; the engine holds no clients.
func New(gate *IntentGate, retriever *Retriever, scorer *Scorer, reporter *Reporter) *Engine {
	return &Engine{stages: []stageEntry{
		{model.StageIntake, gate.Evaluate},
		{model.StageRetrieval, retriever.Gather},
		{model.StageScoring, scorer.Assess},
		{model.StageReporting, reporter.Finalize},
	}}
}

// Run executes the pipeline over the initial state and returns the final
// state. Stage errors abort the run; the insufficient-information signal is
// a terminal outcome, not an error.
func (e *Engine) Run(ctx context.Context, initial model.WorkflowState) (model.WorkflowState, error) {
	state := initial
	log := zap.L().With(zap.String("input", state.UserInput))

	for _, stage := range e.stages {
		start := time.Now()
		update, err := stage.fn(ctx, &state)
		if err != nil {
			return state, eris.Wrapf(err, "pipeline: stage %s", stage.id)
		}
		state.Apply(update)

		log.Info("pipeline: stage complete",
			zap.String("stage", string(stage.id)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)

		if state.NeedsMoreInfo {
			log.Info("pipeline: awaiting more information",
				zap.String("question", state.ClarifyingQuestion),
			)
			break
		}
	}

	return state, nil
}
