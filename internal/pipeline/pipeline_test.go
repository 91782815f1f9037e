package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schem-safety/permit-cli/internal/catalog"
	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/pkg/render"
)

func TestEngine_AppliesUpdatesInOrder(t *testing.T) {
	e := &Engine{stages: []stageEntry{
		{model.StageIntake, func(ctx context.Context, s *model.WorkflowState) (model.Update, error) {
			return model.Update{Messages: []string{"first"}, NeedsMoreInfo: model.BoolPtr(false)}, nil
		}},
		{model.StageRetrieval, func(ctx context.Context, s *model.WorkflowState) (model.Update, error) {
			return model.Update{
				Evidence: []model.EvidenceItem{{SourceID: "a.pdf"}},
				Messages: []string{"second"},
			}, nil
		}},
		{model.StageScoring, func(ctx context.Context, s *model.WorkflowState) (model.Update, error) {
			// Stages see the effects of earlier stages.
			require.Len(t, s.Evidence, 1)
			return model.Update{DecisionMessage: model.StringPtr("done")}, nil
		}},
	}}

	final, err := e.Run(context.Background(), model.WorkflowState{UserInput: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, final.Messages)
	assert.Equal(t, "done", final.DecisionMessage)
}

func TestEngine_HaltsWhenMoreInfoNeeded(t *testing.T) {
	laterRan := false
	e := &Engine{stages: []stageEntry{
		{model.StageIntake, func(ctx context.Context, s *model.WorkflowState) (model.Update, error) {
			return model.Update{
				NeedsMoreInfo:      model.BoolPtr(true),
				ClarifyingQuestion: model.StringPtr("which unit?"),
			}, nil
		}},
		{model.StageRetrieval, func(ctx context.Context, s *model.WorkflowState) (model.Update, error) {
			laterRan = true
			return model.Update{}, nil
		}},
	}}

	final, err := e.Run(context.Background(), model.WorkflowState{UserInput: "x"})
	require.NoError(t, err)
	assert.True(t, final.NeedsMoreInfo)
	assert.Equal(t, "which unit?", final.ClarifyingQuestion)
	assert.False(t, laterRan)
	assert.Empty(t, final.Evidence)
}

func TestEngine_StageErrorAborts(t *testing.T) {
	e := &Engine{stages: []stageEntry{
		{model.StageIntake, func(ctx context.Context, s *model.WorkflowState) (model.Update, error) {
			return model.Update{}, eris.New("completion service unreachable")
		}},
	}}

	_, err := e.Run(context.Background(), model.WorkflowState{UserInput: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage intake")
}

// buildEngine wires the real stages against mocks for a full scenario run.
func buildEngine(completion *mockCompletion, search *mockSearch, renderer *mockRender) *Engine {
	return New(
		NewIntentGate(completion, testModel),
		NewRetriever(search, catalog.Default()),
		NewScorer(completion, testModel),
		NewReporter(completion, testModel, renderer),
	)
}

func TestScenario_TolueneTankCleaning(t *testing.T) {
	completion := &mockCompletion{}
	completion.On("CreateMessage", mock.Anything, mock.Anything).Return(textResp("OK"), nil).Once()
	completion.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResp("P: 6\nE: 3\nC: 15\nHazard Type: solvent vapor exposure"), nil).Once()
	completion.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResp("toluene tank interior cleaning in a confined space"), nil).Once()
	completion.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResp("Confined-space solvent cleaning concentrates vapors..."), nil).Once()

	search := &mockSearch{}
	search.On("Search", mock.Anything, queryContaining("toluene MSDS"), retrievalTopK).
		Return(docs("toluene_msds.pdf"), nil)
	search.On("Search", mock.Anything, queryContaining(internalProcedureQuery), retrievalTopK).
		Return(docs("schem_regulation_v2.pdf"), nil)
	search.On("Search", mock.Anything, queryContaining("confined space work program"), retrievalTopK).
		Return(docs("confined_space_guideline.pdf"), nil)

	renderer := &mockRender{}
	renderer.On("Render", mock.Anything, mock.Anything).
		Return(&render.RenderResponse{Path: "reports/permit_007.pdf"}, nil)

	e := buildEngine(completion, search, renderer)
	final, err := e.Run(context.Background(), model.WorkflowState{
		UserInput: "tank cleaning, toluene, confined space",
	})
	require.NoError(t, err)

	require.Len(t, final.Evidence, 3)
	assert.Equal(t, "toluene_msds.pdf", final.Evidence[0].SourceID)
	require.NotNil(t, final.Assessment)
	assert.Equal(t, 270.0, final.Assessment.RiskScore)
	assert.Equal(t, model.BandHigh, final.Assessment.Band)
	assert.Contains(t, final.DecisionMessage, "REJECTED")
	assert.Equal(t, "reports/permit_007.pdf", final.ReportPath)
	assert.False(t, final.NeedsMoreInfo)
}

func TestScenario_InsufficientInput(t *testing.T) {
	completion := &mockCompletion{}
	completion.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResp("MISSING: what task is planned, and where?"), nil).Once()

	search := &mockSearch{}
	renderer := &mockRender{}

	e := buildEngine(completion, search, renderer)
	final, err := e.Run(context.Background(), model.WorkflowState{UserInput: "tomorrow please"})
	require.NoError(t, err)

	assert.True(t, final.NeedsMoreInfo)
	assert.Equal(t, "what task is planned, and where?", final.ClarifyingQuestion)
	assert.Empty(t, final.Evidence)
	assert.Nil(t, final.Assessment)
	assert.Empty(t, final.DecisionMessage)
	search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestScenario_UnparseableScoringStillDecides(t *testing.T) {
	completion := &mockCompletion{}
	completion.On("CreateMessage", mock.Anything, mock.Anything).Return(textResp("OK"), nil).Once()
	completion.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResp("the assessment cannot be expressed numerically"), nil).Once()
	completion.On("CreateMessage", mock.Anything, mock.Anything).Return(textResp("pump seal replacement"), nil).Once()
	completion.On("CreateMessage", mock.Anything, mock.Anything).Return(textResp("narrative"), nil).Once()

	search := &mockSearch{}
	search.On("Search", mock.Anything, mock.Anything, retrievalTopK).Return(docs("general_rules.pdf"), nil)

	renderer := &mockRender{}
	renderer.On("Render", mock.Anything, mock.Anything).Return(&render.RenderResponse{Path: "p.pdf"}, nil)

	e := buildEngine(completion, search, renderer)
	final, err := e.Run(context.Background(), model.WorkflowState{
		UserInput: "pump seal replacement in unit 1",
	})
	require.NoError(t, err)

	require.NotNil(t, final.Assessment)
	assert.Equal(t, model.BandError, final.Assessment.Band)
	assert.Equal(t, 0.0, final.Assessment.RiskScore)
	assert.NotEmpty(t, final.DecisionMessage)
	assert.Contains(t, final.Messages, degradedSummary)
}
