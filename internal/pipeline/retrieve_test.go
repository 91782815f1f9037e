package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schem-safety/permit-cli/internal/catalog"
	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/pkg/retrieval"
)

func docs(ids ...string) []retrieval.Document {
	out := make([]retrieval.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, retrieval.Document{SourceID: id, Content: "content of " + id})
	}
	return out
}

func queryContaining(sub string) any {
	return mock.MatchedBy(func(q string) bool {
		return len(q) >= len(sub) && containsAny(q, []string{sub})
	})
}

func TestGather_HazardDetectedAndFiltered(t *testing.T) {
	search := &mockSearch{}
	// Hazard query returns one on-topic and one off-topic sheet.
	search.On("Search", mock.Anything, queryContaining("toluene MSDS"), retrievalTopK).
		Return(docs("toluene_msds.pdf", "xylene_msds.pdf"), nil)
	search.On("Search", mock.Anything, queryContaining(internalProcedureQuery), retrievalTopK).
		Return(docs("schem_regulation_v2.pdf"), nil)
	search.On("Search", mock.Anything, queryContaining("confined space"), retrievalTopK).
		Return(docs("confined_space_guideline.pdf"), nil)

	r := NewRetriever(search, catalog.Default())
	state := &model.WorkflowState{UserInput: "tank cleaning, toluene, confined space"}

	update, err := r.Gather(context.Background(), state)
	require.NoError(t, err)

	ids := make([]string, 0, len(update.Evidence))
	for _, e := range update.Evidence {
		ids = append(ids, e.SourceID)
	}
	assert.Equal(t, []string{"toluene_msds.pdf", "schem_regulation_v2.pdf", "confined_space_guideline.pdf"}, ids)
	assert.Equal(t, model.TierHazard, update.Evidence[0].Tier)
	assert.Equal(t, model.TierInternal, update.Evidence[1].Tier)
	assert.Equal(t, model.TierRegulatory, update.Evidence[2].Tier)
}

func TestGather_GeneralRegulatoryQueryWithoutIndicators(t *testing.T) {
	search := &mockSearch{}
	search.On("Search", mock.Anything, queryContaining(internalProcedureQuery), retrievalTopK).
		Return(docs(), nil)
	search.On("Search", mock.Anything, queryContaining("industrial safety and health act"), retrievalTopK).
		Return(docs("general_rules.pdf"), nil)

	r := NewRetriever(search, catalog.Default())
	state := &model.WorkflowState{UserInput: "lamp replacement in office corridor"}

	update, err := r.Gather(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, update.Evidence, 1)
	assert.Equal(t, "general_rules.pdf", update.Evidence[0].SourceID)
	search.AssertNumberOfCalls(t, "Search", 2)
}

func TestGather_TierCapsAndHardCap(t *testing.T) {
	search := &mockSearch{}
	search.On("Search", mock.Anything, queryContaining("toluene MSDS"), retrievalTopK).
		Return(docs("toluene_a.pdf", "toluene_b.pdf", "toluene_c.pdf"), nil)
	search.On("Search", mock.Anything, queryContaining(internalProcedureQuery), retrievalTopK).
		Return(docs("sop_1.pdf", "sop_2.pdf", "sop_3.pdf"), nil)
	search.On("Search", mock.Anything, queryContaining("tank"), retrievalTopK).
		Return(docs("reg_1.pdf", "reg_2.pdf", "reg_3.pdf", "reg_4.pdf"), nil)

	r := NewRetriever(search, catalog.Default())
	state := &model.WorkflowState{UserInput: "toluene tank cleaning"}

	update, err := r.Gather(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, update.Evidence, 6)

	tiers := map[model.Tier]int{}
	for _, e := range update.Evidence {
		tiers[e.Tier]++
	}
	assert.Equal(t, 2, tiers[model.TierHazard])
	assert.Equal(t, 2, tiers[model.TierInternal])
	assert.Equal(t, 2, tiers[model.TierRegulatory]) // third regulatory hit falls to the hard cap
}

func TestGather_DedupKeepsEarliestTier(t *testing.T) {
	search := &mockSearch{}
	search.On("Search", mock.Anything, queryContaining("toluene MSDS"), retrievalTopK).
		Return(docs("toluene_msds.pdf"), nil)
	search.On("Search", mock.Anything, queryContaining(internalProcedureQuery), retrievalTopK).
		Return(docs("toluene_msds.pdf", "sop.pdf"), nil)
	search.On("Search", mock.Anything, queryContaining("tank"), retrievalTopK).
		Return(docs("sop.pdf"), nil)

	r := NewRetriever(search, catalog.Default())
	state := &model.WorkflowState{UserInput: "toluene tank flush"}

	update, err := r.Gather(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, update.Evidence, 2)
	assert.Equal(t, model.TierHazard, update.Evidence[0].Tier)
	assert.Equal(t, model.TierInternal, update.Evidence[1].Tier)
}

func TestGather_EmptyResultsYieldSentinel(t *testing.T) {
	search := &mockSearch{}
	search.On("Search", mock.Anything, mock.Anything, retrievalTopK).Return(docs(), nil)

	r := NewRetriever(search, catalog.Default())
	state := &model.WorkflowState{UserInput: "umbrella inspection"}

	update, err := r.Gather(context.Background(), state)
	require.NoError(t, err)
	require.Len(t, update.Evidence, 1)
	assert.Equal(t, "no-results", update.Evidence[0].SourceID)
	assert.Contains(t, update.Evidence[0].Content, "no matching regulation found")
}

func TestGather_PriorContextFeedsDetection(t *testing.T) {
	search := &mockSearch{}
	search.On("Search", mock.Anything, queryContaining("benzene MSDS"), retrievalTopK).
		Return(docs("benzene_msds.pdf"), nil)
	search.On("Search", mock.Anything, queryContaining(internalProcedureQuery), retrievalTopK).
		Return(docs(), nil)
	search.On("Search", mock.Anything, mock.Anything, retrievalTopK).
		Return(docs(), nil)

	r := NewRetriever(search, catalog.Default())
	state := &model.WorkflowState{
		UserInput:    "same place as before, tomorrow morning",
		PriorContext: "user: benzene line flange replacement in unit 2",
	}

	update, err := r.Gather(context.Background(), state)
	require.NoError(t, err)
	require.NotEmpty(t, update.Evidence)
	assert.Equal(t, "benzene_msds.pdf", update.Evidence[0].SourceID)
}
