package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/internal/catalog"
	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/internal/pipeline"
	"github.com/schem-safety/permit-cli/internal/store"
	anthropicpkg "github.com/schem-safety/permit-cli/pkg/anthropic"
	"github.com/schem-safety/permit-cli/pkg/notion"
	"github.com/schem-safety/permit-cli/pkg/render"
	"github.com/schem-safety/permit-cli/pkg/retrieval"
)

// triageEnv holds the store, clients, and engine needed by the triage,
// serve, and decisions commands.
type triageEnv struct {
	Store  store.Store
	Engine *pipeline.Engine
	Notion notion.Client // nil when no token is configured
}

// Close releases resources held by the triage environment.
func (te *triageEnv) Close() {
	if te.Store != nil {
		_ = te.Store.Close()
	}
}

// initTriage sets up the store, all service clients, the substance
// catalog, and the pipeline engine. Callers should defer env.Close().
func initTriage(ctx context.Context) (*triageEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("PERMIT_ANTHROPIC_KEY is required")
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load substance catalog")
		}
		zap.L().Info("substance catalog loaded",
			zap.String("path", cfg.Catalog.Path),
			zap.Int("substances", len(cat.Substances())))
	}

	completion := anthropicpkg.NewClient(cfg.Anthropic.Key,
		anthropicpkg.WithRateLimit(cfg.Anthropic.RequestsPerSec, 1))
	search := retrieval.NewClient(cfg.Retrieval.BaseURL, cfg.Retrieval.Key)
	renderer := render.NewClient(cfg.Render.BaseURL)

	var notionClient notion.Client
	if cfg.Notion.Token != "" && cfg.Notion.DecisionDB != "" {
		notionClient = notion.NewClient(cfg.Notion.Token)
		zap.L().Info("notion decision log enabled")
	}

	engine := pipeline.New(
		pipeline.NewIntentGate(completion, cfg.Anthropic.Model),
		pipeline.NewRetriever(search, cat),
		pipeline.NewScorer(completion, cfg.Anthropic.Model),
		pipeline.NewReporter(completion, cfg.Anthropic.Model, renderer),
	)

	return &triageEnv{Store: st, Engine: engine, Notion: notionClient}, nil
}

// decisionFromState builds the persisted decision record for a completed
// triage run.
func decisionFromState(final model.WorkflowState) *model.Decision {
	d := &model.Decision{
		Input:      final.UserInput,
		Transcript: final.Context(),
		Message:    final.DecisionMessage,
		ReportPath: final.ReportPath,
	}
	if final.Assessment != nil {
		d.Band = final.Assessment.Band
		d.RiskScore = final.Assessment.RiskScore
		d.HazardType = final.Assessment.HazardType
	}
	return d
}

// publishDecision mirrors the decision to the Notion log. Failures are
// logged, not fatal: the store is the system of record.
func publishDecision(ctx context.Context, env *triageEnv, d *model.Decision) {
	if env.Notion == nil {
		return
	}
	if err := env.Notion.PublishDecision(ctx, cfg.Notion.DecisionDB, *d); err != nil {
		zap.L().Warn("notion publish failed", zap.String("decision_id", d.ID), zap.Error(err))
	}
}
