package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/schem-safety/permit-cli/internal/catalog"
	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/pkg/retrieval"
)

// Per-tier result caps and the hard cap on the fused evidence set.
const (
	hazardCap     = 2
	internalCap   = 2
	regulatoryCap = 3
	fusedCap      = 6
)

// retrievalTopK is how many candidates each sub-query requests before
// tier-level filtering and truncation.
const retrievalTopK = 4

// internalProcedureQuery targets the organization's internal safety-
// procedure corpus; it is issued on every request.
const internalProcedureQuery = "S-Chem safety regulation internal work permit procedure"

// confinedSpaceIndicators select the specialized regulatory query.
var confinedSpaceIndicators = []string{"tank", "enclosed space", "cleaning", "manhole"}

// sentinelEvidence is returned when every sub-query comes back empty.
var sentinelEvidence = model.EvidenceItem{
	SourceID: "no-results",
	Content:  "no matching regulation found",
	Tier:     model.TierRegulatory,
}

// Retriever issues the tiered retrieval queries and fuses their results
// into a bounded, deduplicated, priority-ordered evidence set.
type Retriever struct {
	search  retrieval.Client
	catalog *catalog.Catalog
}

// NewRetriever creates the retrieval stage.
func NewRetriever(search retrieval.Client, cat *catalog.Catalog) *Retriever {
	return &Retriever{search: search, catalog: cat}
}

// Gather runs the three tier queries and fuses the results. An empty fused
// set degrades to a sentinel item, never to an empty sequence.
func (r *Retriever) Gather(ctx context.Context, state *model.WorkflowState) (model.Update, error) {
	fullContext := state.Context()
	queries := r.buildQueries(fullContext, state.UserInput)

	// The sub-queries are independent and read-only, so they run
	// concurrently. Fusion order is fixed by the queries slice, not by
	// completion order.
	results := make([][]retrieval.Document, len(queries))
	g, gCtx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			docs, err := r.search.Search(gCtx, q.Text, retrievalTopK)
			if err != nil {
				return err
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Update{}, err
	}

	var combined []model.EvidenceItem
	for i, q := range queries {
		combined = append(combined, tierItems(q, results[i], r.detectedChem(fullContext))...)
	}

	fused := fuse(combined)
	if len(fused) == 0 {
		fused = []model.EvidenceItem{sentinelEvidence}
	}

	zap.L().Info("retrieve: evidence fused",
		zap.Int("queries", len(queries)),
		zap.Int("fused", len(fused)),
	)
	return model.Update{Evidence: fused}, nil
}

func (r *Retriever) detectedChem(fullContext string) string {
	return r.catalog.Detect(fullContext)
}

// buildQueries assembles the tier queries in fusion priority order. The
// hazard query exists only when a catalog substance is detected; the other
// two are always issued.
func (r *Retriever) buildQueries(fullContext, userInput string) []model.RetrievalQuery {
	var queries []model.RetrievalQuery

	if chem := r.catalog.Detect(fullContext); chem != "" {
		zap.L().Info("retrieve: catalog substance detected", zap.String("substance", chem))
		queries = append(queries, model.RetrievalQuery{
			Text:      chem + " MSDS material safety data sheet warning label",
			Tier:      model.TierHazard,
			ResultCap: hazardCap,
		})
	}

	queries = append(queries, model.RetrievalQuery{
		Text:      internalProcedureQuery,
		Tier:      model.TierInternal,
		ResultCap: internalCap,
	})

	regulatory := "industrial safety and health act regulation " + userInput
	if containsAny(fullContext, confinedSpaceIndicators) {
		regulatory = "confined space work program technical guideline " + userInput
	}
	queries = append(queries, model.RetrievalQuery{
		Text:      regulatory,
		Tier:      model.TierRegulatory,
		ResultCap: regulatoryCap,
	})

	return queries
}

// tierItems converts one query's raw results into evidence items, applying
// the hazard-tier filename filter and the tier cap.
func tierItems(q model.RetrievalQuery, docs []retrieval.Document, chem string) []model.EvidenceItem {
	var items []model.EvidenceItem
	for _, doc := range docs {
		// Hazard-sheet results must name the detected substance in
		// their source id; off-topic sheets are dropped.
		if q.Tier == model.TierHazard && !strings.Contains(doc.SourceID, chem) {
			continue
		}
		items = append(items, model.EvidenceItem{
			SourceID: doc.SourceID,
			Content:  doc.Content,
			Tier:     q.Tier,
		})
		if len(items) == q.ResultCap {
			break
		}
	}
	return items
}

// fuse deduplicates by source id keeping the first occurrence, then
// truncates to the hard cap. Input order is tier priority order, so a
// later duplicate loses even when it ranked higher in its own query.
func fuse(items []model.EvidenceItem) []model.EvidenceItem {
	seen := make(map[string]struct{}, len(items))
	var fused []model.EvidenceItem
	for _, item := range items {
		if _, dup := seen[item.SourceID]; dup {
			continue
		}
		seen[item.SourceID] = struct{}{}
		fused = append(fused, item)
		if len(fused) == fusedCap {
			break
		}
	}
	return fused
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
