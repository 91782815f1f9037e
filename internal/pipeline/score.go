package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/internal/classify"
	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/pkg/anthropic"
)

// degradedSummary replaces the assessment summary when the scoring text
// yields no usable field.
const degradedSummary = "We are sorry: the risk assessment data could not be extracted for this request."

// Scorer extracts a structured Fine-Kinney assessment from the completion
// service's scoring text and classifies it.
type Scorer struct {
	completion anthropic.Client
	model      string
}

// NewScorer creates the scoring stage.
func NewScorer(completion anthropic.Client, modelID string) *Scorer {
	return &Scorer{completion: completion, model: modelID}
}

// Assess builds the scoring prompt from the task and fused evidence, then
// parses the response. Unparseable text degrades to a zero-score Error
// assessment; the pipeline continues either way.
func (s *Scorer) Assess(ctx context.Context, state *model.WorkflowState) (model.Update, error) {
	resp, err := anthropic.Complete(ctx, s.completion, s.model, scoringPrompt(state.UserInput, state.Evidence))
	if err != nil {
		return model.Update{}, err
	}

	fields, parseErr := parseScoredFields(resp)
	if parseErr != nil {
		zap.L().Warn("score: extraction failed, degrading to error band",
			zap.Error(parseErr),
			zap.String("response", resp),
		)
		return model.Update{
			Assessment: &model.RiskAssessment{Band: model.BandError, HazardType: defaultHazardType},
			Messages:   []string{degradedSummary},
		}, nil
	}

	assessment := &model.RiskAssessment{
		Probability: fields.P,
		Exposure:    fields.E,
		Consequence: fields.C,
		RiskScore:   fields.riskScore(),
		HazardType:  fields.HazardType,
	}
	assessment.Band = classify.Classify(assessment.RiskScore)

	zap.L().Info("score: assessment complete",
		zap.Float64("risk_score", assessment.RiskScore),
		zap.String("band", string(assessment.Band)),
		zap.String("hazard_type", assessment.HazardType),
	)
	return model.Update{
		Assessment: assessment,
		Messages:   []string{assessmentSummary(assessment)},
	}, nil
}

// assessmentSummary renders the Fine-Kinney breakdown appended to the
// request transcript.
func assessmentSummary(a *model.RiskAssessment) string {
	return fmt.Sprintf(
		"Fine-Kinney assessment\nHazard type: %s\nP: %g  E: %g  C: %g\nRisk score: %d (%s)",
		a.HazardType, a.Probability, a.Exposure, a.Consequence, int(a.RiskScore), a.Band,
	)
}
