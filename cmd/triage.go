package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/internal/model"
)

var (
	triageInput   string
	triageContext string
)

// triageResponse is the JSON printed for a triage run. Either Question is
// set (more information needed) or Decision is.
type triageResponse struct {
	NeedsMoreInfo bool            `json:"needs_more_info"`
	Question      string          `json:"question,omitempty"`
	Decision      *model.Decision `json:"decision,omitempty"`
}

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage a single work-permit request",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := contextWithRequestTimeout(cmd)
		defer cancel()

		env, err := initTriage(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		final, err := env.Engine.Run(ctx, model.WorkflowState{
			UserInput:    triageInput,
			PriorContext: triageContext,
		})
		if err != nil {
			return eris.Wrap(err, "triage run")
		}

		resp := triageResponse{NeedsMoreInfo: final.NeedsMoreInfo}
		if final.NeedsMoreInfo {
			resp.Question = final.ClarifyingQuestion
		} else {
			d := decisionFromState(final)
			if err := env.Store.CreateDecision(ctx, d); err != nil {
				return eris.Wrap(err, "persist decision")
			}
			publishDecision(ctx, env, d)
			resp.Decision = d

			zap.L().Info("triage complete",
				zap.String("decision_id", d.ID),
				zap.String("band", string(d.Band)),
				zap.Float64("risk_score", d.RiskScore),
				zap.String("report", d.ReportPath))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

// contextWithRequestTimeout bounds one triage request by the configured
// timeout.
func contextWithRequestTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := time.Duration(cfg.Triage.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func init() {
	triageCmd.Flags().StringVar(&triageInput, "input", "", "work-permit request text (required)")
	triageCmd.Flags().StringVar(&triageContext, "context", "", "prior conversation transcript for follow-up requests")
	_ = triageCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(triageCmd)
}
