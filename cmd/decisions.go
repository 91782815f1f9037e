package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/internal/store"
)

var (
	decisionsBand   string
	decisionsLimit  int
	decisionsOffset int
	decisionsDays   int
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "List past triage decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		filter := store.DecisionFilter{
			Band:   model.Band(decisionsBand),
			Limit:  decisionsLimit,
			Offset: decisionsOffset,
		}
		if decisionsDays > 0 {
			filter.Since = time.Now().UTC().AddDate(0, 0, -decisionsDays)
		}

		list, err := st.ListDecisions(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list decisions")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	},
}

func init() {
	decisionsCmd.Flags().StringVar(&decisionsBand, "band", "", "filter by risk band (Low, Medium, High, VeryHigh, Error)")
	decisionsCmd.Flags().IntVar(&decisionsLimit, "limit", 50, "maximum decisions to return")
	decisionsCmd.Flags().IntVar(&decisionsOffset, "offset", 0, "offset for paging")
	decisionsCmd.Flags().IntVar(&decisionsDays, "days", 0, "only decisions from the last N days")
	rootCmd.AddCommand(decisionsCmd)
}
