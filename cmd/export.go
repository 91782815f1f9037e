package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/internal/export"
	"github.com/schem-safety/permit-cli/internal/model"
	"github.com/schem-safety/permit-cli/internal/store"
)

var (
	exportOut  string
	exportBand string
	exportDays int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export decision history to an XLSX workbook",
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

		filter := store.DecisionFilter{Band: model.Band(exportBand), Limit: 10000}
		if exportDays > 0 {
			filter.Since = time.Now().UTC().AddDate(0, 0, -exportDays)
		}

		list, err := st.ListDecisions(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list decisions")
		}

		if err := export.WriteDecisions(exportOut, list); err != nil {
			return err
		}

		zap.L().Info("decision history exported",
			zap.String("path", exportOut),
			zap.Int("decisions", len(list)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "decisions.xlsx", "output XLSX path")
	exportCmd.Flags().StringVar(&exportBand, "band", "", "filter by risk band")
	exportCmd.Flags().IntVar(&exportDays, "days", 0, "only decisions from the last N days")
	rootCmd.AddCommand(exportCmd)
}
