package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/schem-safety/permit-cli/internal/ingest"
	"github.com/schem-safety/permit-cli/pkg/retrieval"
)

var (
	ingestFile string
	ingestDir  string
	ingestFTP  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load safety documents into the retrieval index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if ingestFile == "" && ingestDir == "" && ingestFTP == "" {
			return eris.New("one of --file, --dir, or --ftp is required")
		}

		index := retrieval.NewClient(cfg.Retrieval.BaseURL, cfg.Retrieval.Key)
		fetcher := ingest.NewFTPFetcher(ingest.FTPOptions{
			Timeout: time.Duration(cfg.Ingest.TimeoutSecs) * time.Second,
		})
		in := ingest.New(index, fetcher)

		switch {
		case ingestFile != "":
			if err := in.IngestFile(ctx, ingestFile); err != nil {
				return err
			}
		case ingestDir != "":
			n, err := in.IngestDir(ctx, ingestDir)
			if err != nil {
				return err
			}
			zap.L().Info("directory ingested", zap.String("dir", ingestDir), zap.Int("documents", n))
		case ingestFTP != "":
			if err := in.IngestFTP(ctx, ingestFTP); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "local document to index")
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "directory of documents to index")
	ingestCmd.Flags().StringVar(&ingestFTP, "ftp", "", "FTP URL of a document to index")
	ingestCmd.MarkFlagsMutuallyExclusive("file", "dir", "ftp")
	rootCmd.AddCommand(ingestCmd)
}
