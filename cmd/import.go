package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/importer"
	"github.com/sells-group/leadgen-cli/internal/ingest"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/monitoring"
)

var importSource string

var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Import leads from a CSV or XLSX file through the dedup pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		source := model.LeadSource(importSource)
		switch source {
		case model.SourceInstagram, model.SourceGoogle, model.SourceEmail, model.SourceWebsite:
		default:
			return eris.Errorf("unknown source %q", importSource)
		}

		var records []importer.Record
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			f, err := os.Open(path)
			if err != nil {
				return eris.Wrap(err, "open csv")
			}
			defer f.Close()
			records, err = importer.ReadCSV(f)
			if err != nil {
				return err
			}
		case ".xlsx":
			var err error
			records, err = importer.ReadXLSX(path)
			if err != nil {
				return err
			}
		default:
			return eris.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
		}

		candidates, dropped := importer.Leads(records, source)
		if dropped > 0 {
			zap.L().Warn("rows without a business name dropped", zap.Int("dropped", dropped))
		}

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		coord := ingest.New(store, ingest.Config{
			SnapshotCap: cfg.Ingest.SnapshotCap,
			MaxErrors:   cfg.Ingest.MaxErrors,
		})
		sum, err := coord.Ingest(ctx, source, candidates)
		if err != nil {
			return eris.Wrap(err, "import")
		}

		monitoring.NewNotifier(monitoring.Config{
			WebhookURL:           cfg.Monitoring.WebhookURL,
			FailureRateThreshold: cfg.Monitoring.FailureRateThreshold,
		}).NotifyBatch(ctx, *sum)

		printSummary(cmd, sum)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "website", "source tag for imported leads (instagram, google, email, website)")
	rootCmd.AddCommand(importCmd)
}
