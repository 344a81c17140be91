package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/enrich"
	"github.com/sells-group/leadgen-cli/pkg/hunter"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Find emails for stored leads that have a website but no email",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}
		ctx := cmd.Context()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		h := hunter.NewClient(cfg.Hunter.Key, hunter.WithBaseURL(cfg.Hunter.BaseURL))
		sum, err := enrich.New(store, h, enrich.Config{
			ScanLimit: cfg.Enrich.ScanLimit,
		}).Run(ctx)
		if err != nil {
			return err
		}

		cmd.Printf("%d scanned, %d eligible, %d enriched, %d failed\n",
			sum.Scanned, sum.Eligible, sum.Enriched, sum.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
