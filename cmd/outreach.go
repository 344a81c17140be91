package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/outreach"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
	"github.com/sells-group/leadgen-cli/pkg/instantly"
)

var (
	outreachCampaign string
	outreachMax      int
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Push new leads with an email into the Instantly campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		campaign := outreachCampaign
		if campaign == "" {
			campaign = cfg.Instantly.Campaign
		}
		cfg.Instantly.Campaign = campaign
		if err := cfg.Validate("outreach"); err != nil {
			return err
		}
		ctx := cmd.Context()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		maxLeads := outreachMax
		if maxLeads == 0 {
			maxLeads = cfg.Outreach.MaxLeads
		}

		o, err := outreach.New(
			store,
			anthropic.NewClient(cfg.Anthropic.Key),
			instantly.NewClient(cfg.Instantly.Key, instantly.WithBaseURL(cfg.Instantly.BaseURL)),
			outreach.Config{
				Campaign:  campaign,
				Model:     cfg.Anthropic.Model,
				MaxLeads:  maxLeads,
				ScanLimit: cfg.Outreach.ScanLimit,
			},
		)
		if err != nil {
			return err
		}

		sum, err := o.Run(ctx)
		if err != nil {
			return err
		}

		cmd.Printf("%d scanned, %d eligible, %d contacted, %d failed\n",
			sum.Scanned, sum.Eligible, sum.Contacted, sum.Failed)
		return nil
	},
}

func init() {
	outreachCmd.Flags().StringVar(&outreachCampaign, "campaign", "", "Instantly campaign ID (default from config)")
	outreachCmd.Flags().IntVar(&outreachMax, "max", 0, "max leads to contact in this run (default from config)")
	rootCmd.AddCommand(outreachCmd)
}
