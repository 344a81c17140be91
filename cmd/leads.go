package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	leadsListLimit  int
	leadsListStatus string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and manage stored leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		leads, err := store.QueryAll(ctx, leadsListLimit)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		shown := 0
		for _, l := range leads {
			if leadsListStatus != "" && string(l.Status) != leadsListStatus {
				continue
			}
			shown++
			cmd.Printf("%s\t%-10s\t%-9s\t%s", l.ID, l.Status, l.Source, l.BusinessName)
			if l.Email != "" {
				cmd.Printf("\t<%s>", l.Email)
			}
			cmd.Println()
		}
		cmd.Printf("%d lead(s)\n", shown)
		return nil
	},
}

var leadsSetStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Set a lead's funnel status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := model.LeadStatus(args[1])
		switch status {
		case model.StatusNew, model.StatusContacted, model.StatusReplied,
			model.StatusQualified, model.StatusHotLead, model.StatusClosed:
		default:
			return eris.Errorf("unknown status %q", args[1])
		}

		ctx := cmd.Context()
		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		upd := leadstore.LeadUpdate{Status: &status}
		if status == model.StatusContacted {
			now := time.Now().UTC()
			upd.LastContactedAt = &now
		}

		if err := store.Update(ctx, args[0], upd); err != nil {
			return eris.Wrap(err, "set status")
		}
		cmd.Printf("%s -> %s\n", args[0], status)
		return nil
	},
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(ctx, args[0]); err != nil {
			return eris.Wrap(err, "delete lead")
		}
		cmd.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	leadsListCmd.Flags().IntVar(&leadsListLimit, "limit", 100, "max leads to list")
	leadsListCmd.Flags().StringVar(&leadsListStatus, "status", "", "only show leads with this status")
	leadsCmd.AddCommand(leadsListCmd, leadsSetStatusCmd, leadsDeleteCmd)
	rootCmd.AddCommand(leadsCmd)
}
