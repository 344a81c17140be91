package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/ingest"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/monitoring"
	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/pkg/apify"
)

var (
	scrapeCity       string
	scrapeTerms      []string
	scrapeMaxResults int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [instagram|google|all]",
	Short: "Scrape a source and ingest the results into the lead store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		city := scrapeCity
		if city == "" {
			city = cfg.Scrape.City
		}
		if city == "" {
			return eris.New("city is required (--city or LEADGEN_SCRAPE_CITY)")
		}

		terms := scrapeTerms
		if len(terms) == 0 {
			terms = cfg.Scrape.Terms
		}
		if len(terms) == 0 {
			return eris.New("at least one search term is required (--term)")
		}

		maxResults := scrapeMaxResults
		if maxResults == 0 {
			maxResults = cfg.Scrape.MaxResults
		}

		ctx := cmd.Context()

		store, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		apifyClient := apify.NewClient(cfg.Apify.Token, apify.WithBaseURL(cfg.Apify.BaseURL))
		coord := ingest.New(store, ingest.Config{
			SnapshotCap: cfg.Ingest.SnapshotCap,
			MaxErrors:   cfg.Ingest.MaxErrors,
		})
		notifier := monitoring.NewNotifier(monitoring.Config{
			WebhookURL:           cfg.Monitoring.WebhookURL,
			FailureRateThreshold: cfg.Monitoring.FailureRateThreshold,
		})

		var scrapers []scrape.Scraper
		switch args[0] {
		case "instagram":
			scrapers = append(scrapers, scrape.NewInstagram(apifyClient, cfg.Apify.InstagramActorID))
		case "google":
			scrapers = append(scrapers, scrape.NewGoogle(apifyClient, cfg.Apify.GoogleActorID))
		case "all":
			scrapers = append(scrapers,
				scrape.NewInstagram(apifyClient, cfg.Apify.InstagramActorID),
				scrape.NewGoogle(apifyClient, cfg.Apify.GoogleActorID))
		default:
			return eris.Errorf("unknown source %q (want instagram, google or all)", args[0])
		}

		summaries, err := runScrape(ctx, scrapers, coord, scrape.Query{
			City:       city,
			MaxResults: maxResults,
		}, terms)
		for _, sum := range summaries {
			notifier.NotifyBatch(ctx, *sum)
			printSummary(cmd, sum)
		}
		return err
	},
}

// runScrape runs every scraper concurrently, one ingestion batch per
// source. Summaries for sources that finished are returned even when
// another source failed.
func runScrape(ctx context.Context, scrapers []scrape.Scraper, coord *ingest.Coordinator, base scrape.Query, terms []string) ([]*model.BatchSummary, error) {
	results := make([]*model.BatchSummary, len(scrapers))

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range scrapers {
		g.Go(func() error {
			var candidates []model.Lead
			for _, term := range terms {
				q := base
				q.SearchTerm = term
				leads, err := s.Scrape(ctx, q)
				if err != nil {
					return eris.Wrapf(err, "scrape %s %q", s.Source(), term)
				}
				candidates = append(candidates, leads...)
			}

			sum, err := coord.Ingest(ctx, s.Source(), candidates)
			if err != nil {
				return err
			}
			results[i] = sum
			return nil
		})
	}
	err := g.Wait()

	summaries := make([]*model.BatchSummary, 0, len(results))
	for _, sum := range results {
		if sum != nil {
			summaries = append(summaries, sum)
		}
	}
	return summaries, err
}

func printSummary(cmd *cobra.Command, sum *model.BatchSummary) {
	cmd.Printf("%s: %d scraped, %d persisted, %d duplicates, %d failed\n",
		sum.Source, sum.TotalInput, sum.Persisted, sum.DuplicatesSkipped, sum.Failed)
	for _, e := range sum.Errors {
		cmd.Printf("  error: %s\n", e)
	}
	if sum.Failed > len(sum.Errors) {
		cmd.Printf("  (%d earlier errors omitted)\n", sum.Failed-len(sum.Errors))
	}
	zap.L().Info("batch complete",
		zap.String("source", string(sum.Source)),
		zap.Int("persisted", sum.Persisted),
		zap.Int("duplicates", sum.DuplicatesSkipped),
		zap.Int("failed", sum.Failed),
	)
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeCity, "city", "", "city to search in (default from config)")
	scrapeCmd.Flags().StringArrayVar(&scrapeTerms, "term", nil, "search term, repeatable (default from config)")
	scrapeCmd.Flags().IntVar(&scrapeMaxResults, "max-results", 0, "max results per term (default from config)")
	rootCmd.AddCommand(scrapeCmd)
}
