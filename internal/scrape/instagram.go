package scrape

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/normalize"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/apify"
)

// DefaultInstagramActorID is the Instagram profile scraper actor.
const DefaultInstagramActorID = "apify~instagram-scraper"

// InstagramScraper drives the Instagram actor and normalizes its items.
// Personal (non-business) profiles are filtered out by the normalizer.
type InstagramScraper struct {
	client  apify.Client
	actorID string
	retry   resilience.RetryConfig
}

// NewInstagram creates an Instagram scraper. An empty actorID selects
// the default actor.
func NewInstagram(client apify.Client, actorID string) *InstagramScraper {
	if actorID == "" {
		actorID = DefaultInstagramActorID
	}
	cfg := resilience.DefaultRetryConfig()
	cfg.ShouldRetry = retryable
	cfg.OnRetry = resilience.RetryLogger("apify", "instagram scrape")
	return &InstagramScraper{client: client, actorID: actorID, retry: cfg}
}

func (s *InstagramScraper) Source() model.LeadSource {
	return model.SourceInstagram
}

// instagramActorInput is the actor's expected input shape.
type instagramActorInput struct {
	Search       string `json:"search"`
	SearchType   string `json:"searchType"`
	SearchLimit  int    `json:"searchLimit,omitempty"`
	ResultsType  string `json:"resultsType"`
	ResultsLimit int    `json:"resultsLimit,omitempty"`
}

func (s *InstagramScraper) Scrape(ctx context.Context, q Query) ([]model.Lead, error) {
	input := instagramActorInput{
		Search:       q.SearchTerm + " " + q.City,
		SearchType:   "user",
		SearchLimit:  q.MaxResults,
		ResultsType:  "details",
		ResultsLimit: q.MaxResults,
	}

	items, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]json.RawMessage, error) {
		return s.client.RunActorSync(ctx, s.actorID, input)
	})
	if err != nil {
		return nil, eris.Wrap(err, "scrape: instagram actor run")
	}

	leads := make([]model.Lead, 0, len(items))
	dropped := 0
	for _, item := range items {
		var raw normalize.InstagramRaw
		if err := json.Unmarshal(item, &raw); err != nil {
			dropped++
			continue
		}
		lead := normalize.Instagram(raw, q.City, q.SearchTerm)
		if lead == nil {
			dropped++
			continue
		}
		leads = append(leads, *lead)
	}

	zap.L().Debug("instagram scrape complete",
		zap.String("city", q.City),
		zap.String("term", q.SearchTerm),
		zap.Int("items", len(items)),
		zap.Int("dropped", dropped),
	)
	return leads, nil
}
