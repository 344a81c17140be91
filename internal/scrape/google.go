package scrape

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/normalize"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/apify"
)

// DefaultGoogleActorID is the Google Maps crawler actor.
const DefaultGoogleActorID = "compass~crawler-google-places"

// GoogleScraper drives the Google Maps actor and normalizes its items.
type GoogleScraper struct {
	client  apify.Client
	actorID string
	retry   resilience.RetryConfig
}

// NewGoogle creates a Google Maps scraper. An empty actorID selects the
// default actor.
func NewGoogle(client apify.Client, actorID string) *GoogleScraper {
	if actorID == "" {
		actorID = DefaultGoogleActorID
	}
	cfg := resilience.DefaultRetryConfig()
	cfg.ShouldRetry = retryable
	cfg.OnRetry = resilience.RetryLogger("apify", "google scrape")
	return &GoogleScraper{client: client, actorID: actorID, retry: cfg}
}

func (s *GoogleScraper) Source() model.LeadSource {
	return model.SourceGoogle
}

// googleActorInput is the actor's expected input shape.
type googleActorInput struct {
	SearchStrings []string `json:"searchStringsArray"`
	MaxPlaces     int      `json:"maxCrawledPlacesPerSearch,omitempty"`
	Language      string   `json:"language,omitempty"`
}

func (s *GoogleScraper) Scrape(ctx context.Context, q Query) ([]model.Lead, error) {
	input := googleActorInput{
		SearchStrings: []string{fmt.Sprintf("%s %s", q.SearchTerm, q.City)},
		MaxPlaces:     q.MaxResults,
		Language:      "en",
	}

	items, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]json.RawMessage, error) {
		return s.client.RunActorSync(ctx, s.actorID, input)
	})
	if err != nil {
		return nil, eris.Wrap(err, "scrape: google actor run")
	}

	leads := make([]model.Lead, 0, len(items))
	dropped := 0
	for _, item := range items {
		var raw normalize.GoogleRaw
		if err := json.Unmarshal(item, &raw); err != nil {
			dropped++
			continue
		}
		lead := normalize.Google(raw, q.City, q.SearchTerm)
		if lead == nil {
			dropped++
			continue
		}
		leads = append(leads, *lead)
	}

	zap.L().Debug("google scrape complete",
		zap.String("city", q.City),
		zap.String("term", q.SearchTerm),
		zap.Int("items", len(items)),
		zap.Int("dropped", dropped),
	)
	return leads, nil
}
