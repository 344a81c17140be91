// Package scrape holds the source adapters that produce candidate leads
// for ingestion.
package scrape

import (
	"context"
	"errors"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/apify"
)

// Query describes one scrape run: what to look for and where.
type Query struct {
	City       string
	SearchTerm string
	MaxResults int
}

// Scraper fetches raw listings for one source and returns them as
// normalized candidate leads, ready for the ingestion coordinator.
type Scraper interface {
	Scrape(ctx context.Context, q Query) ([]model.Lead, error)
	Source() model.LeadSource
}

// retryable treats Apify rate limits and server errors as transient on
// top of the usual network-level checks.
func retryable(err error) bool {
	var apiErr *apify.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}
