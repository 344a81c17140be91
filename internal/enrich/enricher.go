// Package enrich fills in missing contact emails for stored leads by
// looking up the lead's website domain through Hunter.
package enrich

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/hunter"
)

const defaultScanLimit = 1000

// Summary reports the outcome of one enrichment pass.
type Summary struct {
	Scanned  int
	Eligible int
	Enriched int
	Failed   int
}

// Config tunes an enrichment pass.
type Config struct {
	// ScanLimit caps how many stored leads are read. Zero means the
	// default.
	ScanLimit int
}

// Enricher finds emails for leads that have a website but no email.
type Enricher struct {
	store  leadstore.Store
	hunter hunter.Client
	cfg    Config
	retry  resilience.RetryConfig
}

// New builds an Enricher over the given store and Hunter client.
func New(store leadstore.Store, h hunter.Client, cfg Config) *Enricher {
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = defaultScanLimit
	}
	return &Enricher{
		store:  store,
		hunter: h,
		cfg:    cfg,
		retry:  resilience.DefaultRetryConfig(),
	}
}

// Run scans stored leads and enriches every eligible one. A lead is
// eligible when it has a website and no email. Per-lead failures are
// counted and logged, not fatal; only the initial scan aborts the pass.
func (e *Enricher) Run(ctx context.Context) (*Summary, error) {
	leads, err := e.store.QueryAll(ctx, e.cfg.ScanLimit)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: scan leads")
	}

	sum := &Summary{Scanned: len(leads)}
	for _, lead := range leads {
		if lead.Email != "" || lead.Website == "" {
			continue
		}
		sum.Eligible++

		if err := e.enrichOne(ctx, lead); err != nil {
			sum.Failed++
			zap.L().Warn("enrichment failed",
				zap.String("lead_id", lead.ID),
				zap.String("business", lead.BusinessName),
				zap.Error(err))
			continue
		}
		sum.Enriched++
	}

	zap.L().Info("enrichment pass complete",
		zap.Int("scanned", sum.Scanned),
		zap.Int("eligible", sum.Eligible),
		zap.Int("enriched", sum.Enriched),
		zap.Int("failed", sum.Failed))
	return sum, nil
}

func (e *Enricher) enrichOne(ctx context.Context, lead model.Lead) error {
	domain, err := Domain(lead.Website)
	if err != nil {
		return eris.Wrapf(err, "enrich: website %q", lead.Website)
	}

	result, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*hunter.DomainSearchResult, error) {
		return e.hunter.DomainSearch(ctx, domain)
	})
	if err != nil {
		return eris.Wrapf(err, "enrich: domain search %q", domain)
	}

	email := result.Best()
	if email == "" {
		return eris.Errorf("enrich: no email found for %q", domain)
	}

	return e.store.Update(ctx, lead.ID, leadstore.LeadUpdate{Email: &email})
}

// Domain extracts the bare host from a website value, tolerating bare
// hosts, scheme-less URLs and www prefixes.
func Domain(website string) (string, error) {
	s := strings.TrimSpace(website)
	if s == "" {
		return "", eris.New("empty website")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", eris.Errorf("unparseable website %q", website)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if !strings.Contains(host, ".") {
		return "", eris.Errorf("not a domain: %q", host)
	}
	return host, nil
}
