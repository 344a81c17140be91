// Package ingest drives one ingestion batch end to end: snapshot the
// store, deduplicate, persist the new subset with per-record failure
// isolation.
package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/dedup"
	"github.com/sells-group/leadgen-cli/internal/identity"
	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/internal/model"
)

const (
	defaultSnapshotCap = 5000
	defaultMaxErrors   = 10
)

// Config bounds one coordinator's work.
type Config struct {
	// SnapshotCap caps the bulk read of existing leads taken at the
	// start of each batch. 0 means the default.
	SnapshotCap int `yaml:"snapshot_cap" mapstructure:"snapshot_cap"`

	// MaxErrors caps how many per-record error messages a summary
	// retains (newest kept). 0 means the default.
	MaxErrors int `yaml:"max_errors" mapstructure:"max_errors"`
}

// Coordinator ingests candidate batches into a lead store.
//
// Concurrent coordinators racing on the same store can each see the
// other's inserts missing from their snapshot and double-insert; the
// store is advisory-dedup only, and the occasional duplicate is
// tolerated rather than locked out.
type Coordinator struct {
	store       leadstore.Store
	snapshotCap int
	maxErrors   int
}

// New creates a Coordinator over the given store.
func New(store leadstore.Store, cfg Config) *Coordinator {
	if cfg.SnapshotCap <= 0 {
		cfg.SnapshotCap = defaultSnapshotCap
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = defaultMaxErrors
	}
	return &Coordinator{
		store:       store,
		snapshotCap: cfg.SnapshotCap,
		maxErrors:   cfg.MaxErrors,
	}
}

// Ingest runs one batch for one source. The returned error is non-nil
// only when the existing-snapshot fetch fails, in which case nothing was
// persisted; individual create failures are reported in the summary.
// Accepted records are persisted in input order.
func (c *Coordinator) Ingest(ctx context.Context, source model.LeadSource, candidates []model.Lead) (*model.BatchSummary, error) {
	log := zap.L().With(zap.String("source", string(source)))

	existing, err := c.store.ListExisting(ctx, c.snapshotCap)
	if err != nil {
		// Without a trustworthy snapshot, persisting anything risks
		// mass duplication; abort the whole batch.
		return nil, eris.Wrap(err, "ingest: fetch existing snapshot")
	}

	res := dedup.Partition(candidates, identity.NewSet(existing))

	summary := &model.BatchSummary{
		Source:            source,
		TotalInput:        len(candidates),
		DuplicatesSkipped: len(res.Rejected),
	}

	for _, lead := range res.Accepted {
		if _, err := c.store.Create(ctx, lead); err != nil {
			summary.Failed++
			summary.Errors = appendCapped(summary.Errors, err.Error(), c.maxErrors)
			log.Warn("persist lead failed",
				zap.String("business", lead.BusinessName),
				zap.String("kind", string(leadstore.Kind(err))),
				zap.Error(err),
			)
			continue
		}
		summary.Persisted++
	}

	log.Info("ingestion batch complete",
		zap.Int("total", summary.TotalInput),
		zap.Int("duplicates", summary.DuplicatesSkipped),
		zap.Int("persisted", summary.Persisted),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// appendCapped appends msg keeping only the newest limit entries.
func appendCapped(msgs []string, msg string, limit int) []string {
	msgs = append(msgs, msg)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs
}
