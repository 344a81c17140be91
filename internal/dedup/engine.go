// Package dedup classifies candidate leads as new or already-seen.
package dedup

import (
	"github.com/sells-group/leadgen-cli/internal/identity"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// Result partitions one candidate batch. Accepted and Rejected are
// disjoint, preserve the candidates' relative input order, and together
// cover the whole batch.
type Result struct {
	Accepted []model.Lead
	Rejected []model.Lead
}

// Partition splits candidates into new vs duplicate against the given
// snapshot of existing identity keys. A candidate matching the snapshot
// on any single criterion is a duplicate. Accepted candidates add their
// own keys to the working set, so later candidates in the same batch are
// deduplicated against earlier ones too; first occurrence wins.
//
// The snapshot is not mutated. Partition keeps no state across calls —
// the caller supplies a fresh snapshot per batch.
func Partition(candidates []model.Lead, snapshot identity.Set) Result {
	seen := make(identity.Set, len(snapshot)+len(candidates))
	for k := range snapshot {
		seen[k] = struct{}{}
	}

	var res Result
	for _, c := range candidates {
		keys := identity.Keys(c)
		if seen.ContainsAny(keys) {
			res.Rejected = append(res.Rejected, c)
			continue
		}
		seen.Add(keys)
		res.Accepted = append(res.Accepted, c)
	}
	return res
}
