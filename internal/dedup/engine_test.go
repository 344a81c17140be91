package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/identity"
	"github.com/sells-group/leadgen-cli/internal/model"
)

func snapshotOf(leads ...model.Lead) identity.Set {
	return identity.NewSet(leads)
}

func names(leads []model.Lead) []string {
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.BusinessName)
	}
	return out
}

func TestPartition_PartitionProperty(t *testing.T) {
	batch := []model.Lead{
		{BusinessName: "A", Email: "a@x.com"},
		{BusinessName: "B", Email: "a@x.com"},
		{BusinessName: "C", InstagramHandle: "c_ig"},
		{BusinessName: "D"},
	}
	res := Partition(batch, snapshotOf(model.Lead{InstagramHandle: "c_ig"}))

	assert.Len(t, res.Accepted, len(batch)-len(res.Rejected))
	assert.ElementsMatch(t, names(batch), append(names(res.Accepted), names(res.Rejected)...))
}

func TestPartition_AnySingleCriterionRejects(t *testing.T) {
	snap := snapshotOf(model.Lead{InstagramHandle: "cafe_x"})

	batch := []model.Lead{
		{BusinessName: "Cafe X", InstagramHandle: "cafe_x", Email: "a@x.com"},
		{BusinessName: "Cafe Y", Email: "b@y.com"},
	}
	res := Partition(batch, snap)

	assert.Equal(t, []string{"Cafe Y"}, names(res.Accepted))
	assert.Equal(t, []string{"Cafe X"}, names(res.Rejected))
}

func TestPartition_BatchInternalDedup(t *testing.T) {
	// No store entries at all; the two candidates share only an email.
	batch := []model.Lead{
		{BusinessName: "First", Email: "shared@x.com"},
		{BusinessName: "Second", Email: "shared@x.com"},
	}
	res := Partition(batch, identity.Set{})

	assert.Equal(t, []string{"First"}, names(res.Accepted))
	assert.Equal(t, []string{"Second"}, names(res.Rejected))
}

func TestPartition_CaseInsensitiveBusinessAddress(t *testing.T) {
	batch := []model.Lead{
		{BusinessName: "JOE'S", Address: "1 Main St"},
		{BusinessName: "joe's", Address: "1 MAIN ST"},
	}
	res := Partition(batch, identity.Set{})

	assert.Equal(t, []string{"JOE'S"}, names(res.Accepted))
	assert.Equal(t, []string{"joe's"}, names(res.Rejected))
}

func TestPartition_OrderPreserved(t *testing.T) {
	batch := []model.Lead{
		{BusinessName: "A", Email: "a@x.com"},
		{BusinessName: "B", Email: "dup@x.com"},
		{BusinessName: "C", Email: "c@x.com"},
		{BusinessName: "D", Email: "dup2@x.com"},
		{BusinessName: "E", Email: "e@x.com"},
	}
	snap := snapshotOf(
		model.Lead{BusinessName: "old1", Email: "dup@x.com"},
		model.Lead{BusinessName: "old2", Email: "dup2@x.com"},
	)
	res := Partition(batch, snap)

	assert.Equal(t, []string{"A", "C", "E"}, names(res.Accepted))
	assert.Equal(t, []string{"B", "D"}, names(res.Rejected))
}

func TestPartition_Idempotent(t *testing.T) {
	batch := []model.Lead{
		{BusinessName: "A", Email: "a@x.com"},
		{BusinessName: "B", Email: "a@x.com"},
	}
	snap := snapshotOf(model.Lead{InstagramHandle: "zzz"})

	first := Partition(batch, snap)
	second := Partition(batch, snap)
	assert.Equal(t, first, second)

	// Snapshot must not have been mutated by either call.
	assert.Len(t, snap, 1)
}

func TestPartition_KeylessCandidatesAlwaysAccepted(t *testing.T) {
	// A lead with only a name emits no keys at all, so nothing can
	// collide with it — both copies pass through.
	batch := []model.Lead{
		{BusinessName: "Nameless Co"},
		{BusinessName: "Nameless Co"},
	}
	res := Partition(batch, identity.Set{})
	assert.Len(t, res.Accepted, 2)
	assert.Empty(t, res.Rejected)
}
