package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListExisting(ctx context.Context, limit int) ([]model.Lead, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, id string, upd leadstore.LeadUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) QueryAll(ctx context.Context, limit int) ([]model.Lead, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

func created(l model.Lead) *model.Lead {
	out := l
	out.ID = "id-" + l.BusinessName
	return &out
}

func TestIngest_HappyPath(t *testing.T) {
	ms := new(mockStore)
	ctx := context.Background()

	existing := []model.Lead{{ID: "e1", InstagramHandle: "cafe_x"}}
	ms.On("ListExisting", ctx, defaultSnapshotCap).Return(existing, nil).Once()

	dupe := model.Lead{BusinessName: "Cafe X", InstagramHandle: "cafe_x", Email: "a@x.com"}
	fresh := model.Lead{BusinessName: "Cafe Y", Email: "b@y.com"}
	ms.On("Create", ctx, fresh).Return(created(fresh), nil).Once()

	c := New(ms, Config{})
	summary, err := c.Ingest(ctx, model.SourceInstagram, []model.Lead{dupe, fresh})
	require.NoError(t, err)

	assert.Equal(t, model.SourceInstagram, summary.Source)
	assert.Equal(t, 2, summary.TotalInput)
	assert.Equal(t, 1, summary.DuplicatesSkipped)
	assert.Equal(t, 1, summary.Persisted)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, summary.Errors)
	ms.AssertExpectations(t)
}

func TestIngest_SnapshotFailureAborts(t *testing.T) {
	ms := new(mockStore)
	ctx := context.Background()

	ms.On("ListExisting", ctx, defaultSnapshotCap).
		Return(nil, &leadstore.StoreError{Kind: leadstore.KindConnectivity, Op: "list existing", Err: eris.New("down")}).Once()

	c := New(ms, Config{})
	summary, err := c.Ingest(ctx, model.SourceGoogle, []model.Lead{{BusinessName: "X"}})

	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "fetch existing snapshot")
	ms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngest_PerRecordFailureDoesNotAbort(t *testing.T) {
	ms := new(mockStore)
	ctx := context.Background()

	ms.On("ListExisting", ctx, defaultSnapshotCap).Return([]model.Lead{}, nil).Once()

	batch := make([]model.Lead, 5)
	for i := range batch {
		batch[i] = model.Lead{
			BusinessName: fmt.Sprintf("Biz %d", i),
			Email:        fmt.Sprintf("biz%d@x.com", i),
		}
	}

	for i, l := range batch {
		if i == 2 {
			ms.On("Create", ctx, l).
				Return(nil, &leadstore.StoreError{Kind: leadstore.KindValidation, Op: "create", Err: eris.New("invalid field")}).Once()
			continue
		}
		ms.On("Create", ctx, l).Return(created(l), nil).Once()
	}

	c := New(ms, Config{})
	summary, err := c.Ingest(ctx, model.SourceGoogle, batch)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalInput)
	assert.Equal(t, 0, summary.DuplicatesSkipped)
	assert.Equal(t, 4, summary.Persisted)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "invalid field")
	ms.AssertExpectations(t)
}

func TestIngest_ErrorListCapped(t *testing.T) {
	ms := new(mockStore)
	ctx := context.Background()

	ms.On("ListExisting", ctx, defaultSnapshotCap).Return([]model.Lead{}, nil).Once()

	var batch []model.Lead
	for i := 0; i < 15; i++ {
		l := model.Lead{
			BusinessName: fmt.Sprintf("Biz %d", i),
			Email:        fmt.Sprintf("biz%d@x.com", i),
		}
		batch = append(batch, l)
		ms.On("Create", ctx, l).
			Return(nil, &leadstore.StoreError{Kind: leadstore.KindRateLimit, Op: "create", Err: eris.Errorf("429 on %d", i)}).Once()
	}

	c := New(ms, Config{})
	summary, err := c.Ingest(ctx, model.SourceGoogle, batch)
	require.NoError(t, err)

	assert.Equal(t, 15, summary.Failed)
	require.Len(t, summary.Errors, defaultMaxErrors)
	// The newest failures are the ones kept.
	assert.Contains(t, summary.Errors[len(summary.Errors)-1], "429 on 14")
	assert.Contains(t, summary.Errors[0], "429 on 5")
	ms.AssertExpectations(t)
}

func TestIngest_BatchInternalDuplicateNotPersistedTwice(t *testing.T) {
	ms := new(mockStore)
	ctx := context.Background()

	ms.On("ListExisting", ctx, defaultSnapshotCap).Return([]model.Lead{}, nil).Once()

	first := model.Lead{BusinessName: "First", Email: "shared@x.com"}
	second := model.Lead{BusinessName: "Second", Email: "shared@x.com"}
	ms.On("Create", ctx, first).Return(created(first), nil).Once()

	c := New(ms, Config{})
	summary, err := c.Ingest(ctx, model.SourceWebsite, []model.Lead{first, second})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Persisted)
	assert.Equal(t, 1, summary.DuplicatesSkipped)
	ms.AssertExpectations(t)
}

func TestIngest_EmptyBatch(t *testing.T) {
	ms := new(mockStore)
	ctx := context.Background()

	ms.On("ListExisting", ctx, 100).Return([]model.Lead{}, nil).Once()

	c := New(ms, Config{SnapshotCap: 100})
	summary, err := c.Ingest(ctx, model.SourceGoogle, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalInput)
	assert.Equal(t, 0, summary.Persisted)
	ms.AssertExpectations(t)
}
