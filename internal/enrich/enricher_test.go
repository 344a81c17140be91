package enrich

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/hunter"
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

type mockHunter struct {
	mock.Mock
}

func (m *mockHunter) DomainSearch(ctx context.Context, domain string) (*hunter.DomainSearchResult, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hunter.DomainSearchResult), args.Error(1)
}

func TestRunEnrichesEligibleLeads(t *testing.T) {
	store := new(mockStore)
	h := new(mockHunter)

	store.On("QueryAll", mock.Anything, defaultScanLimit).Return([]model.Lead{
		{ID: "1", BusinessName: "Has Email", Email: "have@x.com", Website: "https://x.com"},
		{ID: "2", BusinessName: "No Website"},
		{ID: "3", BusinessName: "Eligible", Website: "https://www.brew.coffee/menu"},
	}, nil)

	h.On("DomainSearch", mock.Anything, "brew.coffee").Return(&hunter.DomainSearchResult{
		Domain: "brew.coffee",
		Emails: []hunter.Email{
			{Value: "info@brew.coffee", Confidence: 60},
			{Value: "owner@brew.coffee", Confidence: 92},
		},
	}, nil)

	store.On("Update", mock.Anything, "3", mock.MatchedBy(func(upd leadstore.LeadUpdate) bool {
		return upd.Email != nil && *upd.Email == "owner@brew.coffee"
	})).Return(nil)

	sum, err := New(store, h, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Scanned)
	assert.Equal(t, 1, sum.Eligible)
	assert.Equal(t, 1, sum.Enriched)
	assert.Equal(t, 0, sum.Failed)
	store.AssertExpectations(t)
	h.AssertExpectations(t)
}

func TestRunCountsFailuresWithoutAborting(t *testing.T) {
	store := new(mockStore)
	h := new(mockHunter)

	store.On("QueryAll", mock.Anything, 50).Return([]model.Lead{
		{ID: "1", Website: "https://dead.example.com"},
		{ID: "2", Website: "https://alive.example.com"},
	}, nil)

	h.On("DomainSearch", mock.Anything, "dead.example.com").
		Return(nil, eris.New("no results"))
	h.On("DomainSearch", mock.Anything, "alive.example.com").Return(&hunter.DomainSearchResult{
		Domain: "alive.example.com",
		Emails: []hunter.Email{{Value: "hi@alive.example.com", Confidence: 80}},
	}, nil)
	store.On("Update", mock.Anything, "2", mock.Anything).Return(nil)

	sum, err := New(store, h, Config{ScanLimit: 50}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Eligible)
	assert.Equal(t, 1, sum.Enriched)
	assert.Equal(t, 1, sum.Failed)
}

func TestRunAbortsOnScanFailure(t *testing.T) {
	store := new(mockStore)
	store.On("QueryAll", mock.Anything, mock.Anything).Return(nil, eris.New("store down"))

	sum, err := New(store, new(mockHunter), Config{}).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, sum)
}

func TestRunSkipsLeadsWithNoFoundEmail(t *testing.T) {
	store := new(mockStore)
	h := new(mockHunter)

	store.On("QueryAll", mock.Anything, mock.Anything).Return([]model.Lead{
		{ID: "1", Website: "empty.example.com"},
	}, nil)
	h.On("DomainSearch", mock.Anything, "empty.example.com").
		Return(&hunter.DomainSearchResult{Domain: "empty.example.com"}, nil)

	sum, err := New(store, h, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 0, sum.Enriched)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://www.brew.coffee/menu", "brew.coffee", false},
		{"http://example.com", "example.com", false},
		{"example.com", "example.com", false},
		{"www.Example.COM", "example.com", false},
		{"", "", true},
		{"https://localhost", "", true},
	}

	for _, tt := range tests {
		got, err := Domain(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
