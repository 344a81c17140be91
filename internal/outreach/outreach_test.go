package outreach

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
	"github.com/sells-group/leadgen-cli/pkg/instantly"
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

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

type mockInstantly struct {
	mock.Mock
}

func (m *mockInstantly) AddLead(ctx context.Context, req instantly.AddLeadRequest) (*instantly.LeadResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*instantly.LeadResponse), args.Error(1)
}

func textResponse(s string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s}},
	}
}

func newOutreacher(t *testing.T, store *mockStore, llm *mockLLM, inst *mockInstantly, cfg Config) *Outreacher {
	t.Helper()
	if cfg.Campaign == "" {
		cfg.Campaign = "camp-1"
	}
	o, err := New(store, llm, inst, cfg)
	require.NoError(t, err)
	o.now = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }
	return o
}

func TestNewRequiresCampaign(t *testing.T) {
	_, err := New(new(mockStore), new(mockLLM), new(mockInstantly), Config{})
	assert.Error(t, err)
}

func TestRunContactsNewLeadsWithEmail(t *testing.T) {
	store := new(mockStore)
	llm := new(mockLLM)
	inst := new(mockInstantly)

	store.On("QueryAll", mock.Anything, defaultScanLimit).Return([]model.Lead{
		{ID: "1", BusinessName: "Already Done", Email: "a@x.com", Status: model.StatusContacted},
		{ID: "2", BusinessName: "No Email", Status: model.StatusNew},
		{
			ID: "3", BusinessName: "Brew Coffee", Email: "owner@brew.coffee",
			OwnerName: "Jess Park", City: "Sydney", Category: "cafe",
			Source: model.SourceInstagram, Status: model.StatusNew,
		},
	}, nil)

	llm.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 1 &&
			assert.ObjectsAreEqual("user", req.Messages[0].Role)
	})).Return(textResponse("  Loved the new single-origin menu.  "), nil)

	inst.On("AddLead", mock.Anything, instantly.AddLeadRequest{
		Campaign:        "camp-1",
		Email:           "owner@brew.coffee",
		FirstName:       "Jess",
		CompanyName:     "Brew Coffee",
		Personalization: "Loved the new single-origin menu.",
		CustomVariables: map[string]string{
			"city":     "Sydney",
			"category": "cafe",
			"source":   "instagram",
		},
	}).Return(&instantly.LeadResponse{ID: "il-1"}, nil)

	store.On("Update", mock.Anything, "3", mock.MatchedBy(func(upd leadstore.LeadUpdate) bool {
		return upd.Status != nil && *upd.Status == model.StatusContacted &&
			upd.LastContactedAt != nil && !upd.LastContactedAt.IsZero()
	})).Return(nil)

	sum, err := newOutreacher(t, store, llm, inst, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Scanned)
	assert.Equal(t, 1, sum.Eligible)
	assert.Equal(t, 1, sum.Contacted)
	assert.Equal(t, 0, sum.Failed)
	store.AssertExpectations(t)
	llm.AssertExpectations(t)
	inst.AssertExpectations(t)
}

func TestRunKeepsStatusOnInstantlyFailure(t *testing.T) {
	store := new(mockStore)
	llm := new(mockLLM)
	inst := new(mockInstantly)

	store.On("QueryAll", mock.Anything, mock.Anything).Return([]model.Lead{
		{ID: "1", BusinessName: "A", Email: "a@x.com", Status: model.StatusNew},
	}, nil)
	llm.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("line"), nil)
	inst.On("AddLead", mock.Anything, mock.Anything).Return(nil, eris.New("campaign full"))

	sum, err := newOutreacher(t, store, llm, inst, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 0, sum.Contacted)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunFailsLeadOnEmptyModelResponse(t *testing.T) {
	store := new(mockStore)
	llm := new(mockLLM)
	inst := new(mockInstantly)

	store.On("QueryAll", mock.Anything, mock.Anything).Return([]model.Lead{
		{ID: "1", BusinessName: "A", Email: "a@x.com", Status: model.StatusNew},
	}, nil)
	llm.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("   "), nil)

	sum, err := newOutreacher(t, store, llm, inst, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Failed)
	inst.AssertNotCalled(t, "AddLead", mock.Anything, mock.Anything)
}

func TestRunHonorsMaxLeads(t *testing.T) {
	store := new(mockStore)
	llm := new(mockLLM)
	inst := new(mockInstantly)

	store.On("QueryAll", mock.Anything, mock.Anything).Return([]model.Lead{
		{ID: "1", BusinessName: "A", Email: "a@x.com", Status: model.StatusNew},
		{ID: "2", BusinessName: "B", Email: "b@x.com", Status: model.StatusNew},
		{ID: "3", BusinessName: "C", Email: "c@x.com", Status: model.StatusNew},
	}, nil)
	llm.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("line"), nil)
	inst.On("AddLead", mock.Anything, mock.Anything).Return(&instantly.LeadResponse{}, nil)
	store.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sum, err := newOutreacher(t, store, llm, inst, Config{MaxLeads: 2}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Contacted)
	inst.AssertNumberOfCalls(t, "AddLead", 2)
}

func TestRunAbortsOnScanFailure(t *testing.T) {
	store := new(mockStore)
	store.On("QueryAll", mock.Anything, mock.Anything).Return(nil, eris.New("store down"))

	sum, err := newOutreacher(t, store, new(mockLLM), new(mockInstantly), Config{}).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, sum)
}

func TestLeadBrief(t *testing.T) {
	brief := leadBrief(model.Lead{
		BusinessName: "Brew Coffee",
		Category:     "cafe",
		City:         "Sydney",
		Rating:       4.8,
		ReviewCount:  120,
		RecentPosts: []model.Post{
			{Caption: "new beans in"},
			{},
			{Caption: "open late friday"},
		},
	})

	assert.Contains(t, brief, "Business: Brew Coffee")
	assert.Contains(t, brief, "Category: cafe")
	assert.Contains(t, brief, "Rating: 4.8 (120 reviews)")
	assert.Contains(t, brief, "Recent post: new beans in")
	assert.Contains(t, brief, "Recent post: open late friday")
	assert.NotContains(t, brief, "Bio:")
}
