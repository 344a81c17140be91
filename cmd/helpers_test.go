package main

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/leadgen-cli/internal/leadstore"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scrape"
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

type mockScraper struct {
	mock.Mock
	source model.LeadSource
}

func (m *mockScraper) Scrape(ctx context.Context, q scrape.Query) ([]model.Lead, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *mockScraper) Source() model.LeadSource {
	return m.source
}
