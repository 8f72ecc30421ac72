package view

import (
	"context"

	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/query"
	"github.com/stretchr/testify/mock"
)

// mockSource is a testify mock of Source.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) Stats(ctx context.Context, hours query.TimeRange) (api.Stats, error) {
	args := m.Called(ctx, hours)
	return args.Get(0).(api.Stats), args.Error(1)
}

func (m *mockSource) Timeline(ctx context.Context, hours query.TimeRange) ([]api.TimelinePoint, error) {
	args := m.Called(ctx, hours)
	rows, _ := args.Get(0).([]api.TimelinePoint)
	return rows, args.Error(1)
}

func (m *mockSource) SentimentBySymbol(ctx context.Context, hours query.TimeRange) ([]api.SymbolSentiment, error) {
	args := m.Called(ctx, hours)
	rows, _ := args.Get(0).([]api.SymbolSentiment)
	return rows, args.Error(1)
}

func (m *mockSource) StockPrices(ctx context.Context, hours query.TimeRange) ([]api.StockPrice, error) {
	args := m.Called(ctx, hours)
	rows, _ := args.Get(0).([]api.StockPrice)
	return rows, args.Error(1)
}

func (m *mockSource) Correlation(ctx context.Context, hours query.TimeRange) ([]api.CorrelationRow, error) {
	args := m.Called(ctx, hours)
	rows, _ := args.Get(0).([]api.CorrelationRow)
	return rows, args.Error(1)
}

func (m *mockSource) LatestNews(ctx context.Context, limit int) ([]api.NewsItem, error) {
	args := m.Called(ctx, limit)
	rows, _ := args.Get(0).([]api.NewsItem)
	return rows, args.Error(1)
}

func symbols(rows ...string) []api.SymbolSentiment {
	out := make([]api.SymbolSentiment, len(rows))
	for i, s := range rows {
		out[i] = api.SymbolSentiment{Symbol: s, AvgSentiment: api.F(0), NewsCount: api.F(1)}
	}
	return out
}
