package view

import (
	"context"

	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/dataset"
	"github.com/sentidash/sentidash/internal/query"
)

// Source is the remote API as seen by the pages. *api.Client implements it.
type Source interface {
	Stats(ctx context.Context, hours query.TimeRange) (api.Stats, error)
	Timeline(ctx context.Context, hours query.TimeRange) ([]api.TimelinePoint, error)
	SentimentBySymbol(ctx context.Context, hours query.TimeRange) ([]api.SymbolSentiment, error)
	StockPrices(ctx context.Context, hours query.TimeRange) ([]api.StockPrice, error)
	Correlation(ctx context.Context, hours query.TimeRange) ([]api.CorrelationRow, error)
	LatestNews(ctx context.Context, limit int) ([]api.NewsItem, error)
}

var _ Source = (*api.Client)(nil)

func byHours[R any](f func(context.Context, query.TimeRange) ([]R, error)) dataset.Fetcher[R] {
	return func(ctx context.Context, key query.Key) ([]R, error) {
		return f(ctx, key.Hours)
	}
}

func statsFetcher(src Source) dataset.Fetcher[api.Stats] {
	return func(ctx context.Context, key query.Key) ([]api.Stats, error) {
		s, err := src.Stats(ctx, key.Hours)
		if err != nil {
			return nil, err
		}
		return []api.Stats{s}, nil
	}
}

func newsFetcher(src Source) dataset.Fetcher[api.NewsItem] {
	return func(ctx context.Context, key query.Key) ([]api.NewsItem, error) {
		return src.LatestNews(ctx, key.Limit)
	}
}
