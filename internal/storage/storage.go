// Package storage defines the data store behind the fixture API server.
package storage

import (
	"context"
	"time"

	"github.com/sentidash/sentidash/internal/api"
)

// TimeLayout is the timestamp format of stored hours and publication times.
// Values sort lexically in time order.
const TimeLayout = "2006-01-02T15:04:05"

// Timeline bucket sizes.
const (
	IntervalHour = "hour"
	IntervalDay  = "day"
)

// Store answers the queries of the sentiment API.
type Store interface {
	// Stats summarizes hourly records newer than since.
	Stats(ctx context.Context, since time.Time) (api.Stats, error)
	// Timeline buckets hourly records newer than since, newest first.
	Timeline(ctx context.Context, since time.Time, interval string) ([]api.TimelinePoint, error)
	// SentimentBySymbol aggregates articles newer than since per ticker,
	// busiest ticker first.
	SentimentBySymbol(ctx context.Context, since time.Time) ([]api.SymbolSentiment, error)
	// StockPrices lists hourly bars newer than since, by ticker then newest hour.
	StockPrices(ctx context.Context, since time.Time) ([]api.StockPrice, error)
	// Correlation relates sentiment and price per sentiment category.
	Correlation(ctx context.Context, since time.Time) ([]api.CorrelationRow, error)
	// LatestNews returns the newest limit articles.
	LatestNews(ctx context.Context, limit int) ([]api.NewsItem, error)
	Ping(ctx context.Context) error
	Close() error
}

// Since returns the start of a look-back window of hours ending at now.
func Since(now time.Time, hours int) time.Time {
	return now.Add(-time.Duration(hours) * time.Hour)
}

// FormatTime renders t in TimeLayout, in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
