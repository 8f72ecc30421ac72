package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/sentidash/sentidash/internal/aggregate"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/storage"
)

func float(n sql.NullFloat64) api.Float {
	if !n.Valid {
		return api.Float{}
	}
	return api.F(n.Float64)
}

// Stats summarizes hourly records newer than since.
func (s *SQLiteStorage) Stats(ctx context.Context, since time.Time) (api.Stats, error) {
	var (
		total           int64
		sentiment, avgP sql.NullFloat64
		latest          sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(avg_sentiment_score), AVG(avg_close_price), MAX(hour)
		FROM financial_sentiment_correlation
		WHERE hour >= ?`, storage.FormatTime(since)).Scan(&total, &sentiment, &avgP, &latest)
	if err != nil {
		return api.Stats{}, fmt.Errorf("sqlite storage: query stats: %w", err)
	}
	stats := api.Stats{
		TotalRecords:     api.F(float64(total)),
		OverallSentiment: api.F(sentiment.Float64),
		AvgStockPrice:    api.F(avgP.Float64),
		LatestDataTime:   latest.String,
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sentiment_category, COUNT(*) AS count
		FROM financial_sentiment_correlation
		WHERE hour >= ?
		GROUP BY sentiment_category
		ORDER BY count DESC, sentiment_category`, storage.FormatTime(since))
	if err != nil {
		return api.Stats{}, fmt.Errorf("sqlite storage: query distribution: %w", err)
	}
	defer rows.Close()

	stats.Distribution = []api.DistributionRow{}
	for rows.Next() {
		var (
			category string
			count    int64
		)
		if err := rows.Scan(&category, &count); err != nil {
			return api.Stats{}, fmt.Errorf("sqlite storage: scan distribution: %w", err)
		}
		stats.Distribution = append(stats.Distribution, api.DistributionRow{SentimentCategory: category, Count: api.F(float64(count))})
	}
	if err := rows.Err(); err != nil {
		return api.Stats{}, fmt.Errorf("sqlite storage: read distribution: %w", err)
	}
	return stats, nil
}

// Timeline buckets hourly records newer than since, newest first.
func (s *SQLiteStorage) Timeline(ctx context.Context, since time.Time, interval string) ([]api.TimelinePoint, error) {
	bucket := "hour"
	if interval == storage.IntervalDay {
		bucket = "substr(hour, 1, 10) || 'T00:00:00'"
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s AS time_period, AVG(avg_sentiment_score), AVG(avg_close_price), COUNT(*), SUM(total_volume)
		FROM financial_sentiment_correlation
		WHERE hour >= ?
		GROUP BY time_period
		ORDER BY time_period DESC`, bucket), storage.FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: query timeline: %w", err)
	}
	defer rows.Close()

	out := []api.TimelinePoint{}
	for rows.Next() {
		var (
			p                    api.TimelinePoint
			score, price, volume sql.NullFloat64
			count                int64
		)
		if err := rows.Scan(&p.TimePeriod, &score, &price, &count, &volume); err != nil {
			return nil, fmt.Errorf("sqlite storage: scan timeline: %w", err)
		}
		p.SentimentScore, p.AvgPrice, p.TotalVolume = float(score), float(price), float(volume)
		p.NewsCount = api.F(float64(count))
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite storage: read timeline: %w", err)
	}
	return out, nil
}

// SentimentBySymbol aggregates articles newer than since per ticker.
func (s *SQLiteStorage) SentimentBySymbol(ctx context.Context, since time.Time) ([]api.SymbolSentiment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, AVG(sentiment_score), AVG(sentiment_subjectivity), COUNT(*) AS news_count
		FROM news_with_sentiment
		WHERE published_at >= ? AND symbol IS NOT NULL
		GROUP BY symbol
		ORDER BY news_count DESC, symbol`, storage.FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: query sentiment by symbol: %w", err)
	}
	defer rows.Close()

	out := []api.SymbolSentiment{}
	for rows.Next() {
		var (
			r                 api.SymbolSentiment
			avg, subjectivity sql.NullFloat64
			count             int64
		)
		if err := rows.Scan(&r.Symbol, &avg, &subjectivity, &count); err != nil {
			return nil, fmt.Errorf("sqlite storage: scan sentiment by symbol: %w", err)
		}
		r.AvgSentiment, r.AvgSubjectivity = float(avg), float(subjectivity)
		r.NewsCount = api.F(float64(count))
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite storage: read sentiment by symbol: %w", err)
	}
	return out, nil
}

// StockPrices lists hourly bars newer than since, by ticker then newest hour.
func (s *SQLiteStorage) StockPrices(ctx context.Context, since time.Time) ([]api.StockPrice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, hour, avg_close_price, max_high_price, min_low_price, total_volume
		FROM financial_sentiment_correlation
		WHERE hour >= ?
		ORDER BY symbol, hour DESC`, storage.FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: query stock prices: %w", err)
	}
	defer rows.Close()

	out := []api.StockPrice{}
	for rows.Next() {
		var (
			p                      api.StockPrice
			closeP, high, low, vol sql.NullFloat64
		)
		if err := rows.Scan(&p.Symbol, &p.Hour, &closeP, &high, &low, &vol); err != nil {
			return nil, fmt.Errorf("sqlite storage: scan stock prices: %w", err)
		}
		p.Close, p.High, p.Low, p.Volume = float(closeP), float(high), float(low), float(vol)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite storage: read stock prices: %w", err)
	}
	return out, nil
}

type correlationGroup struct {
	category     string
	priceChanges []float64
	sentChanges  []float64
	scores       []float64
	closes       []float64
}

// Correlation averages price and sentiment changes per sentiment category and
// correlates sentiment score with close price. Categories with the largest
// average price change come first.
func (s *SQLiteStorage) Correlation(ctx context.Context, since time.Time) ([]api.CorrelationRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sentiment_category, price_change_percent, sentiment_change, avg_sentiment_score, avg_close_price
		FROM financial_sentiment_correlation
		WHERE hour >= ? AND price_change_percent IS NOT NULL
		ORDER BY id`, storage.FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: query correlation: %w", err)
	}
	defer rows.Close()

	var groups []*correlationGroup
	byCategory := map[string]*correlationGroup{}
	for rows.Next() {
		var (
			category                  string
			priceChange               float64
			sentChange, score, closeP sql.NullFloat64
		)
		if err := rows.Scan(&category, &priceChange, &sentChange, &score, &closeP); err != nil {
			return nil, fmt.Errorf("sqlite storage: scan correlation: %w", err)
		}
		g, ok := byCategory[category]
		if !ok {
			g = &correlationGroup{category: category}
			byCategory[category] = g
			groups = append(groups, g)
		}
		g.priceChanges = append(g.priceChanges, priceChange)
		if sentChange.Valid {
			g.sentChanges = append(g.sentChanges, sentChange.Float64)
		}
		if score.Valid && closeP.Valid {
			g.scores = append(g.scores, score.Float64)
			g.closes = append(g.closes, closeP.Float64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite storage: read correlation: %w", err)
	}

	out := make([]api.CorrelationRow, 0, len(groups))
	for _, g := range groups {
		row := api.CorrelationRow{
			SentimentCategory:  g.category,
			AvgPriceChange:     mean(g.priceChanges),
			AvgSentimentChange: mean(g.sentChanges),
			DataPoints:         api.F(float64(len(g.priceChanges))),
		}
		if r, ok := aggregate.Pearson(g.scores, g.closes); ok {
			row.CorrelationCoefficient = api.F(r)
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgPriceChange.Value > out[j].AvgPriceChange.Value
	})
	return out, nil
}

func mean(values []float64) api.Float {
	if len(values) == 0 {
		return api.Float{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return api.F(sum / float64(len(values)))
}

// LatestNews returns the newest limit articles.
func (s *SQLiteStorage) LatestNews(ctx context.Context, limit int) ([]api.NewsItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, COALESCE(description, ''), COALESCE(url, ''), published_at, COALESCE(source, ''),
			sentiment_score, sentiment_subjectivity
		FROM news_with_sentiment
		ORDER BY published_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: query news: %w", err)
	}
	defer rows.Close()

	out := []api.NewsItem{}
	for rows.Next() {
		var (
			n                   api.NewsItem
			score, subjectivity sql.NullFloat64
		)
		if err := rows.Scan(&n.Title, &n.Description, &n.URL, &n.PublishedAt, &n.SourceName, &score, &subjectivity); err != nil {
			return nil, fmt.Errorf("sqlite storage: scan news: %w", err)
		}
		n.SentimentScore, n.SentimentSubjectivity = float(score), float(subjectivity)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite storage: read news: %w", err)
	}
	return out, nil
}
