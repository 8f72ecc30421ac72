package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sentidash/sentidash/internal/storage"
)

// Record is one hourly row of the sentiment/price table.
type Record struct {
	Symbol             string
	Hour               time.Time
	SentimentScore     *float64
	Subjectivity       *float64
	SentimentCategory  string
	Close, High, Low   *float64
	Volume             int64
	PricePoints        int64
	PriceChangePercent *float64
	SentimentChange    *float64
}

// Article is one stored news article.
type Article struct {
	Symbol         string
	Title          string
	Description    string
	URL            string
	PublishedAt    time.Time
	Source         string
	SentimentScore *float64
	Subjectivity   *float64
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Insert stores records and articles in one transaction.
func (s *SQLiteStorage) Insert(ctx context.Context, records []Record, articles []Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite storage: begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	recStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO financial_sentiment_correlation (
			symbol, hour, avg_sentiment_score, avg_sentiment_subjectivity, sentiment_category,
			avg_close_price, max_high_price, min_low_price, total_volume, price_points,
			price_change_percent, sentiment_change
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite storage: prepare record insert: %w", err)
	}
	defer recStmt.Close()

	for _, r := range records {
		_, err := recStmt.ExecContext(ctx,
			r.Symbol, storage.FormatTime(r.Hour), nullable(r.SentimentScore), nullable(r.Subjectivity), r.SentimentCategory,
			nullable(r.Close), nullable(r.High), nullable(r.Low), r.Volume, r.PricePoints,
			nullable(r.PriceChangePercent), nullable(r.SentimentChange))
		if err != nil {
			return fmt.Errorf("sqlite storage: insert record %s %s: %w", r.Symbol, storage.FormatTime(r.Hour), err)
		}
	}

	newsStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO news_with_sentiment (
			symbol, title, description, url, published_at, source, sentiment_score, sentiment_subjectivity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite storage: prepare news insert: %w", err)
	}
	defer newsStmt.Close()

	for _, a := range articles {
		_, err := newsStmt.ExecContext(ctx,
			nullString(a.Symbol), a.Title, a.Description, a.URL, storage.FormatTime(a.PublishedAt), a.Source,
			nullable(a.SentimentScore), nullable(a.Subjectivity))
		if err != nil {
			return fmt.Errorf("sqlite storage: insert article %q: %w", a.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite storage: commit insert: %w", err)
	}
	return nil
}

// Default seed parameters.
var (
	DefaultSymbols = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA"}
	DefaultSources = []string{"Reuters", "Bloomberg", "Financial Times", "CNBC", "MarketWatch"}
)

// SeedOptions controls generated demo data.
type SeedOptions struct {
	Now        time.Time
	Hours      int
	Symbols    []string
	NewsPerDay int
	Seed       uint64
}

func (o SeedOptions) withDefaults() SeedOptions {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Hours <= 0 {
		o.Hours = 720
	}
	if len(o.Symbols) == 0 {
		o.Symbols = DefaultSymbols
	}
	if o.NewsPerDay <= 0 {
		o.NewsPerDay = 8
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	return o
}

// Category maps a sentiment score onto the stored category names.
func Category(score float64) string {
	switch {
	case score > 0.1:
		return "Positive"
	case score < -0.1:
		return "Negative"
	default:
		return "Neutral"
	}
}

var basePrices = map[string]float64{
	"AAPL": 190, "MSFT": 410, "GOOGL": 150, "AMZN": 180, "TSLA": 240, "NVDA": 880,
}

var headlines = []struct{ title, description string }{
	{"%s shares climb after earnings beat", "<p>Quarterly results for <b>%s</b> topped analyst estimates.</p>"},
	{"%s faces regulatory scrutiny", "Regulators opened an inquiry into <i>%s</i> &amp; its partners."},
	{"Analysts split on %s outlook", "Brokers issued mixed ratings for %s this week."},
	{"%s announces new product line", "<a href=\"https://example.com\">%s</a> unveiled its latest lineup."},
	{"%s slides as guidance disappoints", "Shares of %s fell after a cautious forecast."},
}

// Generate builds deterministic demo records and articles.
func Generate(opts SeedOptions) ([]Record, []Article) {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	end := opts.Now.UTC().Truncate(time.Hour)
	start := end.Add(-time.Duration(opts.Hours-1) * time.Hour)

	var records []Record
	for _, sym := range opts.Symbols {
		price, ok := basePrices[sym]
		if !ok {
			price = 100
		}
		var prevScore *float64
		for h := 0; h < opts.Hours; h++ {
			hour := start.Add(time.Duration(h) * time.Hour)
			score := math.Round((rng.Float64()*2-1)*0.8*1000) / 1000
			subj := math.Round(rng.Float64()*1000) / 1000
			change := rng.NormFloat64()*0.6 + score*0.5
			open := price
			price = math.Max(1, price*(1+change/100))
			high := math.Max(open, price) * (1 + rng.Float64()*0.004)
			low := math.Min(open, price) * (1 - rng.Float64()*0.004)

			r := Record{
				Symbol:            sym,
				Hour:              hour,
				SentimentScore:    ptr(score),
				Subjectivity:      ptr(subj),
				SentimentCategory: Category(score),
				Close:             ptr(round2(price)),
				High:              ptr(round2(high)),
				Low:               ptr(round2(low)),
				Volume:            int64(100_000 + rng.IntN(900_000)),
				PricePoints:       int64(1 + rng.IntN(60)),
			}
			if h > 0 {
				r.PriceChangePercent = ptr(math.Round(change*100) / 100)
			}
			if prevScore != nil {
				r.SentimentChange = ptr(math.Round((score-*prevScore)*1000) / 1000)
			}
			prevScore = r.SentimentScore
			records = append(records, r)
		}
	}

	days := (opts.Hours + 23) / 24
	var articles []Article
	for d := 0; d < days; d++ {
		for i := 0; i < opts.NewsPerDay; i++ {
			sym := opts.Symbols[rng.IntN(len(opts.Symbols))]
			h := headlines[rng.IntN(len(headlines))]
			published := end.Add(-time.Duration(d*24*60+rng.IntN(24*60)) * time.Minute)
			a := Article{
				Symbol:      sym,
				Title:       fmt.Sprintf(h.title, sym),
				Description: fmt.Sprintf(h.description, sym),
				URL:         fmt.Sprintf("https://news.example.com/%s/%d-%d", sym, d, i),
				PublishedAt: published,
				Source:      DefaultSources[rng.IntN(len(DefaultSources))],
			}
			// some articles were never scored
			if rng.IntN(10) > 0 {
				a.SentimentScore = ptr(math.Round((rng.Float64()*2-1)*1000) / 1000)
				a.Subjectivity = ptr(math.Round(rng.Float64()*1000) / 1000)
			}
			articles = append(articles, a)
		}
	}
	return records, articles
}

// Seed fills the database with generated demo data.
func (s *SQLiteStorage) Seed(ctx context.Context, opts SeedOptions) error {
	records, articles := Generate(opts)
	return s.Insert(ctx, records, articles)
}

func ptr(v float64) *float64 { return &v }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
