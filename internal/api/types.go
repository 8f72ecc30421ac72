package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sentidash/sentidash/internal/aggregate"
	"github.com/sentidash/sentidash/internal/derive"
)

// Float is a JSON number that tolerates null, numeric strings and absence.
// Set is false when the field was missing, null or unparseable.
type Float struct {
	Value float64
	Set   bool
}

// F builds a set Float.
func F(v float64) Float { return Float{Value: v, Set: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = Float{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = F(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		// booleans and objects are treated as missing
		return nil
	}
	*f = F(v)
	return nil
}

// MarshalJSON implements json.Marshaler. Unset values encode as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f Float) field() (derive.Value, bool) {
	if !f.Set {
		return derive.Value{}, false
	}
	return derive.Number(f.Value), true
}

// Field names shared by several datasets.
const (
	FieldSymbol            = "symbol"
	FieldSentimentCategory = "sentiment_category"
	FieldSentimentScore    = "sentiment_score"
	FieldSentimentLabel    = "sentiment_label"
	FieldSourceName        = "source_name"
	FieldClose             = "close"
	FieldAvgSentiment      = "avg_sentiment"
)

// Stats is the general dashboard summary.
type Stats struct {
	TotalRecords     Float             `json:"total_records"`
	OverallSentiment Float             `json:"overall_sentiment"`
	AvgStockPrice    Float             `json:"avg_stock_price"`
	LatestDataTime   string            `json:"latest_data_time"`
	Distribution     []DistributionRow `json:"-"`
}

// StatsColumns lists the exported fields of Stats.
var StatsColumns = []string{"total_records", "overall_sentiment", "avg_stock_price", "latest_data_time"}

// Field implements derive.Record.
func (s Stats) Field(name string) (derive.Value, bool) {
	switch name {
	case "total_records":
		return s.TotalRecords.field()
	case "overall_sentiment":
		return s.OverallSentiment.field()
	case "avg_stock_price":
		return s.AvgStockPrice.field()
	case "latest_data_time":
		return derive.Text(s.LatestDataTime), s.LatestDataTime != ""
	}
	return derive.Value{}, false
}

// DistributionRow counts records per sentiment category.
type DistributionRow struct {
	SentimentCategory string `json:"sentiment_category"`
	Count             Float  `json:"count"`
}

// DistributionColumns lists the exported fields of DistributionRow.
var DistributionColumns = []string{FieldSentimentCategory, "count"}

// Field implements derive.Record.
func (r DistributionRow) Field(name string) (derive.Value, bool) {
	switch name {
	case FieldSentimentCategory:
		return derive.Text(r.SentimentCategory), true
	case "count":
		return r.Count.field()
	}
	return derive.Value{}, false
}

// TimelinePoint is one bucket of the sentiment timeline.
type TimelinePoint struct {
	TimePeriod     string `json:"time_period"`
	SentimentScore Float  `json:"sentiment_score"`
	AvgPrice       Float  `json:"avg_price"`
	NewsCount      Float  `json:"news_count"`
	TotalVolume    Float  `json:"total_volume"`
}

// TimelineColumns lists the exported fields of TimelinePoint.
var TimelineColumns = []string{"time_period", FieldSentimentScore, "avg_price", "news_count", "total_volume"}

// Field implements derive.Record.
func (p TimelinePoint) Field(name string) (derive.Value, bool) {
	switch name {
	case "time_period":
		return derive.Text(p.TimePeriod), true
	case FieldSentimentScore:
		return p.SentimentScore.field()
	case "avg_price":
		return p.AvgPrice.field()
	case "news_count":
		return p.NewsCount.field()
	case "total_volume":
		return p.TotalVolume.field()
	}
	return derive.Value{}, false
}

// SymbolSentiment is the sentiment summary of one ticker.
type SymbolSentiment struct {
	Symbol          string `json:"symbol"`
	AvgSentiment    Float  `json:"avg_sentiment"`
	AvgSubjectivity Float  `json:"avg_subjectivity"`
	NewsCount       Float  `json:"news_count"`
}

// SymbolSentimentColumns lists the exported fields of SymbolSentiment.
var SymbolSentimentColumns = []string{FieldSymbol, FieldAvgSentiment, "avg_subjectivity", "news_count"}

// Field implements derive.Record.
func (s SymbolSentiment) Field(name string) (derive.Value, bool) {
	switch name {
	case FieldSymbol:
		return derive.Text(s.Symbol), true
	case FieldAvgSentiment:
		return s.AvgSentiment.field()
	case "avg_subjectivity":
		return s.AvgSubjectivity.field()
	case "news_count":
		return s.NewsCount.field()
	}
	return derive.Value{}, false
}

// StockPrice is one hourly price bar of a ticker.
type StockPrice struct {
	Symbol string `json:"symbol"`
	Hour   string `json:"hour"`
	Close  Float  `json:"close"`
	High   Float  `json:"high"`
	Low    Float  `json:"low"`
	Volume Float  `json:"volume"`
}

// StockPriceColumns lists the exported fields of StockPrice.
var StockPriceColumns = []string{FieldSymbol, "hour", FieldClose, "high", "low", "volume"}

// Field implements derive.Record.
func (p StockPrice) Field(name string) (derive.Value, bool) {
	switch name {
	case FieldSymbol:
		return derive.Text(p.Symbol), true
	case "hour":
		return derive.Text(p.Hour), true
	case FieldClose:
		return p.Close.field()
	case "high":
		return p.High.field()
	case "low":
		return p.Low.field()
	case "volume":
		return p.Volume.field()
	}
	return derive.Value{}, false
}

// CorrelationRow relates price and sentiment changes for one sentiment category.
type CorrelationRow struct {
	SentimentCategory      string `json:"sentiment_category"`
	AvgPriceChange         Float  `json:"avg_price_change"`
	AvgSentimentChange     Float  `json:"avg_sentiment_change"`
	DataPoints             Float  `json:"data_points"`
	CorrelationCoefficient Float  `json:"correlation_coefficient"`
}

// CorrelationColumns lists the exported fields of CorrelationRow.
var CorrelationColumns = []string{FieldSentimentCategory, "avg_price_change", "avg_sentiment_change", "data_points", "correlation_coefficient"}

// Field implements derive.Record.
func (r CorrelationRow) Field(name string) (derive.Value, bool) {
	switch name {
	case FieldSentimentCategory:
		return derive.Text(r.SentimentCategory), true
	case "avg_price_change":
		return r.AvgPriceChange.field()
	case "avg_sentiment_change":
		return r.AvgSentimentChange.field()
	case "data_points":
		return r.DataPoints.field()
	case "correlation_coefficient":
		return r.CorrelationCoefficient.field()
	}
	return derive.Value{}, false
}

// NewsItem is one article with its sentiment scores.
type NewsItem struct {
	Title                 string `json:"title"`
	Description           string `json:"description"`
	URL                   string `json:"url"`
	PublishedAt           string `json:"published_at"`
	SourceName            string `json:"source_name"`
	SentimentScore        Float  `json:"sentiment_score"`
	SentimentSubjectivity Float  `json:"sentiment_subjectivity"`
}

// NewsColumns lists the exported fields of NewsItem, including the derived label.
var NewsColumns = []string{"title", "description", "url", "published_at", FieldSourceName, FieldSentimentScore, "sentiment_subjectivity", FieldSentimentLabel}

// Label classifies the article's sentiment score. A missing score is neutral.
func (n NewsItem) Label() string {
	return aggregate.SentimentLabel(n.SentimentScore.Value)
}

// Field implements derive.Record.
func (n NewsItem) Field(name string) (derive.Value, bool) {
	switch name {
	case "title":
		return derive.Text(n.Title), true
	case "description":
		return derive.Text(n.Description), true
	case "url":
		return derive.Text(n.URL), true
	case "published_at":
		return derive.Text(n.PublishedAt), true
	case FieldSourceName:
		return derive.Text(n.SourceName), true
	case FieldSentimentScore:
		return n.SentimentScore.field()
	case "sentiment_subjectivity":
		return n.SentimentSubjectivity.field()
	case FieldSentimentLabel:
		return derive.Text(n.Label()), true
	}
	return derive.Value{}, false
}

// Health is the server health report.
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
}

// Healthy reports whether the server declared itself healthy.
func (h Health) Healthy() bool { return strings.EqualFold(h.Status, "healthy") }

// User is the account returned by a successful login.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}
