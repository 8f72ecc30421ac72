package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Float
	}{
		{"number", `1.5`, F(1.5)},
		{"integer", `42`, F(42)},
		{"numeric string", `" -0.25 "`, F(-0.25)},
		{"null", `null`, Float{}},
		{"text", `"n/a"`, Float{}},
		{"bool", `true`, Float{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Float
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestFloatMissingFieldIsUnset(t *testing.T) {
	var row SymbolSentiment
	require.NoError(t, json.Unmarshal([]byte(`{"symbol":"AAPL"}`), &row))
	assert.False(t, row.AvgSentiment.Set)
	assert.Equal(t, 0.0, row.AvgSentiment.Value)

	_, ok := row.Field(FieldAvgSentiment)
	assert.False(t, ok)
	v, ok := row.Field(FieldSymbol)
	assert.True(t, ok)
	assert.Equal(t, "AAPL", v.String())
}

func TestNewsItemLabel(t *testing.T) {
	assert.Equal(t, "positive", NewsItem{SentimentScore: F(0.11)}.Label())
	assert.Equal(t, "neutral", NewsItem{SentimentScore: F(0.1)}.Label())
	assert.Equal(t, "neutral", NewsItem{SentimentScore: F(-0.1)}.Label())
	assert.Equal(t, "negative", NewsItem{SentimentScore: F(-0.5)}.Label())
	assert.Equal(t, "neutral", NewsItem{}.Label())

	v, ok := NewsItem{SentimentScore: F(-0.5)}.Field(FieldSentimentLabel)
	assert.True(t, ok)
	assert.Equal(t, "negative", v.String())
}

func TestColumnsResolveOnEveryRow(t *testing.T) {
	full := NewsItem{Title: "t", Description: "d", URL: "u", PublishedAt: "p", SourceName: "s",
		SentimentScore: F(0), SentimentSubjectivity: F(0)}
	for _, col := range NewsColumns {
		_, ok := full.Field(col)
		assert.True(t, ok, col)
	}
	price := StockPrice{Close: F(1), High: F(1), Low: F(1), Volume: F(1)}
	for _, col := range StockPriceColumns {
		_, ok := price.Field(col)
		assert.True(t, ok, col)
	}
}
