package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/derive"
	"github.com/sentidash/sentidash/internal/notify"
	"github.com/stretchr/testify/assert"
)

func plain(s string) string {
	// lipgloss emits no escapes without a color profile, but strip padding
	return strings.TrimRight(s, " ")
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		column   string
		value    float64
		expected string
	}{
		{"total_volume", 1234567, "1,234,567"},
		{"news_count", 15, "15"},
		{"data_points", 42.4, "42"},
		{"avg_sentiment", 0.12345, "0.123"},
		{"correlation_coefficient", -0.5, "-0.500"},
		{"close", 189.456, "189.46"},
		{"avg_price_change", 2.5, "2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.column, tt.value))
		})
	}
}

func TestCellHandlesMissingAndText(t *testing.T) {
	row := api.StockPrice{Symbol: "AAPL", Close: api.F(190)}
	assert.Equal(t, "AAPL", Cell(row, "symbol"))
	assert.Equal(t, "190.00", Cell(row, "close"))
	assert.Equal(t, "-", Cell(row, "high"))
	assert.Equal(t, "-", Cell(row, "hour"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "ab", Truncate("abcdefghij", 2))
	assert.Equal(t, "äöü...", Truncate("äöüäöüäöü", 6))
}

func TestColumnWidthsFitWidth(t *testing.T) {
	columns := []string{"title", "source_name"}
	cells := [][]string{{strings.Repeat("x", 40), "Reuters"}}

	widths := ColumnWidths(columns, cells, 0)
	assert.Equal(t, []int{40, 11}, widths)

	widths = ColumnWidths(columns, cells, 30)
	assert.LessOrEqual(t, widths[0]+widths[1]+columnGap, 30)
	assert.Equal(t, 11, widths[1])
}

func TestTableRendersRowsAndEmptyState(t *testing.T) {
	rows := []derive.Record{
		api.SymbolSentiment{Symbol: "AAPL", AvgSentiment: api.F(0.25), NewsCount: api.F(1200)},
	}
	out := Table(TableState{Columns: []string{"symbol", "avg_sentiment", "news_count"}, Rows: rows, Width: 80})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "AVG SENTIMENT")
	assert.Contains(t, lines[1], "AAPL")
	assert.Contains(t, lines[1], "0.250")
	assert.Contains(t, lines[1], "1,200")

	empty := Table(TableState{Columns: []string{"symbol"}, Width: 80})
	assert.Contains(t, empty, "No rows match the current filters")
	assert.Equal(t, "", Table(TableState{}))
}

func TestFooterShowsPagingAndHelp(t *testing.T) {
	out := Footer(FooterState{Page: 2, TotalPages: 5, TotalCount: 1234, LoadedAgo: "3 minutes ago"})
	assert.Contains(t, out, "Page 2 of 5")
	assert.Contains(t, out, "1,234 rows")
	assert.Contains(t, out, "updated 3 minutes ago")
	assert.Contains(t, out, "/: search")

	out = Footer(FooterState{SearchMode: true, SearchQuery: "aap", Loading: true, Spinner: "*"})
	assert.Contains(t, out, "* Loading...")
	assert.Contains(t, out, "Search: aap")
	assert.NotContains(t, out, "Page")

	out = Footer(FooterState{CommandMode: true, CommandQuery: "min 0.2"})
	assert.Contains(t, out, ":min 0.2")
}

func TestTabsNumberPages(t *testing.T) {
	out := Tabs([]string{"Dashboard", "News"}, 1)
	assert.Contains(t, out, "1 Dashboard")
	assert.Contains(t, out, "2 News")
}

func TestPanelWraps(t *testing.T) {
	pairs := []Pair{{"Total records", "1,250"}, {"Overall sentiment", "0.123"}}
	assert.Equal(t, 1, strings.Count(Panel(pairs, 0), "\n")+1)
	assert.Equal(t, 2, strings.Count(Panel(pairs, 30), "\n")+1)
}

func TestRenderGroupRow(t *testing.T) {
	styles := GroupRowStyles{Base: lipgloss.NewStyle(), Bar: lipgloss.NewStyle()}
	row := RenderGroupRow(GroupRow{Label: "Positive", Count: 45, Total: 100}, &styles)

	assert.True(t, strings.HasPrefix(row, "▸ Positive"))
	assert.Contains(t, row, "45")
	assert.Contains(t, row, "45.0%")
	assert.Equal(t, 9, strings.Count(row, barFull))

	zero := RenderGroupRow(GroupRow{Label: "Neutral"}, &styles)
	assert.Contains(t, zero, "0.0%")
	assert.Equal(t, 0, strings.Count(zero, barFull))

	narrow := RenderGroupRow(GroupRow{Label: "Positive", Count: 1, Total: 1, Width: 10}, &styles)
	assert.LessOrEqual(t, len([]rune(plain(narrow))), 10)
}

func TestNotifications(t *testing.T) {
	assert.Equal(t, "", Notifications(nil, 80))

	out := Notifications([]notify.Notification{
		{Kind: notify.KindError, Title: "Failed to load news", Message: "timeout"},
		{Kind: notify.KindSuccess, Title: "Exported"},
	}, 80)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "✗ Failed to load news: timeout")
	assert.Contains(t, lines[1], "✓ Exported")
}

func TestKindIcon(t *testing.T) {
	assert.Equal(t, "!", KindIcon(notify.KindWarning))
	assert.Equal(t, "i", KindIcon(notify.KindInfo))
}
