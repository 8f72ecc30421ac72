package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sentidash/sentidash/internal/aggregate"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/tui/render"
	"github.com/sentidash/sentidash/internal/view"
)

// footerLines is the height of render.Footer.
const footerLines = 2

var filterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// View renders the TUI.
func (m *Model) View() string {
	if len(m.pages) == 0 {
		return "No pages configured\n"
	}
	width := m.uiState.GetWidth()
	p := m.Page()

	header := []string{render.Tabs(titles(m.pages), m.active), filterStyle.Render(filterLine(p))}
	notes := render.Notifications(m.bus.List(), width)

	chrome := len(header) + footerLines
	if notes != "" {
		chrome += strings.Count(notes, "\n") + 1
	}
	m.uiState.FitViewport(chrome)
	m.uiState.GetViewport().SetContent(m.pageContent(p, width))

	var s strings.Builder
	s.WriteString(strings.Join(header, "\n"))
	s.WriteString("\n")
	s.WriteString(m.uiState.GetViewport().View())
	if notes != "" {
		s.WriteString("\n")
		s.WriteString(notes)
	}
	s.WriteString("\n")

	page := p.View()
	s.WriteString(render.Footer(render.FooterState{
		SearchMode:   m.uiState.IsSearchMode(),
		CommandMode:  m.uiState.IsCommandMode(),
		SearchQuery:  m.uiState.GetSearchQuery(),
		CommandQuery: m.uiState.GetCommandQuery(),
		Page:         page.Number,
		TotalPages:   page.TotalPages,
		TotalCount:   page.TotalCount,
		Loading:      p.Loading() || m.inflight[m.active] > 0,
		Spinner:      m.spinner.View(),
		LoadedAgo:    m.loadedAgo(p),
		Width:        width,
	}))
	return s.String()
}

func titles(pages []view.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Title()
	}
	return out
}

// filterLine lists the current settings of p, e.g. "range: 24h  symbol: AAPL".
func filterLine(p view.Page) string {
	var parts []string
	for _, name := range p.Settings() {
		v, ok := p.Setting(name)
		if !ok || v == "" {
			continue
		}
		parts = append(parts, name+": "+v)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "  ")
}

func (m *Model) loadedAgo(p view.Page) string {
	l, ok := p.(interface{ LoadedAt() time.Time })
	if !ok || l.LoadedAt().IsZero() {
		return ""
	}
	return view.Age(l.LoadedAt(), m.now())
}

// pageContent renders the summary panel, errors and table of p.
func (m *Model) pageContent(p view.Page, width int) string {
	var blocks []string
	if panel := summary(p, width); panel != "" {
		blocks = append(blocks, panel)
	}
	for _, msg := range pageErrors(p) {
		blocks = append(blocks, render.Error(msg))
	}
	blocks = append(blocks, render.Table(render.TableState{
		Columns: p.Columns(),
		Rows:    p.View().Rows,
		Width:   width,
	}))
	return strings.Join(blocks, "\n\n")
}

// pageErrors returns one message per failed dataset of p.
func pageErrors(p view.Page) []string {
	var errs []error
	switch p := p.(type) {
	case *view.Dashboard:
		errs = []error{p.StatsErr(), p.TimelineErr()}
	case *view.Correlation:
		errs = []error{p.Controller.Err(), p.TimelineErr()}
	default:
		errs = []error{p.Err()}
	}
	var out []string
	for _, err := range errs {
		if err != nil {
			out = append(out, api.Message(err))
		}
	}
	return out
}

// summary renders the figures shown above the table of each page.
func summary(p view.Page, width int) string {
	switch p := p.(type) {
	case *view.Dashboard:
		return dashboardSummary(p, width)
	case *view.Sentiment:
		s := p.Summary()
		return render.Panel([]render.Pair{
			{Label: "Symbols", Value: humanize.Comma(int64(s.Count))},
			{Label: "Avg sentiment", Value: s.Format(s.Mean, 3)},
			{Label: "Min", Value: s.Format(s.Min, 3)},
			{Label: "Max", Value: s.Format(s.Max, 3)},
		}, width)
	case *view.Stocks:
		s := p.Stats()
		return render.Panel([]render.Pair{
			{Label: "Tickers", Value: fmt.Sprint(len(p.Symbols()))},
			{Label: "Avg close", Value: s.Format(s.Mean, 2)},
			{Label: "Low", Value: s.Format(s.Min, 2)},
			{Label: "High", Value: s.Format(s.Max, 2)},
			{Label: "Last", Value: s.Format(s.Last, 2)},
		}, width)
	case *view.Correlation:
		return render.Panel([]render.Pair{
			{Label: "Categories", Value: fmt.Sprint(len(p.Categories()))},
			{Label: "Timeline points", Value: humanize.Comma(int64(len(p.Timeline())))},
		}, width)
	case *view.News:
		return newsSummary(p, width)
	}
	return ""
}

func dashboardSummary(p *view.Dashboard, width int) string {
	stats, ok := p.Stats()
	if !ok {
		return ""
	}
	panel := render.Panel([]render.Pair{
		{Label: "Total records", Value: render.Cell(stats, "total_records")},
		{Label: "Overall sentiment", Value: render.Cell(stats, "overall_sentiment")},
		{Label: "Avg stock price", Value: render.Cell(stats, "avg_stock_price")},
		{Label: "Latest data", Value: render.Cell(stats, "latest_data_time")},
	}, width)

	dist := p.Distribution()
	if len(dist) == 0 {
		return panel
	}
	total := 0
	for _, d := range dist {
		total += int(d.Count.Value)
	}
	rows := make([]render.GroupRow, len(dist))
	for i, d := range dist {
		rows[i] = render.GroupRow{Label: d.SentimentCategory, Count: int(d.Count.Value), Total: total, Width: width}
	}
	return panel + "\n\n" + render.RenderGroups(rows)
}

// newsSourceRows caps the source breakdown shown above the news table.
const newsSourceRows = 5

func newsSummary(p *view.News, width int) string {
	s := p.AverageSentiment()
	label := "-"
	if !s.IsEmpty() {
		label = aggregate.SentimentLabel(s.Mean.InexactFloat64())
	}
	panel := render.Panel([]render.Pair{
		{Label: "Articles", Value: humanize.Comma(int64(s.Count))},
		{Label: "Avg sentiment", Value: s.Format(s.Mean, 3)},
		{Label: "Overall", Value: label},
		{Label: "Sources", Value: fmt.Sprint(len(p.Sources()))},
	}, width)

	groups := aggregate.CountBy(p.Filtered(), api.FieldSourceName)
	if len(groups) == 0 {
		return panel
	}
	if len(groups) > newsSourceRows {
		groups = groups[:newsSourceRows]
	}
	rows := make([]render.GroupRow, len(groups))
	for i, g := range groups {
		rows[i] = render.GroupRow{Label: g.Key, Count: g.Count, Total: s.Count, Width: width}
	}
	return panel + "\n\n" + render.RenderGroups(rows)
}
