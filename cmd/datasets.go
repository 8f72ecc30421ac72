/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sentidash/sentidash/internal/aggregate"
	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/colors"
	"github.com/sentidash/sentidash/internal/errors"
	"github.com/sentidash/sentidash/internal/export"
	"github.com/sentidash/sentidash/internal/tui/render"
	"github.com/sentidash/sentidash/internal/view"
	"github.com/spf13/cobra"
)

// datasetNow is the clock used for export file names. Can be changed for testing.
var datasetNow = time.Now

// settingFlags maps page settings to their flag name and help text.
var settingFlags = map[string][2]string{
	view.SettingSearch:    {"search", "Only rows containing this text"},
	view.SettingMin:       {"min", "Lower bound of the range filter"},
	view.SettingMax:       {"max", "Upper bound of the range filter"},
	view.SettingSymbol:    {"symbol", "Only this ticker symbol"},
	view.SettingSource:    {"source", "Only articles from this source"},
	view.SettingSentiment: {"sentiment", "Only articles with this label (positive, neutral, negative)"},
	view.SettingCategory:  {"category", "Only this sentiment category"},
	view.SettingRange:     {"hours", "Time window: 24h, 7d or 30d (or 24, 168, 720)"},
	view.SettingLimit:     {"limit", "Number of articles to fetch (10, 20, 50 or 100)"},
}

// datasetCommand describes one read only command over a page.
type datasetCommand struct {
	use      string
	short    string
	long     string
	settings []string
	build    func(src view.Source, opts []view.Option) view.Page
}

var datasetCommands = []datasetCommand{
	{
		use:      "stats",
		short:    "Show overall statistics and the sentiment timeline",
		long:     `Show total records, overall sentiment, the sentiment distribution and the hourly timeline.`,
		settings: []string{view.SettingSearch, view.SettingRange},
		build: func(src view.Source, opts []view.Option) view.Page {
			return view.NewDashboard(src, view.HoursFromConfig(), opts...)
		},
	},
	{
		use:      "sentiment",
		short:    "Show average sentiment per symbol",
		long:     `Show the average, minimum and maximum sentiment of every symbol in the time window.`,
		settings: []string{view.SettingSearch, view.SettingMin, view.SettingMax, view.SettingSymbol, view.SettingRange},
		build: func(src view.Source, opts []view.Option) view.Page {
			return view.NewSentiment(src, view.HoursFromConfig(), opts...)
		},
	},
	{
		use:      "stocks",
		short:    "Show hourly stock prices",
		long:     `Show hourly open, high, low and close prices with volume and price change.`,
		settings: []string{view.SettingSearch, view.SettingMin, view.SettingMax, view.SettingSymbol, view.SettingRange},
		build: func(src view.Source, opts []view.Option) view.Page {
			return view.NewStocks(src, view.HoursFromConfig(), opts...)
		},
	},
	{
		use:      "correlation",
		short:    "Show how sentiment relates to price movement",
		long:     `Show average price change and volume grouped by symbol and sentiment category.`,
		settings: []string{view.SettingCategory, view.SettingRange},
		build: func(src view.Source, opts []view.Option) view.Page {
			return view.NewCorrelation(src, view.DefaultCorrelationHours, opts...)
		},
	},
	{
		use:      "news",
		short:    "Show the latest news articles",
		long:     `Show the latest articles with their source and sentiment.`,
		settings: []string{view.SettingSearch, view.SettingSource, view.SettingSentiment, view.SettingLimit},
		build: func(src view.Source, opts []view.Option) view.Page {
			return view.NewNews(src, view.NewsLimitFromConfig(), opts...)
		},
	},
}

func newDatasetCmd(d datasetCommand) *cobra.Command {
	c := &cobra.Command{
		Use:   d.use,
		Short: d.short,
		Long:  d.long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDataset(cmd, d)
		},
	}
	for _, name := range d.settings {
		f := settingFlags[name]
		c.Flags().String(f[0], "", f[1])
	}
	c.Flags().Int("page", 1, "Page number to show")
	c.Flags().Int("page-size", 0, "Rows per page (default from page_size)")
	c.Flags().String("csv", "", `Export the page as CSV: "-" for stdout, otherwise a directory`)
	return c
}

func runDataset(cmd *cobra.Command, d datasetCommand) error {
	p := d.build(newSource(), view.OptionsFromConfig())

	for _, name := range d.settings {
		flag := settingFlags[name][0]
		if !cmd.Flags().Changed(flag) {
			continue
		}
		value, _ := cmd.Flags().GetString(flag)
		if _, err := p.Set(name, value); err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
	}
	if cmd.Flags().Changed("page-size") {
		n, _ := cmd.Flags().GetInt("page-size")
		if n < 1 {
			return fmt.Errorf("--page-size must be at least 1, got %d", n)
		}
		p.SetPageSize(n)
	}

	if err := load(cmd.Context(), p); err != nil {
		return err
	}

	n, _ := cmd.Flags().GetInt("page")
	p.SetPage(n)

	out := cmd.OutOrStdout()
	if cmd.Flags().Changed("csv") {
		dest, _ := cmd.Flags().GetString("csv")
		return exportDataset(out, p, dest)
	}
	return printDataset(out, p)
}

// load fetches every dataset of p and reports the failures. It fails only
// when nothing could be loaded.
func load(ctx context.Context, p view.Page) error {
	if ctx == nil {
		ctx = context.Background()
	}
	outcomes := view.LoadPage(ctx, p)
	handler := errors.NewDefaultCLIHandler()
	failed := 0
	for _, o := range outcomes {
		view.ReportTo(handler, o)
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 && failed == len(outcomes) {
		return fmt.Errorf("could not load %s", p.Title())
	}
	return nil
}

func exportDataset(w io.Writer, p view.Page, dest string) error {
	if dest == "-" {
		return p.Export(w)
	}
	path, err := export.SaveTo(dest, p.Name(), datasetNow(), p.Export)
	if stderrors.Is(err, export.ErrNoRows) {
		colors.Warning("Nothing to export on " + p.Title())
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, path)
	return nil
}

func printDataset(w io.Writer, p view.Page) error {
	if pairs := summaryPairs(p); len(pairs) > 0 {
		if err := printPairs(w, pairs); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	page := p.View()
	if page.TotalCount == 0 {
		fmt.Fprintln(w, "No rows")
		return nil
	}
	columns := p.Columns()
	rows := make([][]string, len(page.Rows))
	for i, r := range page.Rows {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = render.Cell(r, c)
		}
		rows[i] = row
	}
	if err := printTable(w, columns, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nPage %d of %d (%s rows)\n", page.Number, page.TotalPages, humanize.Comma(int64(page.TotalCount)))
	return nil
}

// summaryPairs returns the figures printed above the table of p.
func summaryPairs(p view.Page) [][2]string {
	switch p := p.(type) {
	case *view.Dashboard:
		stats, ok := p.Stats()
		if !ok {
			return nil
		}
		pairs := [][2]string{
			{"Total records", render.Cell(stats, "total_records")},
			{"Overall sentiment", render.Cell(stats, "overall_sentiment")},
			{"Avg stock price", render.Cell(stats, "avg_stock_price")},
			{"Latest data", render.Cell(stats, "latest_data_time")},
		}
		for _, d := range p.Distribution() {
			pairs = append(pairs, [2]string{d.SentimentCategory, humanize.Comma(int64(d.Count.Value))})
		}
		return pairs
	case *view.Sentiment:
		s := p.Summary()
		return [][2]string{
			{"Symbols", humanize.Comma(int64(s.Count))},
			{"Avg sentiment", s.Format(s.Mean, 3)},
			{"Min", s.Format(s.Min, 3)},
			{"Max", s.Format(s.Max, 3)},
		}
	case *view.Stocks:
		s := p.Stats()
		return [][2]string{
			{"Tickers", fmt.Sprint(len(p.Symbols()))},
			{"Avg close", s.Format(s.Mean, 2)},
			{"Low", s.Format(s.Min, 2)},
			{"High", s.Format(s.Max, 2)},
			{"Last", s.Format(s.Last, 2)},
		}
	case *view.Correlation:
		return [][2]string{
			{"Categories", fmt.Sprint(len(p.Categories()))},
			{"Timeline points", humanize.Comma(int64(len(p.Timeline())))},
		}
	case *view.News:
		s := p.AverageSentiment()
		label := "-"
		if !s.IsEmpty() {
			label = aggregate.SentimentLabel(s.Mean.InexactFloat64())
		}
		pairs := [][2]string{
			{"Articles", humanize.Comma(int64(s.Count))},
			{"Avg sentiment", s.Format(s.Mean, 3)},
			{"Overall", label},
		}
		for _, g := range aggregate.CountBy(p.Filtered(), api.FieldSourceName) {
			pairs = append(pairs, [2]string{g.Key, humanize.Comma(int64(g.Count))})
		}
		return pairs
	}
	return nil
}

func init() {
	for _, d := range datasetCommands {
		RootCmd.AddCommand(newDatasetCmd(d))
	}
}
