/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/sentidash/sentidash/internal/config"
	"github.com/sentidash/sentidash/internal/logging"
	"github.com/sentidash/sentidash/internal/notify"
	"github.com/sentidash/sentidash/internal/tui/state"
	"github.com/sentidash/sentidash/internal/view"
	"github.com/spf13/cobra"
)

var tuiAnnounce bool

// runDashboard starts the dashboard. Can be replaced for testing.
var runDashboard = state.Run

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive dashboard.

KEY BINDINGS:
    1-5, tab        Switch page
    ], [            Next or previous page of rows
    j/k, g/G        Scroll
    /               Search
    :               Command (min 0.2, symbol AAPL, range 7d, page 2, export)
    t               Cycle the time window
    r               Reload, bypassing the cache
    e               Export the visible rows as CSV
    c               Clear filters
    x, X            Dismiss the oldest or all notifications
    q               Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger := logging.GetGlobal()
	bus := notify.NewBus(
		notify.WithMaxVisible(config.GetInt("notify_max_visible", 0)),
		notify.WithLogger(logger),
	)
	defer bus.Close()

	pages := view.NewPages(newSource(), view.HoursFromConfig(), view.NewsLimitFromConfig(), view.OptionsFromConfig()...)
	return runDashboard(cmd.Context(), state.Options{
		Pages:     pages,
		Bus:       bus,
		ExportDir: config.Get("export_dir", "."),
		Logger:    logger,
		Announce:  tuiAnnounce,
	})
}

func init() {
	RootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiAnnounce, "announce", false, "Notify after every successful load")
}
