/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sentidash/sentidash/internal/config"
	"github.com/sentidash/sentidash/internal/fixture"
	"github.com/sentidash/sentidash/internal/logging"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve-fixture command
var serveCmd = &cobra.Command{
	Use:   "serve-fixture",
	Short: "Serve a local API backed by seeded demo data",
	Long: `Serve the sentiment API from a SQLite database seeded with demo data.

The database is kept in memory unless fixture_db names a file. Point the
dashboard at it with --api-url http://` + "<fixture_addr>" + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			addr, _ := cmd.Flags().GetString("addr")
			config.Set("fixture_addr", addr)
		}
		if cmd.Flags().Changed("db") {
			db, _ := cmd.Flags().GetString("db")
			config.Set("fixture_db", db)
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := fixture.OpenStoreFromConfig(ctx)
		if err != nil {
			return fmt.Errorf("open fixture store: %w", err)
		}
		defer store.Close()

		srv := fixture.New(store, fixture.ConfigFromGlobal(), fixture.WithLogger(logging.GetGlobal()))
		fmt.Fprintf(cmd.OutOrStdout(), "Serving fixture API on http://%s\n", config.Get("fixture_addr", ""))
		return srv.Start(ctx)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default from fixture_addr)")
	serveCmd.Flags().String("db", "", "SQLite database file (default in memory)")
}
