/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sentidash/sentidash/internal/colors"
	"github.com/sentidash/sentidash/internal/config"
	"github.com/sentidash/sentidash/internal/errors"
	"github.com/sentidash/sentidash/internal/logging"
	"github.com/sentidash/sentidash/internal/version"
	"github.com/spf13/cobra"
)

var (
	apiURL   string
	apiToken string
	debug    bool
)

// RootCmd represents the base command when called without any subcommands.
// Without a subcommand it opens the dashboard.
var RootCmd = &cobra.Command{
	Use:   "sentidash",
	Short: "Financial sentiment dashboard for the terminal.",
	Long: `Financial sentiment dashboard for the terminal.

Reads market sentiment, stock prices, correlation analysis and news from the
sentiment API and shows them as pages you can filter, page through and export.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := logging.ShutdownGlobal(); err != nil {
			colors.Debug(fmt.Sprintf("logging shutdown: %v", err))
		}
	},
	RunE: runTUI,
}

// Execute runs the root command and reports a failure on the console.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		errors.NewDefaultCLIHandler().Error(err.Error())
		return err
	}
	return nil
}

// setup loads the configuration and applies the global flags over it.
func setup(cmd *cobra.Command, args []string) error {
	config.Load()
	if cmd.Flags().Changed("api-url") {
		config.Set("api_url", apiURL)
	}
	if cmd.Flags().Changed("token") {
		config.Set("api_token", apiToken)
	}
	if debug {
		config.Set("debug", "true")
		config.Set("logging_enabled", "true")
		config.Set("logging_level", "debug")
	}
	if err := logging.InitGlobal(); err != nil {
		colors.Warning(fmt.Sprintf("logging disabled: %v", err))
	}
	return nil
}

func init() {
	RootCmd.Version = version.String()

	// Hide the completion command
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Sentiment API base URL (default from api_url)")
	RootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "Bearer token sent with every request (default from api_token)")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs to the state directory")

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != RootCmd {
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		printHelpText(cmd, cmd.OutOrStdout())
	})
}

// commandOrder is the order commands are listed in the help text.
var commandOrder = []string{
	"tui",
	"stats",
	"sentiment",
	"stocks",
	"correlation",
	"news",
	"health",
	"login",
	"serve-fixture",
	"help",
	"version",
}

func printHelpText(cmd *cobra.Command, w io.Writer) {
	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-16s %s", found.Name(), found.Short))
	}

	helpText := fmt.Sprintf(`sentidash v%s

Financial sentiment dashboard for the terminal.

USAGE:
    sentidash [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --api-url <url>  Sentiment API base URL
    --token <token>  Bearer token sent with every request
    --debug          Write debug logs
    -h, --help       Show help message
`, version.String(), strings.Join(cmdLines, "\n"))
	fmt.Fprint(w, helpText)
}
