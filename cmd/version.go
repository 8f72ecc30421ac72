/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sentidash/sentidash/internal/version"
	"github.com/spf13/cobra"
)

// versionOutputWriter is the writer used by PrintVersion. Can be changed for testing.
var versionOutputWriter io.Writer = os.Stdout

// GetVersion returns the version string including the commit when known.
func GetVersion() string {
	return version.String()
}

// PrintVersion prints the version line.
func PrintVersion() {
	fmt.Fprintf(versionOutputWriter, "sentidash v%s\n", GetVersion())
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the current version of sentidash.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		versionOutputWriter = cmd.OutOrStdout()
		PrintVersion()
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
