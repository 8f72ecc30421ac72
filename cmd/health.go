/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/sentidash/sentidash/internal/api"
	"github.com/sentidash/sentidash/internal/colors"
	"github.com/spf13/cobra"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API and its database are up",
	Long:  `Ask the API for its health report and print it. Exits non-zero when the API is unhealthy or unreachable.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newSource().Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check: %s", api.Message(err))
		}

		pairs := [][2]string{{"Status", h.Status}, {"Database", h.Database}}
		if h.Message != "" {
			pairs = append(pairs, [2]string{"Message", h.Message})
		}
		if err := printPairs(cmd.OutOrStdout(), pairs); err != nil {
			return err
		}
		if !h.Healthy() {
			return fmt.Errorf("API is %s", h.Status)
		}
		colors.Success("API is healthy")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(healthCmd)
}
