/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/sentidash/sentidash/internal/api"
	"github.com/spf13/cobra"
)

var (
	loginUser      string
	loginPassword  string
	loginTokenOnly bool
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange credentials for an access token",
	Long: `Log in to the API and print the access token.

The token is not stored. Pass it with --token or set SENTIDASH_API_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(loginUser) == "" {
			return fmt.Errorf("--user is required")
		}
		s, err := newSource().Login(cmd.Context(), loginUser, loginPassword)
		if err != nil {
			return fmt.Errorf("login: %s", api.Message(err))
		}

		out := cmd.OutOrStdout()
		if loginTokenOnly {
			fmt.Fprintln(out, s.AccessToken)
			return nil
		}
		expires := "never"
		if !s.ExpiresAt.IsZero() {
			expires = s.ExpiresAt.Format("2006-01-02 15:04:05 MST")
		}
		return printPairs(out, [][2]string{
			{"User", s.User.Username},
			{"Name", s.User.FullName},
			{"Role", s.User.Role},
			{"Expires", expires},
			{"Token", s.AccessToken},
		})
	},
}

func init() {
	RootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
	loginCmd.Flags().BoolVar(&loginTokenOnly, "token-only", false, "Print only the access token")
}
