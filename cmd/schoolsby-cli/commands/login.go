package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with the configured username/password and print the session cookies.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient()

		creds, err := client.Login(cmd.Context(), cfg.Username, cfg.Password)
		if err != nil {
			fatal("failed to login", err)
		}

		fmt.Println("csrftoken:", creds.CSRFToken)
		fmt.Println("sessionid:", creds.SessionID)
	},
}
