package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the profile of the logged-in user.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient()
		creds := credentials(cmd.Context(), client)

		id, err := client.UserID(cmd.Context(), creds)
		if err != nil {
			fatal("failed to resolve user id", err)
		}
		user, err := client.UserInfo(cmd.Context(), id, creds)
		if err != nil {
			fatal("failed to fetch user profile", err)
		}

		fmt.Println("id:", user.ID)
		fmt.Println("name:", user.Name.String())
		fmt.Println("role:", user.Role)
	},
}
