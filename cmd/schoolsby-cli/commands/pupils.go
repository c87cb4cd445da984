package commands

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pupilsCmd)
}

var pupilsCmd = &cobra.Command{
	Use:   "pupils <class id>",
	Short: "List the pupils of a class.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		classID, err := strconv.Atoi(args[0])
		if err != nil {
			fatal("invalid class id", err)
		}

		client := createClient()
		creds := credentials(cmd.Context(), client)

		pupils, err := client.Pupils(cmd.Context(), classID, creds)
		if err != nil {
			fatal("failed to fetch pupils", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Name"})
		for _, p := range pupils {
			t.AppendRow(table.Row{p.ID, p.Name.String()})
		}
		t.Render()
	},
}
