package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"schoolsby-client/lib/scrapers/schoolsby"
)

func init() {
	rootCmd.AddCommand(bellsCmd)
}

var bellsCmd = &cobra.Command{
	Use:   "bells",
	Short: "Print the school-wide bell schedule.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient()

		schedule, err := client.BellSchedule(cmd.Context(), nil)
		if err != nil {
			fatal("failed to fetch bell schedule", err)
		}

		renderBells("First shift", schedule.FirstShift)
		renderBells("Second shift", schedule.SecondShift)
	},
}

func renderBells(title string, places []schoolsby.TimetablePlace) {
	t := newTable()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Place", "Time"})
	for _, p := range places {
		t.AppendRow(table.Row{p.Place, p.Time.String()})
	}
	t.Render()
}
