package commands

import (
	"strconv"
	"time"

	"schoolsby-client/lib/scrapers/schoolsby"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var walkJournals bool

func init() {
	timetableCmd.Flags().BoolVar(
		&walkJournals, "walk", false,
		"visit each lesson's journal page to resolve teacher ids",
	)
	rootCmd.AddCommand(timetableCmd)
	rootCmd.AddCommand(teacherTimetableCmd)
}

var timetableCmd = &cobra.Command{
	Use:   "timetable <class id>",
	Short: "Print the weekly timetable of a class.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		classID, err := strconv.Atoi(args[0])
		if err != nil {
			fatal("invalid class id", err)
		}

		client := createClient()
		creds := credentials(cmd.Context(), client)

		result, err := client.ClassTimetable(
			cmd.Context(), classID, creds,
			schoolsby.TimetableOptions{WalkToJournals: walkJournals},
		)
		if err != nil {
			fatal("failed to fetch timetable", err)
		}
		renderTimetable(result.Timetable)
	},
}

var teacherTimetableCmd = &cobra.Command{
	Use:   "teacher-timetable <teacher id>",
	Short: "Print the weekly timetable of a teacher, one table per shift.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		teacherID, err := strconv.Atoi(args[0])
		if err != nil {
			fatal("invalid teacher id", err)
		}

		client := createClient()
		creds := credentials(cmd.Context(), client)

		timetable, err := client.TeacherTimetable(cmd.Context(), teacherID, creds)
		if err != nil {
			fatal("failed to fetch teacher timetable", err)
		}
		renderTwoShiftsTimetable(timetable)
	},
}

func renderTwoShiftsTimetable(timetable schoolsby.TwoShiftsTimetable) {
	t := newTable()
	t.AppendHeader(table.Row{"Day", "Shift", "Place", "Time", "Title", "Class"})
	for _, day := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	} {
		pair := timetable[day]
		for _, lesson := range pair.First {
			t.AppendRow(table.Row{
				day.String(), 1, lesson.Place,
				lesson.Time.String(), lesson.Title, lesson.ClassID,
			})
		}
		for _, lesson := range pair.Second {
			t.AppendRow(table.Row{
				day.String(), 2, lesson.Place,
				lesson.Time.String(), lesson.Title, lesson.ClassID,
			})
		}
	}
	t.Render()
}

func renderTimetable(timetable schoolsby.Timetable) {
	t := newTable()
	t.AppendHeader(table.Row{"Day", "Place", "Time", "Title", "Journal"})
	for _, day := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	} {
		for _, lesson := range timetable[day] {
			t.AppendRow(table.Row{
				day.String(), lesson.Place,
				lesson.Time.String(), lesson.Title, lesson.JournalID,
			})
		}
	}
	t.Render()
}
