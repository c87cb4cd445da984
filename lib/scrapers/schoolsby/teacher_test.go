package schoolsby

import (
	"context"
	"net/http"
	"testing"
	"time"

	"schoolsby-client/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestClassForTeacher(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{
		"/teacher/108105": "teacher.html",
		"/teacher/200":    "teacher_no_class.html",
	})

	class, err := client.ClassForTeacher(context.Background(), 108105, testCreds)
	require.NoError(t, err)
	require.NotNil(t, class)
	require.Equal(t, SchoolClass{
		ID:             8,
		ClassTeacherID: 108105,
		Title:          `11 "А"`,
	}, *class)

	// not being a class teacher is not an error
	class, err = client.ClassForTeacher(context.Background(), 200, testCreds)
	require.NoError(t, err)
	require.Nil(t, class)
}

func TestTeacherTimetableBothShifts(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{
		"/teacher/77/timetable": "teacher_timetable_both.html",
	})

	timetable, err := client.TeacherTimetable(context.Background(), 77, testCreds)
	require.NoError(t, err)

	morning := TimeConstraints{StartHour: 8, StartMinute: 30, EndHour: 9, EndMinute: 15}
	late := TimeConstraints{StartHour: 9, StartMinute: 25, EndHour: 10, EndMinute: 10}
	afternoon := TimeConstraints{StartHour: 13, StartMinute: 30, EndHour: 14, EndMinute: 15}

	expected := NewTwoShiftsTimetable(map[time.Weekday]ShiftPair{
		time.Monday: {
			First: []TimetableLesson{
				{Place: 1, Time: morning, Title: "Английский язык", ClassID: 8, TeacherIDs: []int{77}, JournalID: 500},
				{Place: 2, Time: late, Title: "Английский язык", ClassID: 8, TeacherIDs: []int{77}, JournalID: 500},
				{Place: 2, Time: late, Title: "Английский язык", ClassID: 10, TeacherIDs: []int{77}, JournalID: 510},
			},
		},
		// Tuesday holds an em-dash placeholder, Wednesday a flagged
		// cell, both are skipped; the crossed-out Thursday lesson stays
		time.Thursday: {
			First: []TimetableLesson{
				{Place: 1, Time: morning, Title: "Математика", ClassID: 9, TeacherIDs: []int{77}},
			},
		},
		time.Tuesday: {
			Second: []TimetableLesson{
				{Place: 1, Time: afternoon, Title: "Информатика", ClassID: 12, TeacherIDs: []int{77}},
			},
		},
	})
	require.Empty(t, cmp.Diff(expected, timetable))
}

func TestTeacherTimetableSingleShift(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{
		"/teacher/78/timetable": "teacher_timetable_first_only.html",
		"/teacher/79/timetable": "teacher_timetable_second_only.html",
	})

	timetable, err := client.TeacherTimetable(context.Background(), 78, testCreds)
	require.NoError(t, err)
	require.Len(t, timetable[time.Monday].First, 1)
	require.Empty(t, timetable[time.Monday].Second)
	require.Equal(t, "Физика", timetable[time.Monday].First[0].Title)

	timetable, err = client.TeacherTimetable(context.Background(), 79, testCreds)
	require.NoError(t, err)
	require.Empty(t, timetable[time.Monday].First)
	require.Len(t, timetable[time.Monday].Second, 1)
	require.Equal(t, 12, timetable[time.Monday].Second[0].ClassID)
}

func TestTeacherTimetableNoShiftTables(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	}))

	_, err := client.TeacherTimetable(context.Background(), 77, testCreds)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
