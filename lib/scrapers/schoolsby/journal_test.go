package schoolsby

import (
	"context"
	"testing"
	"time"

	"schoolsby-client/lib/telemetry"
	"schoolsby-client/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testSubgroupTitles = map[int]string{
	41: "Мальчики",
	42: "Девочки",
}

func TestJournalTeachers(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{"/journal/500": "journal.html"})

	teachers, err := client.journalTeachers(context.Background(), 500, testCreds)
	require.NoError(t, err)
	// the class-hour block's homeroom teacher is excluded
	require.Equal(t, []int{108105, 108107}, teachers)
}

func TestLessonsByJournal(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{"/journal/500": "journal.html"})

	lessons, err := client.LessonsByJournal(context.Background(), 500, testSubgroupTitles, testCreds)
	require.NoError(t, err)

	date := func(day int) time.Time {
		return time.Date(2023, time.September, day, 0, 0, 0, 0, timezone.Location)
	}
	expected := []Lesson{
		{
			ID:         9001,
			JournalID:  500,
			TeacherIDs: []int{108105},
			SubgroupID: 41,
			Title:      "Английский язык",
			Date:       date(1),
			Place:      1,
		},
		{
			ID:         9002,
			JournalID:  500,
			TeacherIDs: []int{108105},
			SubgroupID: 41,
			Title:      "Английский язык",
			Date:       date(4),
			Place:      2,
		},
		// rows without a lesson id or with an unparsable date are dropped
		{
			ID:         9010,
			JournalID:  500,
			TeacherIDs: []int{108107},
			SubgroupID: 0, // whole-class block
			Title:      "Английский язык",
			Date:       date(5),
			Place:      5,
		},
	}
	require.Empty(t, cmp.Diff(expected, lessons))
}

func TestLessonsByJournalTitleMissing(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{"/journal/500": "login_form.html"})

	_, err := client.LessonsByJournal(context.Background(), 500, nil, testCreds)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestAllLessons(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{
		"/class/8/lessons": "lessons.html",
		"/journal/500":     "journal.html",
		// journal 503 404s and is skipped
	})

	lessons, err := client.AllLessons(context.Background(), 8, testSubgroupTitles, testCreds)
	require.NoError(t, err)

	// journal 500 is linked twice but contributes its lessons once
	require.Len(t, lessons, 3)
	for _, lesson := range lessons {
		require.Equal(t, 500, lesson.JournalID)
	}
}
