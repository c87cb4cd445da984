package schoolsby

import (
	"context"
	"net/http"
	"testing"
	"time"

	"schoolsby-client/lib/telemetry"
	"schoolsby-client/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestClassInfo(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{"/class/8": "class.html"})

	class, err := client.ClassInfo(context.Background(), 8, testCreds)
	require.NoError(t, err)
	require.Equal(t, SchoolClass{
		ID:             8,
		ClassTeacherID: 108105,
		Title:          `11-й "А"`,
	}, class)
}

func TestClassInfoTeacherMissing(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div class="title_box"><h1>11-й "А"</h1></div>`))
	}))

	_, err := client.ClassInfo(context.Background(), 8, testCreds)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestPupils(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{"/class/8/pupils": "pupils.html"})

	pupils, err := client.Pupils(context.Background(), 8, testCreds)
	require.NoError(t, err)
	require.Equal(t, []Pupil{
		{ID: 101, Name: Name{First: "Анна", Middle: "Сергеевна", Last: "Акулич"}, ClassID: 8},
		{ID: 102, Name: Name{First: "Иван", Last: "Борисов"}, ClassID: 8},
		{ID: 103, Name: Name{First: "Дарья", Middle: "Андреевна", Last: "Волкова"}, ClassID: 8},
	}, pupils)
}

func TestPupilsEditForm(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{"/class/8/pupils": "pupils.html"})

	pupils, err := client.PupilsEditForm(context.Background(), 8, testCreds)
	require.NoError(t, err)
	require.Len(t, pupils, 9)

	require.Equal(t, Pupil{
		ID:      101,
		Name:    Name{First: "Анна", Middle: "Сергеевна", Last: "Акулич"},
		ClassID: 8,
	}, pupils[0])
	// a missing middle name does not drop the row
	require.Equal(t, Pupil{
		ID:      105,
		Name:    Name{First: "Алеся", Last: "Дубовик"},
		ClassID: 8,
	}, pupils[4])
	require.Equal(t, 109, pupils[8].ID)
}

func TestClassShift(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{
		"/class/8":  "class.html",
		"/class/12": "class_second_shift.html",
	})

	second, err := client.ClassShift(context.Background(), 8, testCreds)
	require.NoError(t, err)
	require.False(t, second)

	second, err = client.ClassShift(context.Background(), 12, testCreds)
	require.NoError(t, err)
	require.True(t, second)
}

func TestClassShiftSelectMissing(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	}))

	_, err := client.ClassShift(context.Background(), 8, testCreds)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestPupilsOrdering(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{"/class/8/pupils": "pupils.html"})

	ordering, err := client.PupilsOrdering(context.Background(), 8, testCreds)
	require.NoError(t, err)
	require.Equal(t, []PupilOrder{
		{PupilID: 101, Order: 1},
		{PupilID: 102, Order: 2},
		{PupilID: 103, Order: 3},
	}, ordering)
}

func TestTransfers(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{"/class/8/pupils": "pupils.html"})

	transfers, err := client.Transfers(context.Background(), 8, testCreds)
	require.NoError(t, err)

	date := func(year int, month time.Month, day int) time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, timezone.Location)
	}
	expected := map[int][]ClassTransfer{
		101: {
			{ToClassID: 8, Date: date(2023, time.September, 1)},
		},
		102: {
			{FromClassID: 7, ToClassID: 8, Date: date(2024, time.January, 15)},
		},
		103: {
			{ToClassID: 5, Date: date(2022, time.September, 1)},
			{FromClassID: 5, ToClassID: 8, Date: date(2023, time.September, 1)},
		},
		// 104 has an unparsable date phrase and 109 an unparsable class
		// anchor, both histories are skipped
	}
	require.Empty(t, cmp.Diff(expected, transfers))
}

func TestSubgroups(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	client := fixtureClient(t, map[string]string{"/class/8/subgroups": "subgroups.html"})

	subgroups, err := client.Subgroups(context.Background(), 8, testCreds)
	require.NoError(t, err)
	require.Equal(t, []Subgroup{
		{ID: 41, Title: "Мальчики", PupilIDs: []int{102, 108}},
		{ID: 42, Title: "Девочки", PupilIDs: []int{101}},
	}, subgroups)
}
