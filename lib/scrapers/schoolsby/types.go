package schoolsby

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Credentials is the cookie pair an authenticated session runs on.
type Credentials struct {
	CSRFToken string
	SessionID string
}

type UserRole string

const (
	RoleParent         UserRole = "parent"
	RolePupil          UserRole = "pupil"
	RoleTeacher        UserRole = "teacher"
	RoleAdministration UserRole = "administration"
	RoleDirector       UserRole = "director"
)

// Name is a person's full name as the portal prints it:
// "Last First [Middle]". Middle is empty when the portal omits it.
type Name struct {
	First  string
	Middle string
	Last   string
}

// ParseName splits a whitespace-separated "Last First [Middle]"
// string. Only 2- and 3-token inputs are names, anything else returns
// ok=false.
func ParseName(s string) (Name, bool) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 2:
		return Name{First: fields[1], Last: fields[0]}, true
	case 3:
		return Name{First: fields[1], Middle: fields[2], Last: fields[0]}, true
	default:
		return Name{}, false
	}
}

func (n Name) String() string {
	if n.Middle == "" {
		return n.Last + " " + n.First
	}
	return n.Last + " " + n.First + " " + n.Middle
}

type User struct {
	ID   int
	Role UserRole
	Name Name
}

type Pupil struct {
	ID      int
	Name    Name
	ClassID int
}

type SchoolClass struct {
	ID             int
	ClassTeacherID int
	Title          string
}

// TimeConstraints is a lesson's wall-clock slot.
type TimeConstraints struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// ParseTimeConstraints parses the portal's "H:MM – H:MM" bell format
// (the separator is an en dash). Malformed input returns ok=false.
func ParseTimeConstraints(s string) (TimeConstraints, bool) {
	parts := strings.Split(s, " – ")
	if len(parts) != 2 {
		return TimeConstraints{}, false
	}
	startHour, startMinute, ok := parseClock(parts[0])
	if !ok {
		return TimeConstraints{}, false
	}
	endHour, endMinute, ok := parseClock(parts[1])
	if !ok {
		return TimeConstraints{}, false
	}
	return TimeConstraints{
		StartHour:   startHour,
		StartMinute: startMinute,
		EndHour:     endHour,
		EndMinute:   endMinute,
	}, true
}

// String renders the slot back in the portal's bell format.
func (t TimeConstraints) String() string {
	return fmt.Sprintf("%d:%02d – %d:%02d",
		t.StartHour, t.StartMinute, t.EndHour, t.EndMinute)
}

func parseClock(s string) (int, int, bool) {
	hm := strings.Split(strings.TrimSpace(s), ":")
	if len(hm) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, 0, false
	}
	return hour, minute, true
}

// TimetableLesson is one slot of a weekly timetable template. It is
// not a dated event, see Lesson for those.
type TimetableLesson struct {
	Place int
	Time  TimeConstraints
	Title string
	// class the slot belongs to
	ClassID int
	// nil when teachers were not resolved (no journal walk)
	TeacherIDs []int
	// 0 when the slot has no journal link
	JournalID int
}

// Equal treats TeacherIDs as a set.
func (l TimetableLesson) Equal(other TimetableLesson) bool {
	if l.Place != other.Place ||
		l.Time != other.Time ||
		l.Title != other.Title ||
		l.ClassID != other.ClassID ||
		l.JournalID != other.JournalID {
		return false
	}
	return sameIDSet(l.TeacherIDs, other.TeacherIDs)
}

func sameIDSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int(nil), a...)
	bs := append([]int(nil), b...)
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// schoolWeek is every day the portal schedules lessons on. Sunday
// never appears in a timetable.
var schoolWeek = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
}

// Timetable maps each school weekday (Monday through Saturday) to its
// ordered lesson list. All six keys are always present.
type Timetable map[time.Weekday][]TimetableLesson

// NewTimetable copies `days` and fills in missing school weekdays with
// empty lists, so callers can index any day without a presence check.
func NewTimetable(days map[time.Weekday][]TimetableLesson) Timetable {
	t := make(Timetable, len(schoolWeek))
	for _, day := range schoolWeek {
		t[day] = append([]TimetableLesson(nil), days[day]...)
	}
	return t
}

// ShiftPair splits a day's lessons by school shift.
type ShiftPair struct {
	First  []TimetableLesson
	Second []TimetableLesson
}

// TwoShiftsTimetable is a teacher's weekly schedule, split by shift.
// Like Timetable, all six school weekdays are always present.
type TwoShiftsTimetable map[time.Weekday]ShiftPair

func NewTwoShiftsTimetable(days map[time.Weekday]ShiftPair) TwoShiftsTimetable {
	t := make(TwoShiftsTimetable, len(schoolWeek))
	for _, day := range schoolWeek {
		t[day] = days[day]
	}
	return t
}

// Lesson is one dated journal entry, a realized calendar event rather
// than a weekly template slot.
type Lesson struct {
	ID         int
	JournalID  int
	TeacherIDs []int
	// 0 when the lesson is held for the whole class
	SubgroupID int
	Title      string
	Date       time.Time
	Place      int
}

type Subgroup struct {
	ID       int
	Title    string
	PupilIDs []int
}

// TimetablePlace is one bell-schedule slot.
type TimetablePlace struct {
	Place int
	Time  TimeConstraints
}

// BellSchedule holds the two independent shift columns of the bells
// page.
type BellSchedule struct {
	FirstShift  []TimetablePlace
	SecondShift []TimetablePlace
}

// ClassTransfer records a pupil joining a class or moving between
// classes. FromClassID is 0 for "joined".
type ClassTransfer struct {
	FromClassID int
	ToClassID   int
	Date        time.Time
}

// PupilOrder is one entry of a class's manual pupil ordering.
type PupilOrder struct {
	PupilID int
	Order   int
}
