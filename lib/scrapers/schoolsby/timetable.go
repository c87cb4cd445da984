package schoolsby

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"schoolsby-client/lib/htmlutil"
	"schoolsby-client/lib/rustext"

	"github.com/PuerkitoBio/goquery"
)

type TimetableOptions struct {
	// WalkToJournals resolves the full teacher set of every slot by
	// visiting each referenced journal page (one fetch per distinct
	// journal id). Failures on individual journals are logged and
	// leave that slot's teacher set empty.
	WalkToJournals bool
	// GuessShift additionally estimates whether the class studies in
	// the second shift, from the start hour of the week's earliest
	// first-place lesson.
	GuessShift bool
}

type ClassTimetableResult struct {
	Timetable Timetable
	// nil unless GuessShift was requested
	SecondShift *bool
}

// ClassTimetable extracts a class's weekly timetable from its per-day
// blocks. Slot titles may come as anchors or as plain spans carrying a
// title attribute; duplicated titles collapse and combined-subject
// slots join with " / ".
func (c *Client) ClassTimetable(ctx context.Context, classID int, creds Credentials, opts TimetableOptions) (ClassTimetableResult, error) {
	ctx, span := tracer.Start(ctx, "client:ClassTimetable")
	defer span.End()

	path := fmt.Sprintf("class/%d/timetable", classID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return ClassTimetableResult{}, err
	}

	days := map[time.Weekday][]TimetableLesson{}
	var pageErr error
	doc.Find("div.ttb_boxes div.ttb_box").EachWithBreak(func(_ int, dayBox *goquery.Selection) bool {
		dayName := htmlutil.OwnText(dayBox.Find("div.ttb_day").First())
		day, err := rustext.Weekday(dayName)
		if err != nil {
			pageErr = parseErrorf(path, "day header: %v", err)
			return false
		}

		var lessons []TimetableLesson
		dayBox.Find("tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			numText := strings.TrimSuffix(htmlutil.OwnText(row.Find("td.num").First()), ".")
			place, err := strconv.Atoi(numText)
			if err != nil {
				pageErr = parseErrorf(path, "slot number %q is not a number", numText)
				return false
			}

			timeText := htmlutil.OwnText(row.Find("td.time").First())
			constraints, ok := ParseTimeConstraints(timeText)
			if !ok {
				pageErr = parseErrorf(path, "slot time %q is not parsable", timeText)
				return false
			}

			title, ok := slotTitle(row.Find("td.subjs").First())
			if !ok {
				// empty or placeholder slot
				return true
			}

			journalID := 0
			if href, exists := row.Find("a.subj").First().Attr("href"); exists {
				if id, ok := htmlutil.IDFromHref(href); ok {
					journalID = id
				}
			}

			lessons = append(lessons, TimetableLesson{
				Place:     place,
				Time:      constraints,
				Title:     title,
				ClassID:   classID,
				JournalID: journalID,
			})
			return true
		})
		if pageErr != nil {
			return false
		}
		days[day] = lessons
		return true
	})
	if pageErr != nil {
		return ClassTimetableResult{}, pageErr
	}

	if opts.WalkToJournals {
		c.walkJournals(ctx, days, creds)
	}

	result := ClassTimetableResult{Timetable: NewTimetable(days)}
	if opts.GuessShift {
		secondShift := guessSecondShift(days)
		result.SecondShift = &secondShift
	}
	return result, nil
}

// slotTitle collects the de-duplicated, non-empty title attributes of
// a slot cell. The portal renders subjects either as anchors or, on
// slots without journals, as plain spans. A cell with neither shape is
// an empty slot, not an error.
func slotTitle(cell *goquery.Selection) (string, bool) {
	elements := cell.Find("a")
	if elements.Length() == 0 {
		elements = cell.Find("span")
	}
	if elements.Length() == 0 {
		return "", false
	}

	var titles []string
	seen := map[string]bool{}
	elements.Each(func(_ int, el *goquery.Selection) {
		title := el.AttrOr("title", "")
		if title == "" || seen[title] {
			return
		}
		seen[title] = true
		titles = append(titles, title)
	})
	return strings.Join(titles, " / "), true
}

// walkJournals resolves teacher-id sets for every journal-linked slot.
// Each distinct journal page is fetched once; the cache lives only for
// this call.
func (c *Client) walkJournals(ctx context.Context, days map[time.Weekday][]TimetableLesson, creds Credentials) {
	cache := map[int][]int{}
	for day, lessons := range days {
		for i := range lessons {
			journalID := lessons[i].JournalID
			if journalID == 0 {
				continue
			}
			teachers, ok := cache[journalID]
			if !ok {
				var err error
				teachers, err = c.journalTeachers(ctx, journalID, creds)
				if err != nil {
					slog.WarnContext(ctx, "journal walk failed, leaving teacher set empty",
						"journal", journalID, "day", day, "err", err)
					teachers = []int{}
				}
				cache[journalID] = teachers
			}
			lessons[i].TeacherIDs = teachers
		}
	}
}

// guessSecondShift estimates the shift from the earliest first-place
// lesson of the Monday-Friday week: afternoon start means second
// shift. Saturday is excluded, short Saturday schedules start late
// regardless of shift.
func guessSecondShift(days map[time.Weekday][]TimetableLesson) bool {
	for _, day := range schoolWeek {
		if day == time.Saturday {
			continue
		}
		for _, lesson := range days[day] {
			if lesson.Place == 1 {
				return lesson.Time.StartHour >= 12
			}
		}
	}
	return false
}
