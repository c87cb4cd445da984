package schoolsby

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"schoolsby-client/lib/htmlutil"
	"schoolsby-client/lib/rustext"

	"github.com/PuerkitoBio/goquery"
)

// ClassForTeacher scans the profile's quick-info lines for a class
// anchor. A teacher without one is simply not a class teacher, so the
// result is nil without an error.
func (c *Client) ClassForTeacher(ctx context.Context, teacherID int, creds Credentials) (*SchoolClass, error) {
	ctx, span := tracer.Start(ctx, "client:ClassForTeacher")
	defer span.End()

	path := fmt.Sprintf("teacher/%d", teacherID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	for _, anchor := range htmlutil.GetAnchors(doc.Find("div.pp_line a[href]")) {
		if !strings.Contains(anchor.Href, ".schools.by/class/") {
			continue
		}
		id, ok := htmlutil.IDFromHref(anchor.Href)
		if !ok {
			continue
		}
		return &SchoolClass{
			ID:             id,
			ClassTeacherID: teacherID,
			Title:          strings.ReplaceAll(anchor.Name, "-го", ""),
		}, nil
	}
	return nil, nil
}

// TeacherTimetable extracts a teacher's weekly schedule, split by
// shift. Works for administration and director profiles as well, the
// portal renders their timetables with the same markup.
func (c *Client) TeacherTimetable(ctx context.Context, teacherID int, creds Credentials) (TwoShiftsTimetable, error) {
	ctx, span := tracer.Start(ctx, "client:TeacherTimetable")
	defer span.End()

	path := fmt.Sprintf("teacher/%d/timetable", teacherID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	firstShift, secondShift, err := detectShifts(doc, path)
	if err != nil {
		return nil, err
	}

	days := map[time.Weekday]ShiftPair{}
	tables := doc.Find("table")
	if firstShift {
		err = c.parseShiftTable(tables.Eq(0), path, teacherID, days, false)
		if err != nil {
			return nil, err
		}
	}
	if secondShift {
		// with both shifts present the second one is the second table
		tableIndex := 0
		if firstShift {
			tableIndex = 1
		}
		err = c.parseShiftTable(tables.Eq(tableIndex), path, teacherID, days, true)
		if err != nil {
			return nil, err
		}
	}

	return NewTwoShiftsTimetable(days), nil
}

// detectShifts figures out which shift tables the page holds. Two
// cc_timeTable containers mean both shifts. With exactly one, its
// position inside the tab container tells the shift apart: the first
// tab slot is the first shift. The positional rule is a heuristic
// carried over from the portal's observed tab layouts; it is not
// verified against unusual school configurations.
func detectShifts(doc *goquery.Document, path string) (bool, bool, error) {
	switch doc.Find("div.cc_timeTable").Length() {
	case 2:
		return true, true, nil
	case 1:
		firstShift := false
		secondShift := false
		doc.Find("div.tabs1_cbb").First().Children().Each(func(i int, child *goquery.Selection) {
			if child.HasClass("cc_timeTable") {
				if i == 1 {
					firstShift = true
				} else {
					secondShift = true
				}
			}
		})
		return firstShift, secondShift, nil
	default:
		return false, false, parseErrorf(path, "unexpected number of shift tables")
	}
}

// parseShiftTable walks one shift table. The num cell is mandatory;
// rows without parsable bells are separators and are skipped. Each
// weekday column may hold several stacked lesson blocks.
func (c *Client) parseShiftTable(table *goquery.Selection, path string, teacherID int, days map[time.Weekday]ShiftPair, secondShift bool) error {
	var pageErr error
	table.Find("tbody").First().Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		numText := strings.TrimSuffix(htmlutil.OwnText(row.Find("td.num").First()), ".")
		place, err := strconv.Atoi(numText)
		if err != nil {
			pageErr = parseErrorf(path, "slot number %q is not a number", numText)
			return false
		}

		bells, ok := ParseTimeConstraints(htmlutil.OwnText(row.Find("td.bells").First()))
		if !ok {
			// separator row
			return true
		}

		row.Find("td").EachWithBreak(func(index int, column *goquery.Selection) bool {
			// first two cells are num and bells, the rest are
			// Monday through Saturday
			if index < 2 || index-2 >= len(schoolWeek) {
				return true
			}
			day := schoolWeek[index-2]

			if class, _ := column.Attr("class"); class != "" && class != "crossed-lesson" {
				return true
			}
			if htmlutil.OwnText(column) == "—" {
				return true
			}

			column.Find("div.lesson").EachWithBreak(func(_ int, lessonBlock *goquery.Selection) bool {
				title, journalID := lessonTitleAndJournal(lessonBlock)
				if title == "" {
					return true
				}

				classAnchor := lessonBlock.Find("span.class a").First()
				classID, ok := htmlutil.IDFromHref(classAnchor.AttrOr("href", ""))
				if !ok {
					pageErr = parseErrorf(path, "lesson block without a class badge")
					return false
				}

				pair := days[day]
				lesson := TimetableLesson{
					Place:      place,
					Time:       bells,
					Title:      rustext.UnfoldLessonTitle(title),
					ClassID:    classID,
					TeacherIDs: []int{teacherID},
					JournalID:  journalID,
				}
				if secondShift {
					pair.Second = append(pair.Second, lesson)
				} else {
					pair.First = append(pair.First, lesson)
				}
				days[day] = pair
				return true
			})
			return pageErr == nil
		})
		return pageErr == nil
	})
	return pageErr
}

// lessonTitleAndJournal reads a lesson block's subject. Slots with a
// journal render it as an anchor, the rest fall back to bold text.
func lessonTitleAndJournal(lessonBlock *goquery.Selection) (string, int) {
	subject := lessonBlock.Find("a.subject").First()
	if subject.Length() > 0 {
		journalID := 0
		if id, ok := htmlutil.IDFromHref(subject.AttrOr("href", "")); ok {
			journalID = id
		}
		return htmlutil.OwnText(subject), journalID
	}
	return htmlutil.OwnText(lessonBlock.Find("b").First()), 0
}
