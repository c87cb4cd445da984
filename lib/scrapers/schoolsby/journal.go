package schoolsby

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"schoolsby-client/lib/htmlutil"
	"schoolsby-client/lib/rustext"
	"schoolsby-client/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

// journalTeachers resolves the distinct teacher ids teaching under a
// journal, excluding blocks flagged as class-hour (the homeroom
// teacher is listed there without actually teaching the subject).
func (c *Client) journalTeachers(ctx context.Context, journalID int, creds Credentials) ([]int, error) {
	path := fmt.Sprintf("journal/%d", journalID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	var teachers []int
	seen := map[int]bool{}
	doc.Find("div.group_box").Each(func(_ int, block *goquery.Selection) {
		if block.HasClass("clhour") {
			return
		}
		block.Find("a[href*='teacher']").Each(func(_ int, a *goquery.Selection) {
			id, ok := htmlutil.IDFromHref(a.AttrOr("href", ""))
			if !ok || seen[id] {
				return
			}
			seen[id] = true
			teachers = append(teachers, id)
		})
	})
	return teachers, nil
}

var quotedTitle = regexp.MustCompile(`"([^"]+)"`)

// subgroupIDForBlock reverse-matches the quoted subgroup title of a
// group block caption against the caller's id→title map. 0 means the
// block covers the whole class.
func subgroupIDForBlock(caption string, subgroupTitles map[int]string) int {
	groups := quotedTitle.FindStringSubmatch(caption)
	if len(groups) < 2 {
		return 0
	}
	for id, title := range subgroupTitles {
		if title == groups[1] {
			return id
		}
	}
	return 0
}

// LessonsByJournal extracts every dated lesson recorded in a journal.
// The subject title is resolved once per journal; each group block
// contributes its teacher and optional subgroup to the rows it holds.
// Rows that fail to parse are dropped with a warning.
func (c *Client) LessonsByJournal(ctx context.Context, journalID int, subgroupTitles map[int]string, creds Credentials) ([]Lesson, error) {
	ctx, span := tracer.Start(ctx, "client:LessonsByJournal")
	defer span.End()

	path := fmt.Sprintf("journal/%d", journalID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	title := htmlutil.OwnText(doc.Find("div.title_box h1").First())
	if title == "" {
		return nil, parseErrorf(path, "journal subject title missing")
	}

	now := timezone.Now()
	var lessons []Lesson
	doc.Find("div.group_box").Each(func(_ int, block *goquery.Selection) {
		caption := htmlutil.OwnText(block.Find("div.group_title").First())
		subgroupID := subgroupIDForBlock(caption, subgroupTitles)

		teacherID := 0
		if href, exists := block.Find("a[href*='teacher']").First().Attr("href"); exists {
			if id, ok := htmlutil.IDFromHref(href); ok {
				teacherID = id
			}
		}
		var teacherIDs []int
		if teacherID != 0 {
			teacherIDs = []int{teacherID}
		}

		block.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			lessonIDValue := row.AttrOr("lesson_id", "")
			lessonID, err := strconv.Atoi(lessonIDValue)
			if err != nil {
				slog.WarnContext(ctx, "dropping journal row without lesson id",
					"journal", journalID, "lesson_id", lessonIDValue)
				return
			}

			dateText := htmlutil.OwnText(row.Find("td.date").First())
			date, ok := rustext.ParseDate(dateText, now)
			if !ok {
				slog.WarnContext(ctx, "dropping journal row with unparsable date",
					"journal", journalID, "date", dateText)
				return
			}

			placeText := htmlutil.OwnText(row.Find("td.place").First())
			place, err := strconv.Atoi(strings.TrimSuffix(placeText, "."))
			if err != nil {
				slog.WarnContext(ctx, "dropping journal row with unparsable place",
					"journal", journalID, "place", placeText)
				return
			}

			lessons = append(lessons, Lesson{
				ID:         lessonID,
				JournalID:  journalID,
				TeacherIDs: teacherIDs,
				SubgroupID: subgroupID,
				Title:      title,
				Date:       date,
				Place:      place,
			})
		})
	})
	return lessons, nil
}

// AllLessons walks every journal referenced from the class's lessons
// index page and concatenates their lessons. A journal that fails to
// parse is dropped with a warning rather than failing the whole walk.
func (c *Client) AllLessons(ctx context.Context, classID int, subgroupTitles map[int]string, creds Credentials) ([]Lesson, error) {
	ctx, span := tracer.Start(ctx, "client:AllLessons")
	defer span.End()

	path := fmt.Sprintf("class/%d/lessons", classID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	var journalIDs []int
	seen := map[int]bool{}
	doc.Find("a[href*='journal']").Each(func(_ int, a *goquery.Selection) {
		id, ok := htmlutil.IDFromHref(a.AttrOr("href", ""))
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		journalIDs = append(journalIDs, id)
	})

	var lessons []Lesson
	for _, journalID := range journalIDs {
		journalLessons, err := c.LessonsByJournal(ctx, journalID, subgroupTitles, creds)
		if err != nil {
			slog.WarnContext(ctx, "dropping journal that failed to parse",
				"class", classID, "journal", journalID, "err", err)
			continue
		}
		lessons = append(lessons, journalLessons...)
	}
	return lessons, nil
}
