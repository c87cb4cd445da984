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
	"schoolsby-client/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

// ClassInfo extracts a class's title and class-teacher id. The portal
// always renders the class teacher in the right-hand info column, so
// its absence is treated as a broken page rather than missing data.
func (c *Client) ClassInfo(ctx context.Context, classID int, creds Credentials) (SchoolClass, error) {
	ctx, span := tracer.Start(ctx, "client:ClassInfo")
	defer span.End()

	path := fmt.Sprintf("class/%d", classID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return SchoolClass{}, err
	}

	title := htmlutil.OwnText(doc.Find("div.title_box h1").First())
	if title == "" {
		return SchoolClass{}, parseErrorf(path, "class title header missing")
	}

	teacherAnchor := doc.Find("div.grid_st_r div.r_user_info p.name a.user_type_3").First()
	teacherID, ok := htmlutil.IDFromHref(teacherAnchor.AttrOr("href", ""))
	if !ok {
		return SchoolClass{}, parseErrorf(path, "class teacher anchor missing")
	}

	return SchoolClass{ID: classID, ClassTeacherID: teacherID, Title: title}, nil
}

// Pupils extracts the class roster from the pupil-role anchors of the
// pupils page, in document order.
func (c *Client) Pupils(ctx context.Context, classID int, creds Credentials) ([]Pupil, error) {
	ctx, span := tracer.Start(ctx, "client:Pupils")
	defer span.End()

	path := fmt.Sprintf("class/%d/pupils", classID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	var pupils []Pupil
	var rowErr error
	doc.Find("div.pupil a.user_type_1").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		id, ok := htmlutil.IDFromHref(a.AttrOr("href", ""))
		if !ok {
			rowErr = parseErrorf(path, "pupil anchor href %q carries no id", a.AttrOr("href", ""))
			return false
		}
		name, ok := ParseName(htmlutil.OwnText(a))
		if !ok {
			rowErr = parseErrorf(path, "pupil anchor text %q is not a name", htmlutil.OwnText(a))
			return false
		}
		pupils = append(pupils, Pupil{ID: id, Name: name, ClassID: classID})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return pupils, nil
}

func rowInputValue(row *goquery.Selection, suffix string) string {
	return row.Find("input[name$='" + suffix + "']").First().AttrOr("value", "")
}

// PupilsEditForm extracts the roster from the editable form the class
// teacher sees: one row of paired input fields per pupil. This is the
// authoritative variant, the portal keeps it current even when the
// anchor roster lags. Rows missing an id, first or last name are
// dropped silently.
func (c *Client) PupilsEditForm(ctx context.Context, classID int, creds Credentials) ([]Pupil, error) {
	ctx, span := tracer.Start(ctx, "client:PupilsEditForm")
	defer span.End()

	path := fmt.Sprintf("class/%d/pupils", classID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	var pupils []Pupil
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		id, err := strconv.Atoi(rowInputValue(row, "-id"))
		if err != nil {
			return
		}
		last := rowInputValue(row, "-last_name")
		first := rowInputValue(row, "-first_name")
		if last == "" || first == "" {
			return
		}
		pupils = append(pupils, Pupil{
			ID: id,
			Name: Name{
				First:  first,
				Middle: rowInputValue(row, "-middle_name"),
				Last:   last,
			},
			ClassID: classID,
		})
	})
	return pupils, nil
}

// ClassShift reports whether the class is assigned to the second
// shift. The shift select's option "1" is the first shift.
func (c *Client) ClassShift(ctx context.Context, classID int, creds Credentials) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:ClassShift")
	defer span.End()

	path := fmt.Sprintf("class/%d", classID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return false, err
	}

	selected := doc.Find("select[name=shift] option[selected]").First()
	if selected.Length() == 0 {
		return false, parseErrorf(path, "shift select missing")
	}
	return selected.AttrOr("value", "") != "1", nil
}

// PupilsOrdering extracts the class's manual pupil ordering: a count
// field followed by that many indexed (id, order) input pairs.
func (c *Client) PupilsOrdering(ctx context.Context, classID int, creds Credentials) ([]PupilOrder, error) {
	ctx, span := tracer.Start(ctx, "client:PupilsOrdering")
	defer span.End()

	path := fmt.Sprintf("class/%d/pupils", classID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	countField := doc.Find("input[name=pupils_count]").First()
	count, err := strconv.Atoi(countField.AttrOr("value", ""))
	if err != nil {
		return nil, parseErrorf(path, "pupil count field missing or not a number")
	}

	ordering := make([]PupilOrder, 0, count)
	for i := 0; i < count; i++ {
		idValue := doc.Find(fmt.Sprintf("input[name=pupil_%d_id]", i)).First().AttrOr("value", "")
		orderValue := doc.Find(fmt.Sprintf("input[name=pupil_%d_order]", i)).First().AttrOr("value", "")
		id, err := strconv.Atoi(idValue)
		if err != nil {
			return nil, parseErrorf(path, "ordering entry %d has no pupil id", i)
		}
		order, err := strconv.Atoi(orderValue)
		if err != nil {
			return nil, parseErrorf(path, "ordering entry %d has no order value", i)
		}
		ordering = append(ordering, PupilOrder{PupilID: id, Order: order})
	}
	return ordering, nil
}

// Transfers extracts each pupil's class movement history. A history
// block holds one or two entries, each either "joined this class" (one
// anchor) or "moved from class A to class B" (two anchors), paired
// with a date phrase. Valid anchor totals are therefore 1 through 4.
func (c *Client) Transfers(ctx context.Context, classID int, creds Credentials) (map[int][]ClassTransfer, error) {
	ctx, span := tracer.Start(ctx, "client:Transfers")
	defer span.End()

	path := fmt.Sprintf("class/%d/pupils", classID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	now := timezone.Now()
	transfers := map[int][]ClassTransfer{}
	var rowErr error
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		pupilID, err := strconv.Atoi(rowInputValue(row, "-id"))
		if err != nil {
			return true
		}
		history := row.Find("div.history").First()
		if history.Length() == 0 {
			return true
		}

		var classIDs []int
		badAnchor := false
		for _, anchor := range htmlutil.GetAnchors(history.Find("a")) {
			id, ok := htmlutil.IDFromHref(anchor.Href)
			if !ok {
				badAnchor = true
				break
			}
			classIDs = append(classIDs, id)
		}
		if badAnchor {
			slog.WarnContext(ctx, "skipping transfer history with unparsable class anchor",
				"class", classID, "pupil", pupilID)
			return true
		}

		var dates []time.Time
		badDate := false
		history.Find("span.date").Each(func(_ int, cell *goquery.Selection) {
			date, ok := rustext.ParseDate(htmlutil.OwnText(cell), now)
			if !ok {
				badDate = true
				return
			}
			dates = append(dates, date)
		})
		if badDate {
			slog.WarnContext(ctx, "skipping transfer history with unparsable date",
				"class", classID, "pupil", pupilID)
			return true
		}

		entries, err := buildTransfers(classIDs, dates)
		if err != nil {
			rowErr = parseErrorf(path, "pupil %d: %v", pupilID, err)
			return false
		}
		transfers[pupilID] = entries
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return transfers, nil
}

func buildTransfers(classIDs []int, dates []time.Time) ([]ClassTransfer, error) {
	at := func(i int) time.Time {
		if i < len(dates) {
			return dates[i]
		}
		return time.Time{}
	}
	switch len(classIDs) {
	case 1:
		return []ClassTransfer{
			{ToClassID: classIDs[0], Date: at(0)},
		}, nil
	case 2:
		return []ClassTransfer{
			{FromClassID: classIDs[0], ToClassID: classIDs[1], Date: at(0)},
		}, nil
	case 3:
		return []ClassTransfer{
			{ToClassID: classIDs[0], Date: at(0)},
			{FromClassID: classIDs[1], ToClassID: classIDs[2], Date: at(1)},
		}, nil
	case 4:
		return []ClassTransfer{
			{FromClassID: classIDs[0], ToClassID: classIDs[1], Date: at(0)},
			{FromClassID: classIDs[2], ToClassID: classIDs[3], Date: at(1)},
		}, nil
	default:
		return nil, fmt.Errorf("history holds %d class anchors, expected 1 to 4", len(classIDs))
	}
}

// Subgroups extracts the class's subgroup blocks: a title, a numeric
// id taken from the edit link, and the member pupil list. Rows holding
// two or more anchors are controls rather than pupils and are skipped.
func (c *Client) Subgroups(ctx context.Context, classID int, creds Credentials) ([]Subgroup, error) {
	ctx, span := tracer.Start(ctx, "client:Subgroups")
	defer span.End()

	path := fmt.Sprintf("class/%d/subgroups", classID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	var subgroups []Subgroup
	var blockErr error
	doc.Find("div.subgroup").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		title := htmlutil.OwnText(block.Find("div.title").First())

		editHref := block.Find("a[href$='edit']").First().AttrOr("href", "")
		id, ok := htmlutil.IDFromHref(strings.TrimSuffix(editHref, "/edit"))
		if !ok {
			blockErr = parseErrorf(path, "subgroup %q has no parsable edit link", title)
			return false
		}

		var pupilIDs []int
		block.Find("tr").Each(func(_ int, row *goquery.Selection) {
			anchors := row.Find("a")
			if anchors.Length() != 1 {
				return
			}
			pupilID, ok := htmlutil.IDFromHref(anchors.First().AttrOr("href", ""))
			if !ok {
				return
			}
			pupilIDs = append(pupilIDs, pupilID)
		})

		subgroups = append(subgroups, Subgroup{ID: id, Title: title, PupilIDs: pupilIDs})
		return true
	})
	if blockErr != nil {
		return nil, blockErr
	}
	return subgroups, nil
}
