package schoolsby

import (
	"context"
	"strconv"
	"strings"

	"schoolsby-client/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// BellSchedule extracts the school-wide bell schedule: two independent
// shift columns of (place, time) pairs. The bells page is public, so
// credentials are optional.
func (c *Client) BellSchedule(ctx context.Context, creds *Credentials) (BellSchedule, error) {
	ctx, span := tracer.Start(ctx, "client:BellSchedule")
	defer span.End()

	const path = "timetable/bells"
	doc, _, err := c.get(ctx, path, creds)
	if err != nil {
		return BellSchedule{}, err
	}

	schedule := BellSchedule{}
	doc.Find("div.bells_shift").Each(func(index int, shift *goquery.Selection) {
		places := parseBellColumn(shift)
		switch index {
		case 0:
			schedule.FirstShift = places
		case 1:
			schedule.SecondShift = places
		}
	})
	return schedule, nil
}

// parseBellColumn reads one shift column; rows whose time text fails
// to parse are headers or separators and are dropped.
func parseBellColumn(shift *goquery.Selection) []TimetablePlace {
	var places []TimetablePlace
	shift.Find("tr").Each(func(_ int, row *goquery.Selection) {
		constraints, ok := ParseTimeConstraints(htmlutil.OwnText(row.Find("td.time").First()))
		if !ok {
			return
		}
		numText := strings.TrimSuffix(htmlutil.OwnText(row.Find("td.num").First()), ".")
		place, err := strconv.Atoi(numText)
		if err != nil {
			return
		}
		places = append(places, TimetablePlace{Place: place, Time: constraints})
	})
	return places
}
