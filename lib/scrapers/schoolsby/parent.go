package schoolsby

import (
	"context"
	"fmt"

	"schoolsby-client/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ParentPupils extracts the children listed on a parent's profile.
// Each row holds a pupil-role anchor (name and id) plus a second,
// unclassed anchor pointing at the pupil's class. Rows missing any of
// the three values are dropped.
func (c *Client) ParentPupils(ctx context.Context, parentID int, creds Credentials) ([]Pupil, error) {
	ctx, span := tracer.Start(ctx, "client:ParentPupils")
	defer span.End()

	path := fmt.Sprintf("parent/%d", parentID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return nil, err
	}

	var pupils []Pupil
	doc.Find("div.pp_line div.cnt table tr").Each(func(_ int, row *goquery.Selection) {
		pupilAnchor := row.Find("a.user_type_1").First()
		name, ok := ParseName(htmlutil.OwnText(pupilAnchor))
		if !ok {
			return
		}
		pupilID, ok := htmlutil.IDFromHref(pupilAnchor.AttrOr("href", ""))
		if !ok {
			return
		}

		classID := 0
		row.Find("a").Each(func(_ int, a *goquery.Selection) {
			if classID != 0 || a.AttrOr("class", "") != "" {
				return
			}
			if id, ok := htmlutil.IDFromHref(a.AttrOr("href", "")); ok {
				classID = id
			}
		})
		if classID == 0 {
			return
		}

		pupils = append(pupils, Pupil{ID: pupilID, Name: name, ClassID: classID})
	})
	return pupils, nil
}
