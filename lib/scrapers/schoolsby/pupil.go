package schoolsby

import (
	"context"
	"fmt"
	"regexp"

	"schoolsby-client/lib/htmlutil"
)

// the class link on a pupil profile reads like `11-го "А"`
var classAnchorText = regexp.MustCompile(`^\d{1,2}-го\s".+"$`)

// PupilClass resolves the class a pupil belongs to. The profile only
// carries the class id, so a second fetch fills in the class metadata.
func (c *Client) PupilClass(ctx context.Context, pupilID int, creds Credentials) (SchoolClass, error) {
	ctx, span := tracer.Start(ctx, "client:PupilClass")
	defer span.End()

	path := fmt.Sprintf("pupil/%d", pupilID)
	doc, _, err := c.get(ctx, path, &creds)
	if err != nil {
		return SchoolClass{}, err
	}

	classID := 0
	for _, anchor := range htmlutil.GetAnchors(doc.Find("div.pp_line a[href]")) {
		if !classAnchorText.MatchString(anchor.Name) {
			continue
		}
		if id, ok := htmlutil.IDFromHref(anchor.Href); ok {
			classID = id
			break
		}
	}
	if classID == 0 {
		return SchoolClass{}, parseErrorf(path, "class anchor missing from pupil profile")
	}

	return c.ClassInfo(ctx, classID, creds)
}
