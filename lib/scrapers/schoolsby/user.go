package schoolsby

import (
	"context"
	"fmt"
	"strings"

	"schoolsby-client/lib/htmlutil"
)

// roles as they appear as profile path segments. "director" pages are
// served under their own segment but behave exactly like
// administration profiles, so they resolve to the same bucket.
var pathRoles = map[string]UserRole{
	"parent":         RoleParent,
	"pupil":          RolePupil,
	"teacher":        RoleTeacher,
	"administration": RoleAdministration,
	"director":       RoleAdministration,
}

// UserInfo extracts the name and role from a user's profile page. The
// role comes from the resolved path segment: the portal redirects
// /user/<id> to the role-specific page.
func (c *Client) UserInfo(ctx context.Context, userID int, creds Credentials) (User, error) {
	ctx, span := tracer.Start(ctx, "client:UserInfo")
	defer span.End()

	path := fmt.Sprintf("user/%d", userID)
	doc, finalURL, err := c.get(ctx, path, &creds)
	if err != nil {
		return User{}, err
	}

	title := doc.Find("div.title_box h1").First()
	if title.Length() == 0 {
		return User{}, parseErrorf(path, "profile title header missing")
	}
	headerText := htmlutil.OwnText(title)
	name, ok := ParseName(headerText)
	if !ok {
		return User{}, parseErrorf(path, "profile header %q is not a name", headerText)
	}

	segments := strings.Split(strings.Trim(finalURL.Path, "/"), "/")
	if len(segments) == 0 {
		return User{}, parseErrorf(path, "resolved url %q carries no role segment", finalURL)
	}
	role, ok := pathRoles[segments[0]]
	if !ok {
		return User{}, parseErrorf(path, "unknown role segment %q in resolved url", segments[0])
	}

	return User{ID: userID, Role: role, Name: name}, nil
}
