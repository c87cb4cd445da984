package schoolsby

import (
	"errors"
	"fmt"
)

// Transport and session failure classes. Every public operation
// returns one of these (possibly wrapped), a *ParseError, or nil.
var (
	// the portal rejected the username/password pair
	ErrAuthorizationFailed = errors.New("schoolsby: authorization unsuccessful")
	// the portal cleared the session cookie on an authenticated fetch
	ErrBadCredentials = errors.New("schoolsby: credentials rejected")
	ErrPageNotFound   = errors.New("schoolsby: page not found")
	// connection or request timeout reaching the portal
	ErrUnavailable = errors.New("schoolsby: portal did not respond")
)

// ParseError reports a page whose required structure was absent or
// malformed beyond what the extractor tolerates.
type ParseError struct {
	// path of the page that failed to parse
	Path string
	// what the extractor was looking for
	Element string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("schoolsby: parsing %q failed: %s", e.Path, e.Element)
}

func parseErrorf(path, format string, args ...any) *ParseError {
	return &ParseError{Path: path, Element: fmt.Sprintf(format, args...)}
}
