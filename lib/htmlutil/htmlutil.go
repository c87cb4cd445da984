// Package htmlutil holds the small DOM helpers shared by the page
// extractors: text extraction, anchor collection and href-suffix id
// parsing.
package htmlutil

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// OwnText returns the text of the node's direct text children only,
// skipping nested elements. The portal likes to wrap counters and
// badges inside headers, so Selection.Text() is usually too greedy.
func OwnText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	var buffer bytes.Buffer
	child := sel.Nodes[0].FirstChild
	for child != nil {
		if child.Type == html.TextNode {
			buffer.WriteString(child.Data)
		}
		child = child.NextSibling
	}
	return NormalizeSpace(buffer.String())
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func NormalizeSpace(s string) string {
	out := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			out.WriteRune(c)
		}
	}
	normalized := strings.TrimSpace(out.String())
	return innerWhitespace.ReplaceAllString(normalized, " ")
}

type Anchor struct {
	Name string
	Href string
}

func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	sel.Each(func(_ int, a *goquery.Selection) {
		anchors = append(anchors, Anchor{
			Name: NormalizeSpace(GetText(a.Get(0))),
			Href: a.AttrOr("href", ""),
		})
	})
	return anchors
}

// IDFromHref parses the trailing numeric path segment of an href, the
// way the portal encodes entity ids ("/pupil/100135",
// "https://demo.schools.by/class/8"). Returns ok=false when the last
// segment is not a number.
func IDFromHref(href string) (int, bool) {
	trimmed := strings.TrimSuffix(href, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil {
		return 0, false
	}
	return id, true
}
