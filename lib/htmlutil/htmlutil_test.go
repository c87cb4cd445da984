package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, markup string) *goquery.Document {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return d
}

func TestGetText(t *testing.T) {
	d := doc(t, `<p>Ученица <a href="/class/8">11-го "А"</a> класса</p>`)
	require.Equal(t, `Ученица 11-го "А" класса`, GetText(d.Find("p").Get(0)))
}

func TestOwnText(t *testing.T) {
	d := doc(t, `<h1> Акулич  Анна <span class="count">25</span> Сергеевна </h1>`)
	require.Equal(t, "Акулич Анна Сергеевна", OwnText(d.Find("h1")))
	require.Equal(t, "", OwnText(d.Find("h2")))
}

func TestNormalizeSpace(t *testing.T) {
	require.Equal(t, "a b", NormalizeSpace("  a \t\n b  "))
	require.Equal(t, "", NormalizeSpace("\x00‎"))
	require.Equal(t, "x", NormalizeSpace("x"))
}

func TestGetAnchors(t *testing.T) {
	d := doc(t, `<div><a href="/pupil/1">One</a><a href="/pupil/2">Two <b>!</b></a></div>`)
	anchors := GetAnchors(d.Find("a"))
	require.Equal(t, []Anchor{
		{Name: "One", Href: "/pupil/1"},
		{Name: "Two !", Href: "/pupil/2"},
	}, anchors)
}

func TestIDFromHref(t *testing.T) {
	cases := []struct {
		href string
		id   int
		ok   bool
	}{
		{"/pupil/100135", 100135, true},
		{"https://demo.schools.by/class/8", 8, true},
		{"https://demo.schools.by/class/8/", 8, true},
		{"/class/8/edit", 0, false},
		{"pupils", 0, false},
		{"", 0, false},
	}
	for _, test := range cases {
		id, ok := IDFromHref(test.href)
		require.Equal(t, test.ok, ok, test.href)
		require.Equal(t, test.id, id, test.href)
	}
}
