package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestColorizeLink(t *testing.T) {
	output := termenv.NewOutput(&bytes.Buffer{}, termenv.WithProfile(termenv.TrueColor))

	if got := ColorizeLink(output, false, "public/sitemap.xml"); got != "public/sitemap.xml" {
		t.Fatalf("disabled = %q", got)
	}
	if got := ColorizeLink(nil, true, "public/sitemap.xml"); got != "public/sitemap.xml" {
		t.Fatalf("nil output = %q", got)
	}

	got := ColorizeLink(output, true, "public/sitemap.xml")
	if got == "public/sitemap.xml" || !strings.Contains(got, "public/sitemap.xml") {
		t.Fatalf("enabled = %q", got)
	}
}

func TestLinkTextWithoutColor(t *testing.T) {
	u := New(&bytes.Buffer{}, &bytes.Buffer{}, ColorNever, true)
	if got := u.LinkText("combos.csv"); got != "combos.csv" {
		t.Fatalf("LinkText = %q", got)
	}
}
