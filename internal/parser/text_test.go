package parser

import (
	"strings"
	"testing"
)

func TestEstimateReadTime(t *testing.T) {
	if got := EstimateReadTime("", 200); got != "0 min read" {
		t.Errorf("empty = %q", got)
	}
	if got := EstimateReadTime(strings.Repeat("w ", 200), 200); got != "1 min read" {
		t.Errorf("200 words = %q", got)
	}
	if got := EstimateReadTime(strings.Repeat("w ", 201), 200); got != "2 min read" {
		t.Errorf("201 words = %q", got)
	}
	if got := EstimateReadTime(strings.Repeat("w ", 100), 50); got != "2 min read" {
		t.Errorf("custom speed = %q", got)
	}
}

func TestStripMarkdown(t *testing.T) {
	in := "# Head\n\nSome **bold** and *it* with `code`.\n\n```go\nfunc x() {}\n```\n\nA [link](http://x.io) and ![img](a.png)."
	want := "Head Some bold and it with code. A link and ."
	if got := StripMarkdown(in); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestExcerpt_Short(t *testing.T) {
	if got := Excerpt("Just **this**.", 150); got != "Just this." {
		t.Errorf("got %q", got)
	}
}

func TestExcerpt_TruncatesAtWordBoundary(t *testing.T) {
	got := Excerpt(strings.Repeat("word ", 40), 150)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("missing ellipsis: %q", got)
	}
	head := strings.TrimSuffix(got, "...")
	if len(head) > 150 {
		t.Errorf("len = %d, want <= 150", len(head))
	}
	for _, w := range strings.Fields(head) {
		if w != "word" {
			t.Fatalf("cut mid-word: %q", w)
		}
	}
}
