package inline

import (
	"reflect"
	"testing"
)

func txt(s string) Span { return Span{Kind: Text, Text: s} }

func wrap(k Kind, children ...Span) Span { return Span{Kind: k, Children: children} }

func TestRender_Bold(t *testing.T) {
	got := Render("Hello **world**.")
	want := []Span{txt("Hello "), wrap(Bold, txt("world")), txt(".")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestRender_NestedEmphasis(t *testing.T) {
	got := Render("**bold with *nested* emphasis**")
	want := []Span{wrap(Bold, txt("bold with "), wrap(Italic, txt("nested")), txt(" emphasis"))}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestRender_TripleAsterisk(t *testing.T) {
	got := Render("a ***strong*** claim")
	want := []Span{txt("a "), wrap(Bold, wrap(Italic, txt("strong"))), txt(" claim")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
	if p := PlainText(got); p != "a strong claim" {
		t.Errorf("plain = %q", p)
	}
}

func TestRender_CodeIsOpaque(t *testing.T) {
	got := Render("run `a **b** ~c~` now")
	want := []Span{txt("run "), {Kind: Code, Text: "a **b** ~c~"}, txt(" now")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestRender_StrikeBeforeSub(t *testing.T) {
	got := Render("~~gone~~ and H~2~O")
	want := []Span{
		wrap(Strike, txt("gone")),
		txt(" and H"),
		wrap(Sub, txt("2")),
		txt("O"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestRender_Links(t *testing.T) {
	got := Render("see [docs](https://go.dev) or [home]( /about )")
	if len(got) != 4 {
		t.Fatalf("len = %d: %+v", len(got), got)
	}
	ext, local := got[1], got[3]
	if ext.Kind != Link || ext.Href != "https://go.dev" || !ext.External {
		t.Errorf("external = %+v", ext)
	}
	if local.Href != "/about" || local.External {
		t.Errorf("local = %+v", local)
	}
	if PlainText(got) != "see docs or home" {
		t.Errorf("plain = %q", PlainText(got))
	}
}

func TestRender_HighlightAndSup(t *testing.T) {
	got := Render("==key== x^2^")
	want := []Span{wrap(Highlight, txt("key")), txt(" x"), wrap(Sup, txt("2"))}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestRender_Empty(t *testing.T) {
	if got := Render(""); len(got) != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestRender_UnmatchedMarkersStayText(t *testing.T) {
	for _, in := range []string{"2 * 3 = 6", "a ** b", "price ~ 5", "[x] done", "`open"} {
		got := Render(in)
		if !reflect.DeepEqual(got, []Span{txt(in)}) {
			t.Errorf("Render(%q) = %+v", in, got)
		}
	}
}

func TestRender_PlainProjectionIsStable(t *testing.T) {
	inputs := []string{
		"Hello **world**.",
		"**bold with *nested* emphasis**",
		"~~old~~ ==new== [link](http://x.y)",
		"plain words only",
		"***both***",
		"a ***strong*** claim",
	}
	for _, in := range inputs {
		plain := PlainText(Render(in))
		again := Render(plain)
		if !reflect.DeepEqual(again, []Span{txt(plain)}) {
			t.Errorf("%q: plain %q rendered to %+v", in, plain, again)
		}
	}
}
