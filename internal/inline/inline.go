// Package inline splits block text into styled spans.
//
// Rendering is a fixed pipeline of passes. Each pass only splits plain
// text fragments left by the passes before it, and the text inside a span
// it produces is rendered by the passes after it. The order of passes is
// therefore part of the output contract.
package inline

import (
	"regexp"
	"strings"
)

// Kind tags a Span.
type Kind string

const (
	Text      Kind = "text"
	Code      Kind = "code"
	Bold      Kind = "bold"
	Italic    Kind = "italic"
	Strike    Kind = "strike"
	Link      Kind = "link"
	Highlight Kind = "highlight"
	Sub       Kind = "sub"
	Sup       Kind = "sup"
)

// Span is one rendered fragment. Text and Code spans carry Text; every
// other kind carries Children.
type Span struct {
	Kind     Kind   `json:"type"`
	Text     string `json:"text,omitempty"`
	Children []Span `json:"children,omitempty"`
	Href     string `json:"href,omitempty"`
	External bool   `json:"external,omitempty"`
}

type pass struct {
	kind Kind
	re   *regexp.Regexp
}

// passes run in this order. Longer delimiters come before the shorter ones
// they contain: bold before italic, strike before sub. A triple asterisk
// run is taken by the bold pass with the italic markers left inside it.
var passes = []pass{
	{Code, regexp.MustCompile("`([^`]+)`")},
	{Bold, regexp.MustCompile(`\*\*(\*[^*\s](?:[^*]*[^*\s])?\*|.+?)\*\*`)},
	{Italic, regexp.MustCompile(`\*([^*\s](?:[^*]*[^*\s])?)\*`)},
	{Strike, regexp.MustCompile(`~~([^~]+)~~`)},
	{Link, regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)},
	{Highlight, regexp.MustCompile(`==([^=]+)==`)},
	{Sub, regexp.MustCompile(`~([^~]+)~`)},
	{Sup, regexp.MustCompile(`\^([^^]+)\^`)},
}

// Render splits text into spans. Empty fragments are dropped, so an empty
// string renders to an empty slice.
func Render(text string) []Span {
	return renderFrom(text, 0)
}

func renderFrom(text string, first int) []Span {
	frags := []Span{{Kind: Text, Text: text}}
	for i := first; i < len(passes); i++ {
		frags = apply(i, frags)
	}
	out := frags[:0]
	for _, f := range frags {
		if f.Kind == Text && f.Text == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// apply runs passes[i] over the plain text fragments of frags.
func apply(i int, frags []Span) []Span {
	p := passes[i]
	out := make([]Span, 0, len(frags))
	for _, f := range frags {
		if f.Kind != Text {
			out = append(out, f)
			continue
		}
		matches := p.re.FindAllStringSubmatchIndex(f.Text, -1)
		if matches == nil {
			out = append(out, f)
			continue
		}
		last := 0
		for _, m := range matches {
			out = append(out, Span{Kind: Text, Text: f.Text[last:m[0]]})
			out = append(out, build(i, f.Text, m))
			last = m[1]
		}
		out = append(out, Span{Kind: Text, Text: f.Text[last:]})
	}
	return out
}

func build(i int, s string, m []int) Span {
	inner := s[m[2]:m[3]]
	switch kind := passes[i].kind; kind {
	case Code:
		return Span{Kind: Code, Text: inner}
	case Link:
		href := strings.TrimSpace(s[m[4]:m[5]])
		return Span{
			Kind:     Link,
			Children: renderFrom(inner, i+1),
			Href:     href,
			External: IsExternal(href),
		}
	default:
		return Span{Kind: kind, Children: renderFrom(inner, i+1)}
	}
}

// IsExternal reports whether a link target leaves the site.
func IsExternal(href string) bool {
	return strings.HasPrefix(href, "http")
}

// PlainText flattens spans to their visible text.
func PlainText(spans []Span) string {
	var b strings.Builder
	writePlain(&b, spans)
	return b.String()
}

func writePlain(b *strings.Builder, spans []Span) {
	for _, s := range spans {
		if s.Kind == Text || s.Kind == Code {
			b.WriteString(s.Text)
			continue
		}
		writePlain(b, s.Children)
	}
}
