package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	fencedCodeRe  = regexp.MustCompile("(?ms)^[ \t]*(```|~~~)[^\n]*\n.*?^[ \t]*(```|~~~)[ \t]*$")
	openFenceRe   = regexp.MustCompile("(?m)^[ \t]*(```|~~~).*$")
	headingMarkRe = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	quoteMarkRe   = regexp.MustCompile(`(?m)^[ \t]*(>[ \t]?)+`)
	imageRe       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	inlineCodeRe  = regexp.MustCompile("`([^`]*)`")
	emphasisRe    = regexp.MustCompile(`\*\*|__|\*|~~|==`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// CountWords returns the number of whitespace separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// EstimateReadTime formats ceil(words / wordsPerMinute) as "N min read".
// A body with no words reads in "0 min read".
func EstimateReadTime(body string, wordsPerMinute int) string {
	if wordsPerMinute <= 0 {
		wordsPerMinute = defaultWordsPerMinute
	}
	words := CountWords(body)
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return fmt.Sprintf("%d min read", minutes)
}

// StripMarkdown removes headers, emphasis markers, inline code ticks,
// fenced code blocks and link/image syntax, and collapses whitespace.
func StripMarkdown(s string) string {
	s = normalizeNewlines(s)
	s = fencedCodeRe.ReplaceAllString(s, "")
	s = openFenceRe.ReplaceAllString(s, "")
	s = headingMarkRe.ReplaceAllString(s, "")
	s = quoteMarkRe.ReplaceAllString(s, "")
	s = imageRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = emphasisRe.ReplaceAllString(s, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Excerpt strips body of Markdown syntax and truncates it to at most limit
// characters at the last whole-word boundary, appending "..." when cut.
func Excerpt(body string, limit int) string {
	if limit <= 0 {
		limit = defaultExcerptLength
	}
	plain := StripMarkdown(body)
	if utf8.RuneCountInString(plain) <= limit {
		return plain
	}
	runes := []rune(plain)
	cut := string(runes[:limit])
	if runes[limit] != ' ' {
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ") + "..."
}
