package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/folio/internal/models"
)

var (
	idInvalidRe = regexp.MustCompile(`[^a-z0-9 -]`)
	idDashesRe  = regexp.MustCompile(`-+`)
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
	Line  int    `json:"line"`
}

// HeadingID derives an anchor id from heading text.
func HeadingID(title string) string {
	id := strings.ToLower(StripMarkdown(title))
	id = idInvalidRe.ReplaceAllString(id, "")
	id = strings.ReplaceAll(id, " ", "-")
	id = idDashesRe.ReplaceAllString(id, "-")
	return strings.Trim(id, "-")
}

// Outline lists the heading blocks in order. Repeated ids get a numeric
// suffix so every anchor is unique within the document.
func Outline(blocks []models.Block) []Heading {
	seen := map[string]int{}
	var out []Heading
	for _, b := range blocks {
		level := b.Level()
		if level == 0 {
			continue
		}
		text := b.Text()
		base := HeadingID(text)
		id := base
		for n := seen[base]; seen[id] > 0; n++ {
			id = base + "-" + strconv.Itoa(n)
			seen[base] = n + 1
		}
		seen[id]++
		out = append(out, Heading{Level: level, Text: text, ID: id, Line: b.Line})
	}
	return out
}

// TableRows returns the data rows of a table block split into cells. The
// header row, when present, is excluded; use Meta.Headers for it.
func TableRows(b models.Block) [][]string {
	if b.Kind != models.BlockTable {
		return nil
	}
	rows := b.Content
	if b.Meta != nil && len(b.Meta.Headers) > 0 && len(rows) > 0 {
		rows = rows[1:]
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, strings.Split(r, "|"))
	}
	return out
}
