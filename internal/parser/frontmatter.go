package parser

import (
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/models"
)

const (
	yamlDelim = "---"
	tomlDelim = "+++"

	dateLayout = "2006-01-02"
)

// keyKind describes how the raw value of a recognised key is coerced.
type keyKind int

const (
	keyString keyKind = iota
	keyList
	keyBool
	keyDate
	keyInt
)

// schema is the closed set of recognised frontmatter keys.
var schema = map[string]keyKind{
	"title":       keyString,
	"slug":        keyString,
	"author":      keyString,
	"excerpt":     keyString,
	"description": keyString,
	"summary":     keyString,
	"category":    keyString,
	"readTime":    keyString,
	"image":       keyString,
	"tags":        keyList,
	"categories":  keyList,
	"featured":    keyBool,
	"published":   keyBool,
	"draft":       keyBool,
	"date":        keyDate,
	"publishDate": keyDate,
	"lastmod":     keyDate,
	"weight":      keyInt,
	"priority":    keyInt,
}

// ExtractFrontmatter splits doc into its metadata block and body and
// resolves every Frontmatter field. It never fails: malformed lines are
// skipped and absent fields receive defaults. When doc has no delimited
// block the body is doc unchanged.
func ExtractFrontmatter(doc string, opts ...Option) (models.Frontmatter, string) {
	o := newOptions(opts)
	fields, ignored, format, body, ok := splitFrontmatter(doc)
	if !ok {
		body = doc
	}
	fm := resolve(fields, body, o)
	fm.Ignored = ignored
	fm.Format = format
	return fm, body
}

// splitFrontmatter detects a ---/--- or +++/+++ pair starting on the first
// line and parses the lines between them.
func splitFrontmatter(doc string) (models.Fields, []string, string, string, bool) {
	lines := strings.Split(normalizeNewlines(doc), "\n")
	if len(lines) < 2 {
		return nil, nil, "", "", false
	}
	open := strings.TrimRight(lines[0], " \t")
	if open != yamlDelim && open != tomlDelim {
		return nil, nil, "", "", false
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == open {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, nil, "", "", false
	}

	format := "yaml"
	if open == tomlDelim {
		format = "toml"
	}
	fields, ignored := parseFields(lines[1:end], open == tomlDelim)

	body := strings.Join(lines[end+1:], "\n")
	body = strings.TrimLeft(body, "\n")
	body = strings.TrimRight(body, " \t\n")
	return fields, ignored, format, body, true
}

// parseFields parses simple key:value (or key = value for +++ blocks)
// lines. A list key with an empty value collects the "- item" lines that
// follow it.
func parseFields(lines []string, toml bool) (models.Fields, []string) {
	fields := models.Fields{}
	var ignored []string
	pendingList := ""

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if pendingList != "" && strings.HasPrefix(trimmed, "- ") {
			item := stripQuotes(strings.TrimSpace(trimmed[2:]))
			if item != "" {
				v := fields[pendingList]
				v.List = append(v.List, item)
				fields[pendingList] = v
			}
			continue
		}
		pendingList = ""

		key, raw, ok := splitKeyValue(trimmed, toml)
		if !ok {
			continue
		}
		kind, known := schema[key]
		if !known {
			ignored = append(ignored, key)
			continue
		}
		if kind == keyList && raw == "" {
			fields[key] = models.ListValue(nil)
			pendingList = key
			continue
		}
		fields[key] = coerce(kind, raw)
	}
	return fields, ignored
}

func splitKeyValue(line string, toml bool) (string, string, bool) {
	sep := strings.Index(line, ":")
	if toml {
		if eq := strings.Index(line, "="); eq >= 0 && (sep < 0 || eq < sep) {
			sep = eq
		}
	}
	if sep <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:sep])
	if key == "" {
		return "", "", false
	}
	raw := strings.TrimSpace(line[sep+1:])
	return key, raw, true
}

func coerce(kind keyKind, raw string) models.Value {
	switch kind {
	case keyList:
		return models.ListValue(parseList(raw))
	case keyBool:
		return models.BoolValue(strings.EqualFold(stripQuotes(raw), "true"))
	case keyInt:
		n, err := strconv.Atoi(stripQuotes(raw))
		if err != nil {
			n = 0
		}
		return models.IntValue(n)
	default:
		// Dates keep the declared text; the validator checks it and
		// resolve substitutes today when it does not parse.
		return models.StringValue(stripQuotes(raw))
	}
}

// parseList reads a bracketed list literal or a comma separated list.
func parseList(raw string) []string {
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		var items []string
		if err := yaml.Unmarshal([]byte(raw), &items); err == nil {
			return compact(items)
		}
		raw = raw[1 : len(raw)-1]
	} else {
		raw = stripQuotes(raw)
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		items = append(items, stripQuotes(strings.TrimSpace(p)))
	}
	return compact(items)
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date.
func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Format(dateLayout), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(dateLayout), true
	}
	return "", false
}

// resolve applies the defaulting rules in their fixed order.
func resolve(fields models.Fields, body string, o options) models.Frontmatter {
	if fields == nil {
		fields = models.Fields{}
	}
	fm := models.Frontmatter{Fields: fields}

	str := func(key string) string {
		if v, ok := fields[key]; ok && v.Kind == models.KindString {
			return strings.TrimSpace(v.Str)
		}
		return ""
	}
	list := func(key string) []string {
		if v, ok := fields[key]; ok && v.Kind == models.KindList {
			return append([]string(nil), v.List...)
		}
		return nil
	}
	flag := func(key string) bool {
		v, ok := fields[key]
		return ok && v.Kind == models.KindBool && v.Bool
	}
	num := func(key string) int {
		if v, ok := fields[key]; ok && v.Kind == models.KindInt {
			return v.Int
		}
		return 0
	}

	// 1. title
	fm.Title = str("title")
	if fm.Title == "" {
		fm.Title = firstH1(body)
	}
	if fm.Title == "" {
		fm.Title = "Untitled"
	}

	// 2. date
	for _, key := range []string{"date", "publishDate"} {
		if d, ok := parseDate(str(key)); ok {
			fm.Date = d
			break
		}
	}
	if fm.Date == "" {
		fm.Date = o.now().Format(dateLayout)
	}
	if d, ok := parseDate(str("lastmod")); ok {
		fm.LastMod = d
	}

	// 3. readTime
	fm.ReadTime = str("readTime")
	if fm.ReadTime == "" {
		fm.ReadTime = EstimateReadTime(body, o.wordsPerMinute)
	}

	// 4. excerpt
	fm.Excerpt = str("excerpt")
	if fm.Excerpt == "" {
		fm.Excerpt = str("description")
	}
	if fm.Excerpt == "" {
		fm.Excerpt = Excerpt(body, o.excerptLength)
	}

	// 5. summary
	fm.Summary = str("summary")
	if fm.Summary == "" {
		fm.Summary = fm.Excerpt
	}

	// 6. tags
	fm.Tags = list("tags")
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	// 7. category
	fm.Category = resolveCategory(str("category"), list("categories"), fm.Tags)

	// 8. featured and the remaining flags
	fm.Featured = flag("featured")
	fm.Published = flag("published")
	fm.Draft = flag("draft")

	fm.Slug = str("slug")
	fm.Author = str("author")
	fm.Image = str("image")
	fm.Weight = num("weight")
	fm.Priority = num("priority")
	return fm
}

func resolveCategory(declared string, categories, tags []string) models.Category {
	if c, ok := models.ParseCategory(declared); ok {
		return c
	}
	for _, name := range categories {
		if c, ok := models.ParseCategory(name); ok {
			return c
		}
	}
	return InferCategory(tags)
}

// firstH1 returns the text of the first level-1 heading outside code fences.
func firstH1(body string) string {
	for _, b := range ParseBlocks(body) {
		if b.Level() == 1 && len(b.Content) > 0 {
			return b.Content[0]
		}
	}
	return ""
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
