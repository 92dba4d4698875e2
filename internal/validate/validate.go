package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
)

const maxLineLength = 200

var (
	readTimeRe = regexp.MustCompile(`(?i)^\d+\s+(min|mins|minute|minutes)\s+read$`)
	linkRe     = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)]*)\)`)

	dateRule     = validation.Date("2006-01-02")
	readTimeRule = validation.Match(readTimeRe)
)

// Frontmatter checks the fields an author declared. Defaults filled in by
// extraction do not count as declared.
func Frontmatter(fm models.Frontmatter) Report {
	r := newReport()
	fields := fm.Fields

	declared := func(key string) string {
		if v, ok := fields[key]; ok && v.Kind == models.KindString {
			return strings.TrimSpace(v.Str)
		}
		return ""
	}

	excerpt := declared("excerpt")
	if excerpt == "" {
		excerpt = declared("description")
	}
	required := []struct {
		name  string
		value string
	}{
		{"title", declared("title")},
		{"date", declared("date")},
		{"excerpt", excerpt},
	}
	for _, f := range required {
		if err := validation.Validate(f.value, validation.Required); err != nil {
			r.errorf(CodeMissingRequiredField, 0, "Missing required field: %s", f.name)
		}
	}

	if date := declared("date"); date != "" {
		if err := validation.Validate(date, dateRule); err != nil {
			r.errorf(CodeInvalidDateFormat, 0, "Date must be in YYYY-MM-DD format, got %q", date)
		}
	}

	// The extractor always coerces tags to a list, so this only fires for
	// fields decoded from elsewhere, such as a JSON frontmatter record.
	if v, ok := fields["tags"]; ok && v.Kind != models.KindList {
		r.errorf(CodeInvalidTagsFormat, 0, "Tags must be a list, got %s", v.Kind)
	}

	if rt := declared("readTime"); rt != "" {
		if err := validation.Validate(rt, readTimeRule); err != nil {
			r.warn(CodeInvalidReadTimeFormat, 0, `Example: "5 min read"`,
				`readTime should follow the format "N min read", got %q`, rt)
		}
	}

	for _, key := range []string{"category", "tags", "readTime"} {
		if v, ok := fields[key]; !ok || v.IsZero() {
			r.warn(CodeMissingRecommendedField, 0, "Consider adding "+key+" for better categorization",
				"Missing recommended field: %s", key)
		}
	}

	for _, key := range fm.Ignored {
		r.warn(CodeUnknownField, 0, "Remove it or use one of the recognised keys",
			"Unknown frontmatter field: %s", key)
	}
	return *r
}

// Content checks the raw Markdown body line by line.
func Content(body string) Report {
	r := newReport()
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	hasHeading := false
	for _, b := range parser.ParseBlocks(body) {
		if b.Level() > 0 {
			hasHeading = true
			break
		}
	}
	if !hasHeading {
		r.warn(CodeNoHeadings, 0, "Add headings to improve structure and navigation",
			"Content has no headings")
	}

	fences := 0
	inFence := false
	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fences++
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") && utf8.RuneCountInString(line) > maxLineLength {
			r.warn(CodeLongParagraph, lineNo, "Consider breaking long paragraphs into smaller ones",
				"Very long paragraph detected")
		}
		for _, m := range linkRe.FindAllStringSubmatch(line, -1) {
			image, text, url := m[1] == "!", strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
			switch {
			case image && url == "":
				r.errorf(CodeEmptyImageURL, lineNo, "Image with empty URL")
			case !image && url == "":
				r.errorf(CodeEmptyLinkURL, lineNo, "Link with empty URL")
			}
			if !image && text == "" {
				r.warn(CodeEmptyLinkText, lineNo, "Describe where the link leads", "Link with empty text")
			}
		}
	}
	if fences%2 != 0 {
		r.errorf(CodeUnbalancedCodeBlocks, 0, "Unbalanced code blocks (missing opening or closing fence)")
	}
	return *r
}

// Blocks checks parsed blocks.
func Blocks(blocks []models.Block) Report {
	r := newReport()
	if len(blocks) == 0 {
		r.errorf(CodeEmptyContent, 0, "No content blocks found")
		return *r
	}
	for i, b := range blocks {
		n := i + 1
		switch b.Kind {
		case models.BlockTable:
			if len(b.Content) < 2 {
				r.warn(CodeSmallTable, b.Line, "Consider if a table is necessary for such small data",
					"Table at block %d has fewer than 2 rows", n)
			}
			if !consistentColumns(b.Content) {
				r.errorf(CodeInconsistentTableColumns, b.Line,
					"Table at block %d has inconsistent column counts", n)
			}
		case models.BlockImage:
			if b.Meta == nil || strings.TrimSpace(b.Meta.Src) == "" {
				r.errorf(CodeMissingImageSrc, b.Line, "Image at block %d is missing src", n)
			}
			if b.Meta == nil || strings.TrimSpace(b.Meta.Alt) == "" {
				r.warn(CodeMissingImageAlt, b.Line, "Add alt text for accessibility",
					"Image at block %d is missing alt text", n)
			}
		case models.BlockCode:
			if strings.TrimSpace(strings.Join(b.Content, "")) == "" {
				r.warn(CodeEmptyCodeBlock, b.Line, "Remove empty code blocks or add content",
					"Empty code block at block %d", n)
			}
		}
	}
	return *r
}

func consistentColumns(rows []string) bool {
	for i := 1; i < len(rows); i++ {
		if strings.Count(rows[i], "|") != strings.Count(rows[0], "|") {
			return false
		}
	}
	return true
}

// Post validates a stored post: its identity, its frontmatter, its body
// and its parsed blocks. Body line numbers are reported relative to the
// whole document.
func Post(post models.Post) Report {
	r := newReport()
	if strings.TrimSpace(post.Slug) == "" || strings.TrimSpace(post.Content) == "" {
		r.errorf(CodeMissingRequiredPostField, 0, "Post is missing required fields (slug or content)")
	}
	if strings.TrimSpace(post.Content) == "" {
		return *r
	}

	fm, body := parser.ExtractFrontmatter(post.Content)
	if fm.Format == "" {
		r.warn(CodeNoFrontmatter, 0, "Add frontmatter for better metadata management",
			"Post has no frontmatter section")
	} else {
		r.merge(Frontmatter(fm), 0)
	}

	offset := bodyOffset(post.Content, body)
	r.merge(Content(body), offset)
	r.merge(Blocks(parser.ParseBlocks(body)), offset)
	return *r
}

// bodyOffset counts the document lines that precede body.
func bodyOffset(doc, body string) int {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	if body == "" {
		return 0
	}
	i := strings.LastIndex(doc, body)
	if i <= 0 {
		return 0
	}
	return strings.Count(doc[:i], "\n")
}
