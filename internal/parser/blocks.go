package parser

import (
	"regexp"
	"strings"

	"github.com/starford/folio/internal/models"
)

var (
	ruleRe          = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})$`)
	atxRe           = regexp.MustCompile(`^(#{1,6})\s+(.+?)(?:\s+#+)?\s*$`)
	setextH1Re      = regexp.MustCompile(`^=+$`)
	setextH2Re      = regexp.MustCompile(`^-+$`)
	separatorRe     = regexp.MustCompile(`^[|\s:-]+$`)
	enhancedImageRe = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)\s]+)(?:\s+"([^"]*)")?\s*(?:\{([^}]*)\})?\)$`)
	basicImageRe    = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)$`)
	imageAttrRe     = regexp.MustCompile(`(\w+)=["']([^"']+)["']`)
	orderedRe       = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)
	unorderedRe     = regexp.MustCompile(`^[*+-]\s+(.+)$`)
)

// blockScanner holds the scan position and the single open block.
type blockScanner struct {
	lines []string
	pos   int
	open  *models.Block
	out   []models.Block
}

// ParseBlocks scans body line by line and returns its blocks in document
// order. It never fails: unrecognised lines become paragraph text and an
// unclosed code fence runs to the end of the input.
func ParseBlocks(body string) []models.Block {
	body = strings.TrimRight(normalizeNewlines(body), "\n")
	if strings.TrimSpace(body) == "" {
		return []models.Block{}
	}
	s := &blockScanner{lines: strings.Split(body, "\n")}
	for s.pos < len(s.lines) {
		s.step()
		s.pos++
	}
	s.finish()
	if s.out == nil {
		return []models.Block{}
	}
	return s.out
}

// step consumes the line at s.pos, and the line after it when that line is
// a setext underline or a table separator.
func (s *blockScanner) step() {
	raw := s.lines[s.pos]
	lineNo := s.pos + 1

	if s.inFence() {
		if t := strings.TrimSpace(raw); t == "```" || t == "~~~" {
			s.finish()
			return
		}
		s.open.Content = append(s.open.Content, raw)
		return
	}

	line := strings.TrimSpace(raw)
	if line == "" {
		s.finish()
		return
	}

	if ruleRe.MatchString(line) {
		s.emit(models.Block{Kind: models.BlockRule, Content: []string{}, Line: lineNo})
		return
	}

	if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
		s.finish()
		lang := ""
		if f := strings.Fields(line[3:]); len(f) > 0 {
			lang = f[0]
		}
		s.open = &models.Block{
			Kind:    models.BlockCode,
			Content: []string{},
			Meta:    &models.Meta{Language: lang},
			Line:    lineNo,
		}
		return
	}

	if m := atxRe.FindStringSubmatch(line); m != nil {
		s.emit(heading(len(m[1]), strings.TrimSpace(m[2]), lineNo))
		return
	}

	if !hasBlockMarker(line) {
		if level := s.setextLevel(); level > 0 {
			s.emit(heading(level, line, lineNo))
			s.pos++
			return
		}
	}

	if isTableRow(line) {
		s.tableRow(line, lineNo)
		return
	}

	if m := enhancedImageRe.FindStringSubmatch(line); m != nil {
		meta := &models.Meta{Alt: m[1], Src: m[2], Title: m[3]}
		for _, attr := range imageAttrRe.FindAllStringSubmatch(m[4], -1) {
			switch attr[1] {
			case "width":
				meta.Width = attr[2]
			case "height":
				meta.Height = attr[2]
			}
		}
		s.emit(models.Block{Kind: models.BlockImage, Content: []string{}, Meta: meta, Line: lineNo})
		return
	}
	if m := basicImageRe.FindStringSubmatch(line); m != nil {
		meta := &models.Meta{Alt: m[1], Src: strings.TrimSpace(m[2])}
		s.emit(models.Block{Kind: models.BlockImage, Content: []string{}, Meta: meta, Line: lineNo})
		return
	}

	if strings.HasPrefix(line, ">") {
		s.extend(models.BlockBlockquote, lineNo)
		s.push(strings.TrimSpace(line[1:]))
		return
	}

	if m := orderedRe.FindStringSubmatch(line); m != nil {
		s.extendList(true, lineNo)
		s.push(strings.TrimSpace(m[2]))
		return
	}
	if m := unorderedRe.FindStringSubmatch(line); m != nil {
		s.extendList(false, lineNo)
		s.push(strings.TrimSpace(m[1]))
		return
	}

	if isHTML(line) {
		s.extend(models.BlockHTML, lineNo)
		s.push(strings.TrimRight(raw, " \t"))
		return
	}

	s.extend(models.BlockParagraph, lineNo)
	s.push(line)
}

func (s *blockScanner) inFence() bool {
	return s.open != nil && s.open.Kind == models.BlockCode
}

// finish flushes the open block to the output. Code blocks are kept even
// when empty; other blocks without content are dropped.
func (s *blockScanner) finish() {
	if s.open == nil {
		return
	}
	if len(s.open.Content) > 0 || s.open.Kind == models.BlockCode {
		s.out = append(s.out, *s.open)
	}
	s.open = nil
}

// emit closes the open block and appends a standalone block.
func (s *blockScanner) emit(b models.Block) {
	s.finish()
	s.out = append(s.out, b)
}

// extend keeps the open block when it has the given kind and otherwise
// closes it and opens a new one.
func (s *blockScanner) extend(kind models.BlockKind, lineNo int) {
	if s.open != nil && s.open.Kind == kind {
		return
	}
	s.finish()
	s.open = &models.Block{Kind: kind, Content: []string{}, Line: lineNo}
}

func (s *blockScanner) extendList(ordered bool, lineNo int) {
	if s.open != nil && s.open.Kind == models.BlockList && s.open.Meta.Ordered == ordered {
		return
	}
	s.finish()
	s.open = &models.Block{
		Kind:    models.BlockList,
		Content: []string{},
		Meta:    &models.Meta{Ordered: ordered},
		Line:    lineNo,
	}
}

func (s *blockScanner) push(text string) {
	s.open.Content = append(s.open.Content, text)
}

// peek returns the trimmed line after the current one.
func (s *blockScanner) peek() (string, bool) {
	if s.pos+1 >= len(s.lines) {
		return "", false
	}
	return strings.TrimSpace(s.lines[s.pos+1]), true
}

func (s *blockScanner) setextLevel() int {
	next, ok := s.peek()
	if !ok {
		return 0
	}
	switch {
	case setextH1Re.MatchString(next):
		return 1
	case setextH2Re.MatchString(next):
		return 2
	}
	return 0
}

func (s *blockScanner) tableRow(line string, lineNo int) {
	fresh := s.open == nil || s.open.Kind != models.BlockTable
	s.extend(models.BlockTable, lineNo)
	cells := splitCells(line)
	s.push(strings.Join(cells, "|"))

	next, ok := s.peek()
	if !ok || !isSeparator(next) {
		return
	}
	s.pos++
	if fresh {
		s.open.Meta = &models.Meta{Headers: cells, Align: parseAlign(next)}
	}
}

func heading(level int, text string, lineNo int) models.Block {
	return models.Block{
		Kind:    models.BlockHeading,
		Content: []string{text},
		Meta:    &models.Meta{Level: level},
		Line:    lineNo,
	}
}

// hasBlockMarker reports whether line would be claimed by a rule other
// than paragraph text.
func hasBlockMarker(line string) bool {
	return isTableRow(line) ||
		basicImageRe.MatchString(line) ||
		strings.HasPrefix(line, ">") ||
		orderedRe.MatchString(line) ||
		unorderedRe.MatchString(line) ||
		isHTML(line)
}

// isTableRow requires at least three pipe-delimited segments.
func isTableRow(line string) bool {
	return strings.Count(line, "|") >= 2
}

func isSeparator(line string) bool {
	return strings.Contains(line, "|") && strings.Contains(line, "-") && separatorRe.MatchString(line)
}

func isHTML(line string) bool {
	return strings.HasPrefix(line, "<") && strings.Contains(line, ">")
}

// splitCells strips one leading and one trailing pipe and splits the rest.
func splitCells(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func parseAlign(separator string) []models.Align {
	cells := splitCells(separator)
	align := make([]models.Align, len(cells))
	for i, c := range cells {
		left, right := strings.HasPrefix(c, ":"), strings.HasSuffix(c, ":")
		switch {
		case left && right && len(c) > 1:
			align[i] = models.AlignCenter
		case right:
			align[i] = models.AlignRight
		case left:
			align[i] = models.AlignLeft
		default:
			align[i] = models.AlignNone
		}
	}
	return align
}
