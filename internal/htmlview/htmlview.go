// Package htmlview renders parsed posts to HTML fragments for the detail view.
package htmlview

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/starford/folio/internal/inline"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
)

// Renderer turns blocks into HTML. Raw HTML blocks pass through its policy;
// everything else is built from escaped text.
type Renderer struct {
	policy *bluemonday.Policy
}

// New returns a Renderer that sanitises raw HTML with a user generated
// content policy, keeping class attributes.
func New() *Renderer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	return &Renderer{policy: p}
}

// Render renders the body of doc.
func (r *Renderer) Render(doc *models.ParsedDocument) string {
	return r.RenderBlocks(doc.Blocks)
}

// RenderBlocks renders blocks in order, one element per block.
func (r *Renderer) RenderBlocks(blocks []models.Block) string {
	outline := parser.Outline(blocks)
	next := 0

	var b strings.Builder
	for _, block := range blocks {
		id := ""
		if block.Level() > 0 && next < len(outline) {
			id = outline[next].ID
			next++
		}
		r.block(&b, block, id)
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Renderer) block(b *strings.Builder, block models.Block, id string) {
	switch block.Kind {
	case models.BlockHeading:
		level := min(max(block.Level(), 1), 6)
		fmt.Fprintf(b, `<h%d id="%s">%s</h%d>`, level, html.EscapeString(id), Inline(block.Text()), level)

	case models.BlockParagraph:
		b.WriteString("<p>" + Inline(block.Text()) + "</p>")

	case models.BlockList:
		tag := "ul"
		if block.Meta != nil && block.Meta.Ordered {
			tag = "ol"
		}
		b.WriteString("<" + tag + ">")
		for _, item := range block.Content {
			b.WriteString("<li>" + Inline(item) + "</li>")
		}
		b.WriteString("</" + tag + ">")

	case models.BlockCode:
		lang := ""
		if block.Meta != nil && block.Meta.Language != "" {
			lang = fmt.Sprintf(` class="language-%s"`, html.EscapeString(block.Meta.Language))
		}
		fmt.Fprintf(b, "<pre><code%s>%s</code></pre>", lang, html.EscapeString(strings.Join(block.Content, "\n")))

	case models.BlockImage:
		r.image(b, block.Meta)

	case models.BlockBlockquote:
		quote(b, block.Content)

	case models.BlockTable:
		r.table(b, block)

	case models.BlockRule:
		b.WriteString("<hr>")

	case models.BlockHTML:
		b.WriteString(r.policy.Sanitize(strings.Join(block.Content, "\n")))
	}
}

func (r *Renderer) image(b *strings.Builder, meta *models.Meta) {
	if meta == nil || !safeURL(meta.Src) {
		return
	}
	b.WriteString("<figure>")
	fmt.Fprintf(b, `<img src="%s" alt="%s"`, html.EscapeString(meta.Src), html.EscapeString(meta.Alt))
	if meta.Title != "" {
		fmt.Fprintf(b, ` title="%s"`, html.EscapeString(meta.Title))
	}
	if meta.Width != "" {
		fmt.Fprintf(b, ` width="%s"`, html.EscapeString(meta.Width))
	}
	if meta.Height != "" {
		fmt.Fprintf(b, ` height="%s"`, html.EscapeString(meta.Height))
	}
	b.WriteString(` loading="lazy">`)
	if meta.Title != "" {
		b.WriteString("<figcaption>" + html.EscapeString(meta.Title) + "</figcaption>")
	}
	b.WriteString("</figure>")
}

func (r *Renderer) table(b *strings.Builder, block models.Block) {
	var align []models.Align
	b.WriteString("<table>")
	if block.Meta != nil && len(block.Meta.Headers) > 0 {
		align = block.Meta.Align
		b.WriteString("<thead><tr>")
		for i, h := range block.Meta.Headers {
			b.WriteString("<th" + alignAttr(align, i) + ">" + Inline(h) + "</th>")
		}
		b.WriteString("</tr></thead>")
	}
	b.WriteString("<tbody>")
	for _, row := range parser.TableRows(block) {
		b.WriteString("<tr>")
		for i, cell := range row {
			b.WriteString("<td" + alignAttr(align, i) + ">" + Inline(cell) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

func alignAttr(align []models.Align, i int) string {
	if i >= len(align) || align[i] == models.AlignNone || align[i] == "" {
		return ""
	}
	return fmt.Sprintf(` style="text-align:%s"`, align[i])
}

// splitParagraphs joins consecutive lines, breaking on empty ones.
// quote writes a blockquote. Runs of lines that still start with ">" are
// nested one level deeper.
func quote(b *strings.Builder, lines []string) {
	b.WriteString("<blockquote>")
	for i := 0; i < len(lines); {
		nested := strings.HasPrefix(lines[i], ">")
		j := i
		for j < len(lines) && strings.HasPrefix(lines[j], ">") == nested {
			j++
		}
		if nested {
			inner := make([]string, 0, j-i)
			for _, l := range lines[i:j] {
				inner = append(inner, strings.TrimSpace(l[1:]))
			}
			quote(b, inner)
		} else {
			for _, para := range splitParagraphs(lines[i:j]) {
				b.WriteString("<p>" + Inline(para) + "</p>")
			}
		}
		i = j
	}
	b.WriteString("</blockquote>")
}

func splitParagraphs(lines []string) []string {
	var out, cur []string
	for _, l := range lines {
		if l == "" {
			if len(cur) > 0 {
				out = append(out, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

// Inline renders text through the inline pipeline.
func Inline(text string) string {
	var b strings.Builder
	writeSpans(&b, inline.Render(text))
	return b.String()
}

var spanTags = map[inline.Kind]string{
	inline.Bold:      "strong",
	inline.Italic:    "em",
	inline.Strike:    "del",
	inline.Highlight: "mark",
	inline.Sub:       "sub",
	inline.Sup:       "sup",
}

func writeSpans(b *strings.Builder, spans []inline.Span) {
	for _, s := range spans {
		switch s.Kind {
		case inline.Text:
			b.WriteString(html.EscapeString(s.Text))
		case inline.Code:
			b.WriteString("<code>" + html.EscapeString(s.Text) + "</code>")
		case inline.Link:
			if !safeURL(s.Href) {
				writeSpans(b, s.Children)
				continue
			}
			fmt.Fprintf(b, `<a href="%s"`, html.EscapeString(s.Href))
			if s.External {
				b.WriteString(` target="_blank" rel="noopener noreferrer"`)
			}
			b.WriteString(">")
			writeSpans(b, s.Children)
			b.WriteString("</a>")
		default:
			tag := spanTags[s.Kind]
			b.WriteString("<" + tag + ">")
			writeSpans(b, s.Children)
			b.WriteString("</" + tag + ">")
		}
	}
}

// safeURL accepts relative references and http, https and mailto URLs.
func safeURL(u string) bool {
	u = strings.TrimSpace(u)
	if u == "" {
		return false
	}
	i := strings.IndexAny(u, ":/?#")
	if i < 0 || u[i] != ':' {
		return true
	}
	switch strings.ToLower(u[:i]) {
	case "http", "https", "mailto":
		return true
	}
	return false
}
