package index

import (
	"strings"

	"github.com/starford/folio/internal/inline"
	"github.com/starford/folio/internal/models"
)

// SearchText projects a parsed document to the plain text that search
// indexes: heading and paragraph blocks, inline markup removed, one block
// per line.
func SearchText(doc *models.ParsedDocument) string {
	var lines []string
	for _, b := range doc.Blocks {
		if b.Kind != models.BlockHeading && b.Kind != models.BlockParagraph {
			continue
		}
		if text := inline.PlainText(inline.Render(b.Text())); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}
