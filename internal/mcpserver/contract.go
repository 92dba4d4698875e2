package mcpserver

import (
	"strings"

	"github.com/starford/folio/internal/models"
)

// PostFormatURI is the resource URI of the post format contract.
const PostFormatURI = "folio://post-format"

const fence = "```"

// PostFormatContract describes the Markdown post format that LLM consumers
// should follow when drafting posts.
var PostFormatContract = `# Folio Post Format

Every post is a single Markdown file named <slug>.md in the posts directory.

## Structure

` + fence + `markdown
---
title: Human-readable title          # REQUIRED
date: 2025-01-15                     # REQUIRED, YYYY-MM-DD
excerpt: One or two sentences.       # REQUIRED (description is accepted too)
category: Web Development            # recommended, one of the list below
tags: [react, javascript]            # recommended, list
readTime: 5 min read                 # recommended, "N min read"
featured: false                      # optional
---

# Title

Body text in Markdown.
` + fence + `

## Rules

1. The frontmatter block must start on the first line, delimited by ` + "`---`" + `.
   A ` + "`+++`" + ` block with ` + "`key = value`" + ` lines is accepted as well.
2. Only recognised keys are read; anything else is reported as UNKNOWN_FIELD.
3. Slugs use lowercase letters, digits and dashes.
4. Every code fence must be closed. An unclosed fence blocks publishing.
5. Links and images need a URL; images should carry alt text.
6. Use at least one heading. Keep paragraph lines under 200 characters.
7. When category is missing it is inferred from the tags.

## Categories

` + categoryList() + `
## Inline formatting

` + "`code`" + `, **bold**, *italic*, ~~strike~~, ==highlight==, ~sub~, ^sup^, [text](url).
Images may carry a title and size: ` + "`![alt](src \"title\" {width=\"600\"})`" + `.
`

func categoryList() string {
	var b strings.Builder
	for _, c := range models.Categories {
		b.WriteString("- " + string(c) + "\n")
	}
	return b.String()
}
