package models

import "strings"

// BlockKind tags a ContentBlock.
type BlockKind string

const (
	BlockHeading    BlockKind = "heading"
	BlockParagraph  BlockKind = "paragraph"
	BlockList       BlockKind = "list"
	BlockCode       BlockKind = "code"
	BlockImage      BlockKind = "image"
	BlockBlockquote BlockKind = "blockquote"
	BlockTable      BlockKind = "table"
	BlockRule       BlockKind = "hr"
	BlockHTML       BlockKind = "html"
)

// Align is a table column alignment.
type Align string

const (
	AlignNone   Align = "none"
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Block is one structural unit of a document body.
//
// Content holds the block's raw text lines. It is empty only for image and
// rule blocks. Table rows are stored with their cells joined by "|"; when
// Meta.Headers is set the first row is the header row.
type Block struct {
	Kind    BlockKind `json:"type"`
	Content []string  `json:"content"`
	Meta    *Meta     `json:"meta,omitempty"`
	// Line is the 1-based body line the block starts on.
	Line int `json:"line"`
}

// Meta carries kind-specific attributes.
type Meta struct {
	Level    int      `json:"level,omitempty"`
	Ordered  bool     `json:"ordered,omitempty"`
	Language string   `json:"language,omitempty"`
	Src      string   `json:"src,omitempty"`
	Alt      string   `json:"alt,omitempty"`
	Title    string   `json:"title,omitempty"`
	Width    string   `json:"width,omitempty"`
	Height   string   `json:"height,omitempty"`
	Headers  []string `json:"headers,omitempty"`
	Align    []Align  `json:"align,omitempty"`
}

// Text returns the block's lines joined by a single space.
func (b Block) Text() string {
	return strings.Join(b.Content, " ")
}

// Level returns the heading level, or 0 for non-heading blocks.
func (b Block) Level() int {
	if b.Kind != BlockHeading || b.Meta == nil {
		return 0
	}
	return b.Meta.Level
}
