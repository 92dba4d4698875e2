// Package models defines the domain types for Folio.
package models

import "time"

// Post is a stored Markdown document identified by its slug.
type Post struct {
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

// PostMetadata is a lightweight representation returned by storage list operations.
type PostMetadata struct {
	Slug      string    `json:"slug"`
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParsedDocument is the result of running a raw document through the
// frontmatter extractor and the block parser. It is the unit of caching
// and the unit the validator inspects.
type ParsedDocument struct {
	Frontmatter Frontmatter `json:"frontmatter"`
	Blocks      []Block     `json:"blocks"`
}
