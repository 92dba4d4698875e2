// Package parser turns raw Markdown documents into frontmatter and an
// ordered sequence of typed content blocks.
//
// Parsing is total: every input string produces a result. Structural
// problems are reported by package validate, never here.
package parser

import (
	"time"

	"github.com/starford/folio/internal/models"
)

const (
	defaultWordsPerMinute = 200
	defaultExcerptLength  = 150
)

// Option configures extraction.
type Option func(*options)

type options struct {
	now            func() time.Time
	wordsPerMinute int
	excerptLength  int
}

func newOptions(opts []Option) options {
	o := options{
		now:            time.Now,
		wordsPerMinute: defaultWordsPerMinute,
		excerptLength:  defaultExcerptLength,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithNow sets the clock used for the default date.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithWordsPerMinute sets the reading speed used for readTime.
func WithWordsPerMinute(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.wordsPerMinute = n
		}
	}
}

// WithExcerptLength sets the maximum excerpt length in characters.
func WithExcerptLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.excerptLength = n
		}
	}
}

// Parse extracts the frontmatter of doc and parses its body into blocks.
func Parse(doc string, opts ...Option) *models.ParsedDocument {
	fm, body := ExtractFrontmatter(doc, opts...)
	return &models.ParsedDocument{
		Frontmatter: fm,
		Blocks:      ParseBlocks(body),
	}
}
