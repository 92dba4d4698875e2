// Package storage defines where post sources live.
package storage

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/folio/internal/models"
)

// Ext is the file extension of a post source.
const Ext = ".md"

var slugRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Provider is the interface for post source operations. Posts are
// addressed by slug; the provider decides where they are kept.
type Provider interface {
	// List returns metadata for every post.
	List() ([]models.PostMetadata, error)
	// Read returns the raw source of a post.
	Read(slug string) ([]byte, error)
	// Write atomically replaces the source of a post.
	Write(slug string, content []byte) error
	// Delete removes a post.
	Delete(slug string) error
}

// ValidSlug reports whether slug is a usable post identifier.
func ValidSlug(slug string) bool {
	return slugRe.MatchString(slug)
}

// SlugFromPath returns the slug for a post file name, or "" when path is
// not a post source.
func SlugFromPath(path string) string {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, Ext) {
		return ""
	}
	slug := strings.TrimSuffix(name, Ext)
	if !ValidSlug(slug) {
		return ""
	}
	return slug
}
