// Package postservice coordinates post storage, the listing index, the
// parse cache and the validator.
package postservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/cache"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/htmlview"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/validate"
)

const (
	defaultRelated = 3
	draftSlug      = "draft"
)

// ValidationError is returned by CreatePost and UpdatePost when the content
// has validation errors and the write was not forced.
type ValidationError struct {
	Report validate.Report
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("post has %d validation error(s)", len(e.Report.Errors))
}

func (e *ValidationError) Unwrap() error {
	return apperr.ErrValidation
}

// PostDetail is the detail view of a post.
type PostDetail struct {
	Slug        string             `json:"slug"`
	Frontmatter models.Frontmatter `json:"frontmatter"`
	Blocks      []models.Block     `json:"blocks"`
	Outline     []parser.Heading   `json:"outline"`
	Content     string             `json:"content"`
	Checksum    string             `json:"checksum"`
	Related     []string           `json:"related"`
	Validation  *validate.Report   `json:"validation,omitempty"`
}

// Service coordinates storage, index and cache operations.
type Service struct {
	store storage.Provider
	db    index.PostIndex
	cache *cache.Cache
	html  *htmlview.Renderer
}

// NewService creates a new post service. A nil cache or renderer is
// replaced by one with default settings.
func NewService(store storage.Provider, db index.PostIndex, c *cache.Cache, r *htmlview.Renderer) *Service {
	if c == nil {
		c = cache.New()
	}
	if r == nil {
		r = htmlview.New()
	}
	return &Service{store: store, db: db, cache: c, html: r}
}

// Cache exposes the parse cache so that the watcher can invalidate it.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// GetPost reads a post and returns its parsed detail view.
func (s *Service) GetPost(_ context.Context, slug string) (*PostDetail, error) {
	data, err := s.store.Read(slug)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(slug, data)
}

// ListPosts returns a page of listing rows and the total match count.
// The listing view reads the index only; no block parsing happens here.
func (s *Service) ListPosts(_ context.Context, q index.ListQuery) ([]index.PostRow, int, error) {
	if !index.ValidSort(q.Sort) {
		return nil, 0, fmt.Errorf("sort %q: %w", q.Sort, apperr.ErrInvalidInput)
	}
	if q.Category != "" {
		c, ok := models.ParseCategory(string(q.Category))
		if !ok {
			return nil, 0, fmt.Errorf("category %q: %w", q.Category, apperr.ErrInvalidInput)
		}
		q.Category = c
	}
	rows, total, err := s.db.ListPosts(q)
	if err != nil {
		return nil, 0, err
	}
	return nonNilSlice(rows), total, nil
}

// CreatePost validates and writes a new post, then indexes it.
func (s *Service) CreatePost(_ context.Context, slug string, content []byte, force bool) (*PostDetail, error) {
	if !storage.ValidSlug(slug) {
		return nil, fmt.Errorf("slug %q: %w", slug, apperr.ErrInvalidInput)
	}
	if _, err := s.store.Read(slug); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return s.write(slug, content, force)
}

// UpdatePost replaces a post with optimistic concurrency: a non-empty
// ifMatch must equal the checksum of the stored content.
func (s *Service) UpdatePost(_ context.Context, slug string, content []byte, ifMatch string, force bool) (*PostDetail, error) {
	existing, err := s.store.Read(slug)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	return s.write(slug, content, force)
}

func (s *Service) write(slug string, content []byte, force bool) (*PostDetail, error) {
	report := validate.Post(models.Post{Slug: slug, Content: string(content)})
	if !report.Valid() && !force {
		return nil, &ValidationError{Report: report}
	}
	if err := s.store.Write(slug, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(slug, content); err != nil {
		return nil, err
	}
	detail, err := s.buildDetail(slug, content)
	if err != nil {
		return nil, err
	}
	detail.Validation = &report
	return detail, nil
}

// DeletePost removes a post from storage, the index and the cache.
func (s *Service) DeletePost(_ context.Context, slug string) error {
	if err := s.store.Delete(slug); err != nil {
		return err
	}
	s.cache.Invalidate(slug)
	return s.db.DeletePost(slug)
}

// ValidatePost validates the stored post.
func (s *Service) ValidatePost(_ context.Context, slug string) (validate.Report, error) {
	data, err := s.store.Read(slug)
	if err != nil {
		return validate.Report{}, err
	}
	return validate.Post(models.Post{Slug: slug, Content: string(data)}), nil
}

// ValidateContent validates unsaved content. An empty slug is replaced by
// a placeholder so that only the content is judged.
func (s *Service) ValidateContent(slug, content string) validate.Report {
	if slug == "" {
		slug = draftSlug
	}
	return validate.Post(models.Post{Slug: slug, Content: content})
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// Related returns posts that share tags or the category with slug.
func (s *Service) Related(_ context.Context, slug string, limit int) ([]index.PostRow, error) {
	if _, err := s.db.GetPost(slug); err != nil {
		return nil, err
	}
	return s.db.Related(slug, limit)
}

// Categories returns the category enumeration with post counts.
func (s *Service) Categories(_ context.Context) ([]index.CategoryCount, error) {
	return s.db.Categories()
}

// RenderHTML returns the sanitised HTML fragment of a post's blocks.
func (s *Service) RenderHTML(_ context.Context, slug string) (string, error) {
	data, err := s.store.Read(slug)
	if err != nil {
		return "", err
	}
	doc, err := s.cache.Parse(slug, string(data))
	if err != nil {
		return "", err
	}
	return s.html.Render(doc), nil
}

// CacheStats reports the parse cache state.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// IndexFile parses data through the cache and upserts it into the index.
// Exported so that the watcher callback and the CLI can reuse it.
func (s *Service) IndexFile(slug string, data []byte) error {
	doc, err := s.cache.Parse(slug, string(data))
	if err != nil {
		return err
	}
	return s.db.UpsertPost(index.Row(slug, data, doc), index.SearchText(doc))
}

// Preload warms the cache with every stored post.
func (s *Service) Preload(ctx context.Context) error {
	metas, err := s.store.List()
	if err != nil {
		return err
	}
	ids := make([]string, len(metas))
	for i, m := range metas {
		ids[i] = m.Slug
	}
	return s.cache.Preload(ctx, ids, func(_ context.Context, id string) (string, error) {
		data, err := s.store.Read(id)
		return string(data), err
	})
}

// buildDetail constructs a PostDetail from raw data without re-reading the file.
func (s *Service) buildDetail(slug string, data []byte) (*PostDetail, error) {
	doc, err := s.cache.Parse(slug, string(data))
	if err != nil {
		return nil, err
	}
	rel, err := s.db.Related(slug, defaultRelated)
	if err != nil {
		return nil, err
	}
	related := make([]string, len(rel))
	for i, r := range rel {
		related[i] = r.Slug
	}
	return &PostDetail{
		Slug:        slug,
		Frontmatter: doc.Frontmatter,
		Blocks:      nonNilSlice(doc.Blocks),
		Outline:     nonNilSlice(parser.Outline(doc.Blocks)),
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Related:     related,
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
