// Package cache memoises parsed documents by id and content fingerprint.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 100

	preloadWorkers = 4
)

// ParseFunc turns a raw document into its parsed form.
type ParseFunc func(raw string) *models.ParsedDocument

// LoadFunc fetches the raw document for id.
type LoadFunc func(ctx context.Context, id string) (string, error)

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long an entry stays fresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries sets the capacity.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithParseFunc replaces parser.Parse.
func WithParseFunc(fn ParseFunc) Option {
	return func(c *Cache) {
		if fn != nil {
			c.parse = fn
		}
	}
}

// WithLogger sets the logger used by Preload.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

type entry struct {
	doc         *models.ParsedDocument
	fingerprint uint64
	created     time.Time
}

// Cache is safe for concurrent use. Concurrent misses for the same id and
// content share one parse.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	hits    uint64
	misses  uint64

	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	parse      ParseFunc
	logger     *slog.Logger

	group singleflight.Group
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]entry),
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		parse:      func(raw string) *models.ParsedDocument { return parser.Parse(raw) },
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parse returns the parsed form of raw, reusing the entry stored under id
// when it is fresh and was built from identical content. The returned
// document is shared and must not be modified.
func (c *Cache) Parse(id, raw string) (*models.ParsedDocument, error) {
	if id == "" {
		return nil, fmt.Errorf("cache: parse: empty id: %w", apperr.ErrInvalidInput)
	}
	fp := checksum.Fingerprint(raw)

	c.mu.Lock()
	if e, ok := c.entries[id]; ok && e.fingerprint == fp && c.fresh(e) {
		c.hits++
		c.mu.Unlock()
		return e.doc, nil
	}
	c.mu.Unlock()

	key := id + "\x00" + strconv.FormatUint(fp, 16)
	v, _, _ := c.group.Do(key, func() (any, error) {
		doc := c.parse(raw)
		c.store(id, fp, doc)
		return doc, nil
	})
	return v.(*models.ParsedDocument), nil
}

func (c *Cache) fresh(e entry) bool {
	return c.now().Sub(e.created) < c.ttl
}

func (c *Cache) store(id string, fp uint64, doc *models.ParsedDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++

	if _, replacing := c.entries[id]; !replacing && len(c.entries) >= c.maxEntries {
		c.dropExpired()
		if len(c.entries) >= c.maxEntries {
			c.evictOldest(max(1, c.maxEntries/5))
		}
	}
	c.entries[id] = entry{doc: doc, fingerprint: fp, created: c.now()}
}

func (c *Cache) dropExpired() {
	for id, e := range c.entries {
		if !c.fresh(e) {
			delete(c.entries, id)
		}
	}
}

// evictOldest removes the n entries with the earliest creation time.
func (c *Cache) evictOldest(n int) {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return c.entries[ids[i]].created.Before(c.entries[ids[j]].created)
	})
	for _, id := range ids[:min(n, len(ids))] {
		delete(c.entries, id)
	}
}

// Invalidate drops the entry for id.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.hits, c.misses = 0, 0
	c.mu.Unlock()
}

// EntryStats describes one cached document.
type EntryStats struct {
	ID  string        `json:"id"`
	Age time.Duration `json:"age"`
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Size       int           `json:"size"`
	MaxEntries int           `json:"max_entries"`
	TTL        time.Duration `json:"ttl"`
	Hits       uint64        `json:"hits"`
	Misses     uint64        `json:"misses"`
	Entries    []EntryStats  `json:"entries"`
}

// Stats reports size, counters and entry ages, oldest first.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	st := Stats{
		Size:       len(c.entries),
		MaxEntries: c.maxEntries,
		TTL:        c.ttl,
		Hits:       c.hits,
		Misses:     c.misses,
		Entries:    make([]EntryStats, 0, len(c.entries)),
	}
	for id, e := range c.entries {
		st.Entries = append(st.Entries, EntryStats{ID: id, Age: now.Sub(e.created)})
	}
	sort.Slice(st.Entries, func(i, j int) bool {
		if st.Entries[i].Age != st.Entries[j].Age {
			return st.Entries[i].Age > st.Entries[j].Age
		}
		return st.Entries[i].ID < st.Entries[j].ID
	})
	return st
}

// Preload loads and parses ids concurrently. A document that fails to load
// is logged and skipped; Preload only returns an error when ctx is done.
func (c *Cache) Preload(ctx context.Context, ids []string, load LoadFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadWorkers)
	for _, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := load(ctx, id)
			if err != nil {
				c.logger.Warn("cache: preload failed", slog.String("id", id), slog.String("error", err.Error()))
				return nil
			}
			if _, err := c.Parse(id, raw); err != nil {
				c.logger.Warn("cache: preload failed", slog.String("id", id), slog.String("error", err.Error()))
			}
			return nil
		})
	}
	return g.Wait()
}
