package index

import (
	"log/slog"
	"time"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after an index change driven by Sync or Watch.
// kind is one of EventCreated, EventUpdated, EventDeleted.
type EventCallback func(kind string, slug string)

// Sync lists the posts directory and brings the index up to date:
//   - new/changed posts are parsed and upserted
//   - posts removed from disk are deleted from the index
//
// cb (if non-nil) is called for every post that changed.
func Sync(db PostIndex, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Slug] = struct{}{}

		old, known := checksums[m.Slug]
		if old == m.Checksum {
			continue
		}

		data, err := store.Read(m.Slug)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("slug", m.Slug), slog.String("error", err.Error()))
			continue
		}
		if _, err := IndexPost(db, m.Slug, data); err != nil {
			logger.Warn("sync: index failed", slog.String("slug", m.Slug), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("slug", m.Slug))
		if cb != nil {
			kind := EventCreated
			if known {
				kind = EventUpdated
			}
			cb(kind, m.Slug)
		}
	}

	// Remove stale entries.
	for slug := range checksums {
		if _, ok := disk[slug]; ok {
			continue
		}
		if err := db.DeletePost(slug); err != nil {
			logger.Warn("sync: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("slug", slug))
		if cb != nil {
			cb(EventDeleted, slug)
		}
	}

	return nil
}

// IndexPost parses data and upserts its listing row and search text.
func IndexPost(db PostIndex, slug string, data []byte) (*models.ParsedDocument, error) {
	doc := parser.Parse(string(data))
	if err := db.UpsertPost(Row(slug, data, doc), SearchText(doc)); err != nil {
		return nil, err
	}
	return doc, nil
}

// Row builds the listing row of a parsed post.
func Row(slug string, data []byte, doc *models.ParsedDocument) PostRow {
	fm := doc.Frontmatter
	return PostRow{
		Slug:      slug,
		Path:      slug + storage.Ext,
		Title:     fm.Title,
		Date:      fm.Date,
		Category:  fm.Category,
		Tags:      fm.Tags,
		Featured:  fm.Featured,
		ReadTime:  fm.ReadTime,
		Excerpt:   fm.Excerpt,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}
}
