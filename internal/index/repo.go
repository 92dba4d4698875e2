package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// Sort orders accepted by ListPosts.
const (
	SortDateDesc  = "date-desc"
	SortDateAsc   = "date-asc"
	SortTitleAsc  = "title-asc"
	SortTitleDesc = "title-desc"
)

var sortClauses = map[string]string{
	SortDateDesc:  "date DESC, title COLLATE NOCASE ASC",
	SortDateAsc:   "date ASC, title COLLATE NOCASE ASC",
	SortTitleAsc:  "title COLLATE NOCASE ASC, date DESC",
	SortTitleDesc: "title COLLATE NOCASE DESC, date DESC",
}

// ValidSort reports whether s is a known sort order. The empty string
// selects SortDateDesc.
func ValidSort(s string) bool {
	_, ok := sortClauses[s]
	return ok || s == ""
}

// PostRow represents a row in the posts table: the listing view of a post.
type PostRow struct {
	Slug      string          `json:"slug"`
	Path      string          `json:"path"`
	Title     string          `json:"title"`
	Date      string          `json:"date"`
	Category  models.Category `json:"category"`
	Tags      []string        `json:"tags"`
	Featured  bool            `json:"featured"`
	ReadTime  string          `json:"readTime"`
	Excerpt   string          `json:"excerpt"`
	Checksum  string          `json:"checksum"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ListQuery filters and pages ListPosts. Zero values mean no filter.
type ListQuery struct {
	Limit    int
	Offset   int
	Category models.Category
	Tag      string
	Featured *bool
	Sort     string
}

const postColumns = `slug, path, title, date, category, tags, featured, read_time, excerpt, checksum, updated_at`

// UpsertPost inserts or replaces a post, its tags, and its FTS entry within
// a transaction. body is the plain-text projection used for search.
func (db *DB) UpsertPost(p PostRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if p.Tags == nil {
		p.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(p.Tags)

	_, err = tx.Exec(`
		INSERT INTO posts (`+postColumns+`, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			path       = excluded.path,
			title      = excluded.title,
			date       = excluded.date,
			category   = excluded.category,
			tags       = excluded.tags,
			featured   = excluded.featured,
			read_time  = excluded.read_time,
			excerpt    = excluded.excerpt,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at,
			body       = excluded.body
	`, p.Slug, p.Path, p.Title, p.Date, string(p.Category), string(tagsJSON), p.Featured,
		p.ReadTime, p.Excerpt, p.Checksum, p.UpdatedAt, body)
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	if err := ftsUpsert(tx, p.Slug, p.Title, body, p.Tags); err != nil {
		return err
	}

	// Replace tags: delete old then bulk insert, lowercased for filtering.
	if _, err := tx.Exec(`DELETE FROM post_tags WHERE slug = ?`, p.Slug); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if len(p.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO post_tags (slug, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range p.Tags {
			if _, err := stmt.Exec(p.Slug, strings.ToLower(tag)); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePost removes a post, its tags and its FTS entry.
func (db *DB) DeletePost(slug string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, slug)
	_, _ = tx.Exec(`DELETE FROM post_tags WHERE slug = ?`, slug)
	_, _ = tx.Exec(`DELETE FROM posts WHERE slug = ?`, slug)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a post, or empty string if not found.
func (db *DB) GetChecksum(slug string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM posts WHERE slug = ?`, slug).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetPost returns the listing row for slug.
func (db *DB) GetPost(slug string) (*PostRow, error) {
	row := db.conn.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: get post %s: %w", slug, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get post: %w", err)
	}
	return p, nil
}

// AllChecksums returns slug → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT slug, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var slug, cs string
		if err := rows.Scan(&slug, &cs); err != nil {
			return nil, err
		}
		out[slug] = cs
	}
	return out, rows.Err()
}

// ListPosts returns one page of posts and the total number of matches.
func (db *DB) ListPosts(q ListQuery) ([]PostRow, int, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	order, ok := sortClauses[q.Sort]
	if !ok {
		order = sortClauses[SortDateDesc]
	}

	var where []string
	var args []any
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(q.Category))
	}
	if q.Tag != "" {
		where = append(where, "slug IN (SELECT slug FROM post_tags WHERE tag = ?)")
		args = append(args, strings.ToLower(q.Tag))
	}
	if q.Featured != nil {
		where = append(where, "featured = ?")
		args = append(args, *q.Featured)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count posts: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+postColumns+` FROM posts`+cond+
		` ORDER BY `+order+` LIMIT ? OFFSET ?`, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	out := []PostRow{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// Related ranks other posts by the number of tags they share with slug,
// plus one when they share its category.
func (db *DB) Related(slug string, limit int) ([]PostRow, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := db.conn.Query(`
		SELECT `+postColumns+` FROM (
			SELECT p.*,
				(SELECT count(*) FROM post_tags a
					JOIN post_tags b ON a.tag = b.tag
					WHERE a.slug = p.slug AND b.slug = ?)
				+ (p.category = (SELECT category FROM posts WHERE slug = ?)) AS score
			FROM posts p
			WHERE p.slug != ?
		)
		WHERE score > 0
		ORDER BY score DESC, date DESC
		LIMIT ?
	`, slug, slug, slug, limit)
	if err != nil {
		return nil, fmt.Errorf("index: related: %w", err)
	}
	defer rows.Close()

	out := []PostRow{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Categories returns every category of the enumeration with its post count,
// in enumeration order.
func (db *DB) Categories() ([]CategoryCount, error) {
	rows, err := db.conn.Query(`SELECT category, count(*) FROM posts GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("index: categories: %w", err)
	}
	defer rows.Close()
	counts := make(map[models.Category]int)
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		counts[models.Category(c)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]CategoryCount, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = CategoryCount{Category: c, Count: counts[c]}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*PostRow, error) {
	var p PostRow
	var category, tags string
	if err := s.Scan(&p.Slug, &p.Path, &p.Title, &p.Date, &category, &tags, &p.Featured,
		&p.ReadTime, &p.Excerpt, &p.Checksum, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Category = models.Category(category)
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil || p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}
