package index

import "github.com/starford/folio/internal/models"

// PostIndex defines the interface for post indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PostIndex interface {
	UpsertPost(p PostRow, body string) error
	DeletePost(slug string) error
	GetChecksum(slug string) (string, error)
	GetPost(slug string) (*PostRow, error)
	ListPosts(q ListQuery) ([]PostRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Related(slug string, limit int) ([]PostRow, error)
	Categories() ([]CategoryCount, error)
	AllChecksums() (map[string]string, error)
	Ping() error
	Close() error
}

// CategoryCount pairs a category with the number of indexed posts in it.
type CategoryCount struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
}

// Verify *DB satisfies PostIndex at compile time.
var _ PostIndex = (*DB)(nil)
