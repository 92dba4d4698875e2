package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/validate"
)

// CheckFiles validates each Markdown file and writes one report per file
// to w. It returns the number of files with validation errors.
func CheckFiles(w io.Writer, paths []string) (int, error) {
	failed := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return failed, fmt.Errorf("read %s: %w", path, err)
		}
		slug := storage.SlugFromPath(path)
		if slug == "" {
			slug = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		report := validate.Post(models.Post{Slug: slug, Content: string(data)})
		if !report.Valid() {
			failed++
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n\n", path, report.Format()); err != nil {
			return failed, err
		}
	}
	return failed, nil
}
