package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	bad := filepath.Join(dir, "bad.md")
	if err := os.WriteFile(good, []byte("---\ntitle: Good\ndate: 2024-01-01\nexcerpt: ok\n---\n# Good\n\ntext\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("# Bad\n\n```\nnever closed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	failed, err := CheckFiles(&out, []string{good, bad})
	if err != nil {
		t.Fatalf("CheckFiles: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	text := out.String()
	if !strings.Contains(text, good+": Validation passed") || !strings.Contains(text, bad+": Validation failed") {
		t.Errorf("output:\n%s", text)
	}

	if _, err := CheckFiles(&out, []string{filepath.Join(dir, "missing.md")}); err == nil {
		t.Error("expected error for missing file")
	}
}
