package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestResolverCreatesCategoryLayout(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	path, err := r.Resolve("Physics 1", "lecture.pdf", "application/pdf", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	wantDir := filepath.Join(r.BaseDir(), "Physics_1", "PDFs")
	if filepath.Dir(path) != wantDir {
		t.Fatalf("path = %q, want directory %q", path, wantDir)
	}

	// Every category bucket is pre-created with the course.
	for _, name := range CategoryNames() {
		dir := filepath.Join(r.BaseDir(), "Physics_1", name)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("category directory %s missing: %v", name, err)
		}
	}
}

func TestResolverAppendsMimeExtension(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	path, err := r.Resolve("Math", "homework", "application/pdf", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.HasSuffix(path, "homework.pdf") {
		t.Fatalf("extension not appended: %q", path)
	}
}

func TestResolverEmptyCourseFallsBackToUncategorized(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	path, err := r.Resolve("", "Example", "text/plain", true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(r.BaseDir(), "Uncategorized", "Documents", "Example.txt")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
}

func TestResolverUniqueSuffixes(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	var paths []string
	for i := 0; i < 3; i++ {
		path, err := r.Resolve("CS", "notes.txt", "text/plain", true)
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write #%d: %v", i, err)
		}
		paths = append(paths, path)
	}

	seen := map[string]bool{}
	for _, p := range paths {
		if seen[p] {
			t.Fatalf("duplicate path %q", p)
		}
		seen[p] = true
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("path %q not on disk: %v", p, err)
		}
	}

	if base := filepath.Base(paths[1]); base != "notes_1.txt" {
		t.Fatalf("second path = %q, want notes_1.txt", base)
	}
	if base := filepath.Base(paths[2]); base != "notes_2.txt" {
		t.Fatalf("third path = %q, want notes_2.txt", base)
	}
}

func TestNewResolverFailsOnUnwritableBase(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	blocked := filepath.Join(parent, "blocked")
	if err := os.WriteFile(blocked, []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := NewResolver(filepath.Join(blocked, "sub"), logger.NewNop()); err == nil {
		t.Fatal("expected error for unwritable base directory")
	}
}
