package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

const maxUniqueSuffix = 9999

// Resolver maps (course, filename, content type) to a unique local path
// under base/<course>/<category>/. It only ever creates directories; it
// never deletes or rescans.
type Resolver struct {
	baseDir string
	log     *logger.Logger
}

// NewResolver ensures the base directory exists. A base directory that
// cannot be created is fatal: nothing can be downloaded without it.
func NewResolver(baseDir string, baseLog *logger.Logger) (*Resolver, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory %s: %w", baseDir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory %s: %w", abs, err)
	}
	return &Resolver{
		baseDir: abs,
		log:     baseLog.With("component", "Resolver"),
	}, nil
}

func (r *Resolver) BaseDir() string { return r.baseDir }

// CourseDir returns the directory for a course, pre-creating every category
// subdirectory on first use so the layout is uniform.
func (r *Resolver) CourseDir(courseName string, create bool) (string, error) {
	dir := filepath.Join(r.baseDir, SanitizeCourseName(courseName))
	if !create {
		return dir, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create course directory %s: %w", dir, err)
	}
	for _, name := range CategoryNames() {
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			return "", fmt.Errorf("create category directory %s: %w", name, err)
		}
	}
	return dir, nil
}

// Resolve builds base/<course>/<category>/<filename>, appending the
// MIME-inferred extension when the name has none and de-duplicating the final
// name against files already on disk.
func (r *Resolver) Resolve(courseName, filename, mimeType string, ensureUnique bool) (string, error) {
	if strings.TrimSpace(courseName) == "" || strings.EqualFold(courseName, "uncategorized") {
		courseName = "Uncategorized"
	}

	courseDir, err := r.CourseDir(courseName, true)
	if err != nil {
		return "", err
	}

	name := SanitizeFilename(filename, DefaultMaxFilenameLen)
	if filepath.Ext(name) == "" && mimeType != "" {
		if ext := ExtensionForMime(mimeType); ext != "" {
			name += ext
		}
	}

	categoryDir := filepath.Join(courseDir, CategoryFor(name, mimeType))
	if err := os.MkdirAll(categoryDir, 0o755); err != nil {
		return "", fmt.Errorf("create category directory %s: %w", categoryDir, err)
	}

	path := filepath.Join(categoryDir, name)
	if ensureUnique {
		path = uniquePath(path)
	}
	return path, nil
}

// uniquePath appends _1, _2, ... while the path exists, falling back to a
// random suffix after maxUniqueSuffix attempts.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	for i := 1; i <= maxUniqueSuffix; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, uuid.New().String()[:8], ext))
}
