package files

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMaxFilenameLen bounds sanitized filenames including extension.
	DefaultMaxFilenameLen = 200

	maxCourseNameLen = 100

	fallbackFilename   = "untitled"
	fallbackCourseName = "Untitled_Course"
)

const unsafeChars = `<>:"/\|?*`

// SanitizeFilename produces a filesystem-safe name: NFKD-normalized, unsafe
// and control characters replaced with underscores, whitespace and underscore
// runs collapsed, leading/trailing dots and spaces trimmed, length bounded
// while preserving the extension.
func SanitizeFilename(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxFilenameLen
	}

	name = norm.NFKD.String(name)

	var sb strings.Builder
	sb.Grow(len(name))
	prevSep := false
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			continue
		case strings.ContainsRune(unsafeChars, r):
			r = '_'
		}
		if r == '_' || r == ' ' || r == '\t' {
			if prevSep {
				continue
			}
			prevSep = true
			r = '_'
		} else {
			prevSep = false
		}
		sb.WriteRune(r)
	}

	name = strings.Trim(sb.String(), "._ ")

	if len(name) > maxLen {
		ext := filepath.Ext(name)
		if len(ext) >= maxLen {
			ext = ""
		}
		base := truncateRunes(name, maxLen-len(ext))
		name = strings.TrimRight(base, "._ ") + ext
	}

	if name == "" || name == "." || name == ".." {
		return fallbackFilename
	}
	return name
}

// SanitizeCourseName is the stricter variant used for directory names.
func SanitizeCourseName(name string) string {
	name = norm.NFKD.String(name)

	var sb strings.Builder
	sb.Grow(len(name))
	prevSep := false
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			continue
		case strings.ContainsRune(unsafeChars, r):
			r = '_'
		}
		if r == '_' || r == ' ' || r == '\t' {
			if prevSep {
				continue
			}
			prevSep = true
			r = '_'
		} else {
			prevSep = false
		}
		sb.WriteRune(r)
	}

	name = strings.Trim(sb.String(), "._ ")
	if len(name) > maxCourseNameLen {
		name = strings.TrimRight(truncateRunes(name, maxCourseNameLen), "._ ")
	}
	if name == "" {
		return fallbackCourseName
	}
	return name
}

// truncateRunes cuts s to at most n bytes without splitting a
// multi-byte rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
