package files

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFilenameRemovesUnsafeCharacters(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`report<final>.pdf`,
		`a:b/c\d|e?f*g.txt`,
		"tab\there.doc",
		"ctrl\x00\x1fchars.png",
		`"quoted".xlsx`,
	}

	for _, in := range inputs {
		got := SanitizeFilename(in, DefaultMaxFilenameLen)
		if got == "" {
			t.Fatalf("SanitizeFilename(%q) returned empty", in)
		}
		if strings.ContainsAny(got, unsafeChars) {
			t.Fatalf("SanitizeFilename(%q) = %q still contains unsafe characters", in, got)
		}
		for _, r := range got {
			if r < 0x20 || r == 0x7f {
				t.Fatalf("SanitizeFilename(%q) = %q contains control character %q", in, got, r)
			}
		}
	}
}

func TestSanitizeFilenameCollapsesAndTrims(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"my   file.pdf", "my_file.pdf"},
		{"already__underscored.txt", "already_underscored.txt"},
		{"...leading dots.pdf", "leading_dots.pdf"},
		{"trailing. ", "trailing"},
		{"", "untitled"},
		{".", "untitled"},
		{"..", "untitled"},
		{"???", "untitled"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in, DefaultMaxFilenameLen); got != tc.want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFilenameBoundsLengthPreservingExtension(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 400) + ".pdf"
	got := SanitizeFilename(long, 50)
	if len(got) > 50 {
		t.Fatalf("len = %d, want <= 50 (%q)", len(got), got)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("extension lost: %q", got)
	}
}

func TestSanitizeFilenameTruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// 3-byte runes force the byte budget to land mid-rune.
	long := strings.Repeat("日", 40) + ".pdf"
	got := SanitizeFilename(long, 50)
	if len(got) > 50 {
		t.Fatalf("len = %d, want <= 50 (%q)", len(got), got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("extension lost: %q", got)
	}

	course := SanitizeCourseName(strings.Repeat("日", 50))
	if len(course) > 100 {
		t.Fatalf("course name too long: %d", len(course))
	}
	if !utf8.ValidString(course) {
		t.Fatalf("truncation produced invalid UTF-8: %q", course)
	}
}

func TestSanitizeCourseName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"CS 101: Intro / Basics", "CS_101_Intro_Basics"},
		{"", "Untitled_Course"},
		{"   ", "Untitled_Course"},
	}
	for _, tc := range cases {
		if got := SanitizeCourseName(tc.in); got != tc.want {
			t.Fatalf("SanitizeCourseName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := SanitizeCourseName(strings.Repeat("x", 300))
	if len(long) > 100 {
		t.Fatalf("course name too long: %d", len(long))
	}
}

func TestCategoryFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		filename string
		mimeType string
		want     string
	}{
		{"slides.pdf", "", "PDFs"},
		{"notes.docx", "", "Documents"},
		{"deck.pptx", "", "Presentations"},
		{"grades.csv", "", "Spreadsheets"},
		{"photo.JPG", "", "Images"},
		{"clip.mp4", "", "Videos"},
		{"song.mp3", "", "Audio"},
		{"bundle.zip", "", "Archives"},
		{"page.html", "", "Web"},
		{"mystery.xyz", "", "Other"},
		{"noext", "application/pdf", "PDFs"},
		{"noext", "image/png", "Images"},
		{"noext", "", "Other"},
	}
	for _, tc := range cases {
		if got := CategoryFor(tc.filename, tc.mimeType); got != tc.want {
			t.Fatalf("CategoryFor(%q, %q) = %q, want %q", tc.filename, tc.mimeType, got, tc.want)
		}
	}
}
