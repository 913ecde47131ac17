package files

import (
	"path/filepath"
	"strings"
)

// CategoryOther is the catch-all bucket for unrecognized extensions.
const CategoryOther = "Other"

type category struct {
	Name       string
	Extensions []string
}

// Ordered so the produced directory layout is stable.
var fileCategories = []category{
	{Name: "PDFs", Extensions: []string{".pdf"}},
	{Name: "Documents", Extensions: []string{".doc", ".docx", ".odt", ".rtf", ".txt"}},
	{Name: "Presentations", Extensions: []string{".ppt", ".pptx", ".odp"}},
	{Name: "Spreadsheets", Extensions: []string{".xls", ".xlsx", ".ods", ".csv"}},
	{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".tiff"}},
	{Name: "Videos", Extensions: []string{".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm", ".mkv", ".mpeg"}},
	{Name: "Audio", Extensions: []string{".mp3", ".wav", ".ogg", ".m4a", ".flac", ".aac"}},
	{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz"}},
	{Name: "Web", Extensions: []string{".html", ".htm", ".css", ".js", ".json", ".xml"}},
	{Name: CategoryOther},
}

// mimeExtensions maps content types to the extension used when the filename
// carries none. Google-native types map to their export format's extension.
var mimeExtensions = map[string]string{
	"application/pdf":                          ".pdf",
	"application/vnd.google-apps.document":     ".pdf",
	"application/vnd.google-apps.presentation": ".pdf",
	"application/vnd.google-apps.drawing":      ".pdf",
	"application/vnd.google-apps.spreadsheet":  ".xlsx",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/msword":             ".doc",
	"application/vnd.ms-powerpoint":  ".ppt",
	"application/vnd.ms-excel":       ".xls",
	"text/plain":                     ".txt",
	"text/html":                      ".html",
	"text/css":                       ".css",
	"text/javascript":                ".js",
	"application/json":               ".json",
	"application/xml":                ".xml",
	"text/xml":                       ".xml",
	"image/jpeg":                     ".jpg",
	"image/png":                      ".png",
	"image/gif":                      ".gif",
	"image/bmp":                      ".bmp",
	"image/svg+xml":                  ".svg",
	"video/mp4":                      ".mp4",
	"video/mpeg":                     ".mpeg",
	"video/quicktime":                ".mov",
	"video/x-msvideo":                ".avi",
	"audio/mpeg":                     ".mp3",
	"audio/wav":                      ".wav",
	"audio/ogg":                      ".ogg",
	"application/zip":                ".zip",
	"application/x-rar-compressed":   ".rar",
	"application/x-7z-compressed":    ".7z",
}

// CategoryNames lists every bucket in layout order.
func CategoryNames() []string {
	names := make([]string, 0, len(fileCategories))
	for _, c := range fileCategories {
		names = append(names, c.Name)
	}
	return names
}

// ExtensionForMime returns the extension for a content type, or "".
func ExtensionForMime(mimeType string) string {
	return mimeExtensions[mimeType]
}

// CategoryFor buckets a file by its extension, falling back to the content
// type when the filename has none.
func CategoryFor(filename, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" && mimeType != "" {
		ext = mimeExtensions[mimeType]
	}
	if ext == "" {
		return CategoryOther
	}
	for _, c := range fileCategories {
		for _, e := range c.Extensions {
			if e == ext {
				return c.Name
			}
		}
	}
	return CategoryOther
}
