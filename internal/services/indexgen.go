package services

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/courses"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/files"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

// IndexService writes browsable HTML index pages into the download tree:
// one per course plus a master page at the base directory.
type IndexService interface {
	GenerateCourse(ctx context.Context, courseID, courseName string) (bool, error)
	GenerateAll(ctx context.Context) (map[string]bool, error)
}

type indexService struct {
	log          *logger.Logger
	resolver     *files.Resolver
	courseRepo   courses.CourseRepo
	materialRepo materials.MaterialRepo
}

func NewIndexService(baseLog *logger.Logger, resolver *files.Resolver, courseRepo courses.CourseRepo, materialRepo materials.MaterialRepo) IndexService {
	return &indexService{
		log:          baseLog.With("service", "IndexService"),
		resolver:     resolver,
		courseRepo:   courseRepo,
		materialRepo: materialRepo,
	}
}

type courseIndexData struct {
	CourseName  string
	GeneratedAt string
	TotalFiles  int
	TotalSize   string
	Categories  []categoryGroup
}

type categoryGroup struct {
	Name  string
	Items []indexItem
}

type indexItem struct {
	Title    string
	FileName string
	Size     string
	Date     string
}

type mainIndexData struct {
	GeneratedAt string
	TotalFiles  int64
	TotalSize   string
	Courses     []mainIndexCourse
}

type mainIndexCourse struct {
	Name      string
	Dir       string
	FileCount int64
}

var courseIndexTmpl = template.Must(template.New("course").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.CourseName}} - Materials</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { border-bottom: 2px solid #4285f4; padding-bottom: .5rem; }
h2 { color: #4285f4; margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; }
td, th { padding: .4rem .8rem; border-bottom: 1px solid #ddd; text-align: left; }
.meta { color: #777; font-size: .9rem; }
</style>
</head>
<body>
<h1>{{.CourseName}}</h1>
<p class="meta">{{.TotalFiles}} files, {{.TotalSize}}. Generated {{.GeneratedAt}}.</p>
{{range .Categories}}
{{$cat := .Name}}
<h2>{{.Name}}</h2>
<table>
<tr><th>File</th><th>Size</th><th>Date</th></tr>
{{range .Items}}
<tr><td><a href="{{$cat}}/{{.FileName}}">{{.Title}}</a></td><td>{{.Size}}</td><td>{{.Date}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

var mainIndexTmpl = template.Must(template.New("main").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Classroom Materials</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { border-bottom: 2px solid #4285f4; padding-bottom: .5rem; }
ul { list-style: none; padding: 0; }
li { padding: .5rem 0; border-bottom: 1px solid #eee; }
.meta { color: #777; font-size: .9rem; }
</style>
</head>
<body>
<h1>Classroom Materials</h1>
<p class="meta">{{.TotalFiles}} files, {{.TotalSize}}. Generated {{.GeneratedAt}}.</p>
<ul>
{{range .Courses}}
<li><a href="{{.Dir}}/index.html">{{.Name}}</a> <span class="meta">({{.FileCount}} files)</span></li>
{{end}}
</ul>
</body>
</html>
`))

// GenerateCourse writes <course dir>/index.html. Returns false without
// error when the course has no materials.
func (s *indexService) GenerateCourse(ctx context.Context, courseID, courseName string) (bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	mats, err := s.materialRepo.GetByCourse(dbc, courseID)
	if err != nil {
		return false, err
	}
	if len(mats) == 0 {
		return false, nil
	}

	grouped := map[string][]indexItem{}
	var totalSize int64
	for _, m := range mats {
		cat := files.CategoryFor(filepath.Base(m.LocalPath), m.MimeType)
		grouped[cat] = append(grouped[cat], indexItem{
			Title:    m.Title,
			FileName: filepath.Base(m.LocalPath),
			Size:     humanSize(m.FileSize),
			Date:     m.DownloadDate.Format("2006-01-02"),
		})
		totalSize += m.FileSize
	}

	data := courseIndexData{
		CourseName:  courseName,
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
		TotalFiles:  len(mats),
		TotalSize:   humanSize(totalSize),
	}
	// Stable category order matching the directory layout.
	for _, name := range files.CategoryNames() {
		if items, ok := grouped[name]; ok {
			data.Categories = append(data.Categories, categoryGroup{Name: name, Items: items})
		}
	}

	dir, err := s.resolver.CourseDir(courseName, true)
	if err != nil {
		return false, err
	}
	out, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return false, fmt.Errorf("create course index: %w", err)
	}
	defer out.Close()

	if err := courseIndexTmpl.Execute(out, data); err != nil {
		return false, fmt.Errorf("render course index: %w", err)
	}
	s.log.Info("course index generated", "course", courseName, "files", len(mats))
	return true, nil
}

// GenerateAll regenerates every course index plus the master page. The
// result maps course names to whether a page was written.
func (s *indexService) GenerateAll(ctx context.Context) (map[string]bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	courseList, err := s.courseRepo.List(dbc)
	if err != nil {
		return nil, err
	}

	results := make(map[string]bool, len(courseList))
	for _, c := range courseList {
		ok, err := s.GenerateCourse(ctx, c.ID, c.Name)
		if err != nil {
			s.log.Error("course index failed", "course", c.Name, "error", err)
			ok = false
		}
		results[c.Name] = ok
	}

	if err := s.generateMain(dbc, courseList); err != nil {
		s.log.Error("main index failed", "error", err)
	}
	return results, nil
}

func (s *indexService) generateMain(dbc dbctx.Context, courseList []*domain.Course) error {
	stats, err := s.materialRepo.GetStatistics(dbc)
	if err != nil {
		return err
	}

	data := mainIndexData{
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
		TotalFiles:  stats.TotalMaterials,
		TotalSize:   humanSize(stats.TotalSize),
	}
	for _, c := range courseList {
		data.Courses = append(data.Courses, mainIndexCourse{
			Name:      c.Name,
			Dir:       files.SanitizeCourseName(c.Name),
			FileCount: stats.ByCourse[c.Name],
		})
	}

	out, err := os.Create(filepath.Join(s.resolver.BaseDir(), "index.html"))
	if err != nil {
		return fmt.Errorf("create main index: %w", err)
	}
	defer out.Close()
	return mainIndexTmpl.Execute(out, data)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
