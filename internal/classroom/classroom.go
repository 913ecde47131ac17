package classroom

import (
	"context"
	"fmt"
	"net/http"

	classroomapi "google.golang.org/api/classroom/v1"
	"google.golang.org/api/option"

	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

const coursePageSize = 100

// Client lists classroom content and flattens it into attachments.
type Client interface {
	ListCourses(ctx context.Context) ([]domain.Course, error)
	CourseAttachments(ctx context.Context, courseID, courseName string) ([]domain.Attachment, error)
}

type service struct {
	log *logger.Logger
	svc *classroomapi.Service
}

func NewClient(ctx context.Context, client *http.Client, log *logger.Logger) (Client, error) {
	svc, err := classroomapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create classroom service: %w", err)
	}
	return &service{log: log.With("component", "classroom"), svc: svc}, nil
}

// ListCourses returns every active course visible to the authorized user.
func (s *service) ListCourses(ctx context.Context) ([]domain.Course, error) {
	var out []domain.Course
	pageToken := ""
	for {
		call := s.svc.Courses.List().
			CourseStates("ACTIVE").
			PageSize(coursePageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list courses: %w", err)
		}
		for _, c := range resp.Courses {
			out = append(out, domain.Course{
				ID:             c.Id,
				Name:           c.Name,
				Description:    c.Description,
				EnrollmentCode: c.EnrollmentCode,
				OwnerID:        c.OwnerId,
				CreationTime:   c.CreationTime,
				UpdateTime:     c.UpdateTime,
			})
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}

// CourseAttachments gathers attachments from coursework materials, course
// work and announcements of one course. A failing listing fails the whole
// call; partial results would look like a successful empty sync.
func (s *service) CourseAttachments(ctx context.Context, courseID, courseName string) ([]domain.Attachment, error) {
	var out []domain.Attachment

	materials, err := s.courseWorkMaterials(ctx, courseID, courseName)
	if err != nil {
		return nil, err
	}
	out = append(out, materials...)

	work, err := s.courseWork(ctx, courseID, courseName)
	if err != nil {
		return nil, err
	}
	out = append(out, work...)

	announcements, err := s.announcements(ctx, courseID, courseName)
	if err != nil {
		return nil, err
	}
	out = append(out, announcements...)

	s.log.Debug("attachments extracted",
		"course_id", courseID, "count", len(out))
	return out, nil
}

func (s *service) courseWorkMaterials(ctx context.Context, courseID, courseName string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	pageToken := ""
	for {
		call := s.svc.Courses.CourseWorkMaterials.List(courseID).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list coursework materials: %w", err)
		}
		for _, m := range resp.CourseWorkMaterial {
			out = append(out, extractAttachments(m.Materials, itemMeta{
				CourseID:     courseID,
				CourseName:   courseName,
				MaterialID:   m.Id,
				Title:        m.Title,
				Description:  m.Description,
				CreationTime: m.CreationTime,
				UpdateTime:   m.UpdateTime,
			})...)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}

func (s *service) courseWork(ctx context.Context, courseID, courseName string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	pageToken := ""
	for {
		call := s.svc.Courses.CourseWork.List(courseID).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list coursework: %w", err)
		}
		for _, w := range resp.CourseWork {
			out = append(out, extractAttachments(w.Materials, itemMeta{
				CourseID:     courseID,
				CourseName:   courseName,
				MaterialID:   w.Id,
				Title:        w.Title,
				Description:  w.Description,
				CreationTime: w.CreationTime,
				UpdateTime:   w.UpdateTime,
			})...)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}

func (s *service) announcements(ctx context.Context, courseID, courseName string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	pageToken := ""
	for {
		call := s.svc.Courses.Announcements.List(courseID).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list announcements: %w", err)
		}
		for _, a := range resp.Announcements {
			title := a.Text
			if len(title) > 80 {
				title = title[:80]
			}
			out = append(out, extractAttachments(a.Materials, itemMeta{
				CourseID:     courseID,
				CourseName:   courseName,
				MaterialID:   a.Id,
				Title:        title,
				CreationTime: a.CreationTime,
				UpdateTime:   a.UpdateTime,
			})...)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}
