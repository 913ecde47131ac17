package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/courses"
	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
	"github.com/sudo-sidd/classroom-downloader/internal/services"
)

type CourseHandler struct {
	log        *logger.Logger
	remotes    services.RemoteFactory
	courseRepo courses.CourseRepo
}

func NewCourseHandler(baseLog *logger.Logger, remotes services.RemoteFactory, courseRepo courses.CourseRepo) *CourseHandler {
	return &CourseHandler{
		log:        baseLog.With("handler", "CourseHandler"),
		remotes:    remotes,
		courseRepo: courseRepo,
	}
}

// List returns the active courses from Classroom, falling back to the
// locally stored set when the remote call fails.
func (h *CourseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	cls, _, err := h.remotes(ctx)
	if err == nil {
		remote, listErr := cls.ListCourses(ctx)
		if listErr == nil {
			now := time.Now().UTC()
			dbc := dbctx.From(ctx)
			for i := range remote {
				row := remote[i]
				row.LastSync = &now
				if upErr := h.courseRepo.Upsert(dbc, &row); upErr != nil {
					h.log.Warn("Course upsert failed", "course_id", row.ID, "error", upErr)
				}
			}
			response.RespondOK(c, gin.H{"courses": remote, "source": "remote"})
			return
		}
		err = listErr
	}

	h.log.Warn("Remote course listing failed, serving stored courses", "error", err)
	stored, repoErr := h.courseRepo.List(dbctx.From(ctx))
	if repoErr != nil {
		response.RespondError(c, http.StatusBadGateway, "COURSE_LIST_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"courses": stored, "source": "local"})
}
