package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/subjects"
	"github.com/sudo-sidd/classroom-downloader/internal/domain"
	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type SubjectHandler struct {
	log         *logger.Logger
	subjectRepo subjects.SubjectRepo
}

func NewSubjectHandler(baseLog *logger.Logger, subjectRepo subjects.SubjectRepo) *SubjectHandler {
	return &SubjectHandler{
		log:         baseLog.With("handler", "SubjectHandler"),
		subjectRepo: subjectRepo,
	}
}

type subjectRequest struct {
	Name     string `json:"name"`
	Keywords string `json:"keywords"`
	Priority int    `json:"priority"`
	Color    string `json:"color"`
}

func (h *SubjectHandler) List(c *gin.Context) {
	rows, err := h.subjectRepo.List(dbctx.From(c.Request.Context()))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"subjects": rows, "count": len(rows)})
}

func (h *SubjectHandler) Create(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_NAME", errors.New("name is required"))
		return
	}

	row := &domain.Subject{
		Name:     strings.TrimSpace(req.Name),
		Keywords: req.Keywords,
		Priority: req.Priority,
		Color:    req.Color,
	}
	if err := h.subjectRepo.Create(dbctx.From(c.Request.Context()), row); err != nil {
		response.RespondError(c, http.StatusConflict, "CREATE_FAILED", err)
		return
	}
	response.RespondCreated(c, row)
}

func (h *SubjectHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}

	dbc := dbctx.From(c.Request.Context())
	row, err := h.subjectRepo.GetByID(dbc, id)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "SUBJECT_NOT_FOUND", err)
		return
	}
	if strings.TrimSpace(req.Name) != "" {
		row.Name = strings.TrimSpace(req.Name)
	}
	row.Keywords = req.Keywords
	row.Priority = req.Priority
	row.Color = req.Color
	if err := h.subjectRepo.Update(dbc, row); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err)
		return
	}
	response.RespondOK(c, row)
}

// Delete removes a subject. Materials assigned to it drop back to
// uncategorized.
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	if err := h.subjectRepo.Delete(dbctx.From(c.Request.Context()), id); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "DELETE_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
