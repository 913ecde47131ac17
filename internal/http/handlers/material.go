package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/files"
	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
	"github.com/sudo-sidd/classroom-downloader/internal/services"
)

const defaultSearchLimit = 100

type MaterialHandler struct {
	log          *logger.Logger
	materialRepo materials.MaterialRepo
	resolver     *files.Resolver
	indexes      services.IndexService
}

func NewMaterialHandler(
	baseLog *logger.Logger,
	materialRepo materials.MaterialRepo,
	resolver *files.Resolver,
	indexes services.IndexService,
) *MaterialHandler {
	return &MaterialHandler{
		log:          baseLog.With("handler", "MaterialHandler"),
		materialRepo: materialRepo,
		resolver:     resolver,
		indexes:      indexes,
	}
}

// Search lists materials filtered by the q, course_id, mime_type and
// subject_id query parameters.
func (h *MaterialHandler) Search(c *gin.Context) {
	f := materials.SearchFilter{
		Query:    c.Query("q"),
		CourseID: c.Query("course_id"),
		MimeType: c.Query("mime_type"),
		Limit:    intQuery(c, "limit", defaultSearchLimit),
		Offset:   intQuery(c, "offset", 0),
	}
	if raw := c.Query("subject_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "INVALID_SUBJECT_ID", err)
			return
		}
		f.SubjectID = &id
	}

	rows, err := h.materialRepo.Search(dbctx.From(c.Request.Context()), f)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "SEARCH_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"materials": rows, "count": len(rows)})
}

func (h *MaterialHandler) Uncategorized(c *gin.Context) {
	rows, err := h.materialRepo.GetUncategorized(dbctx.From(c.Request.Context()))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"materials": rows, "count": len(rows)})
}

func (h *MaterialHandler) BySubject(c *gin.Context) {
	raw := c.Query("subject_id")
	if raw == "" {
		h.Uncategorized(c)
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_SUBJECT_ID", err)
		return
	}
	rows, err := h.materialRepo.GetBySubject(dbctx.From(c.Request.Context()), id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"materials": rows, "count": len(rows)})
}

// Move reassigns a material to another course and relocates its file on
// disk. Reference files without a local copy only update the record.
func (h *MaterialHandler) Move(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	var req struct {
		CourseID   string `json:"course_id"`
		CourseName string `json:"course_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if req.CourseName == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_COURSE_NAME", errors.New("course_name is required"))
		return
	}

	dbc := dbctx.From(c.Request.Context())
	m, err := h.materialRepo.GetByID(dbc, id)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "MATERIAL_NOT_FOUND", err)
		return
	}

	newPath := m.LocalPath
	if m.LocalPath != "" {
		newPath, err = h.resolver.Resolve(req.CourseName, filepath.Base(m.LocalPath), m.MimeType, true)
		if err != nil {
			response.RespondError(c, http.StatusInternalServerError, "MOVE_FAILED", err)
			return
		}
		if err := os.Rename(m.LocalPath, newPath); err != nil {
			response.RespondError(c, http.StatusInternalServerError, "MOVE_FAILED", err)
			return
		}
	}

	if err := h.materialRepo.UpdateCourse(dbc, id, req.CourseID, req.CourseName, newPath); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "MOVE_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"moved": true, "local_path": newPath})
}

func (h *MaterialHandler) Statistics(c *gin.Context) {
	stats, err := h.materialRepo.GetStatistics(dbctx.From(c.Request.Context()))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "STATS_FAILED", err)
		return
	}
	response.RespondOK(c, stats)
}

// GenerateIndexes rebuilds the per-course and main browsing pages.
func (h *MaterialHandler) GenerateIndexes(c *gin.Context) {
	results, err := h.indexes.GenerateAll(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "INDEX_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"generated": results})
}

// Serve streams a downloaded file from the materials directory. The path is
// confirmed to stay inside the base directory before serving.
func (h *MaterialHandler) Serve(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")
	if rel == "" {
		response.RespondError(c, http.StatusBadRequest, "MISSING_PATH", errors.New("missing file path"))
		return
	}

	base := h.resolver.BaseDir()
	full := filepath.Join(base, filepath.FromSlash(rel))
	cleaned, err := filepath.Abs(full)
	if err != nil || !strings.HasPrefix(cleaned, base+string(os.PathSeparator)) {
		response.RespondError(c, http.StatusBadRequest, "INVALID_PATH", errors.New("path escapes materials directory"))
		return
	}
	info, err := os.Stat(cleaned)
	if err != nil || info.IsDir() {
		response.RespondError(c, http.StatusNotFound, "FILE_NOT_FOUND", errors.New("file not found"))
		return
	}
	c.File(cleaned)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
