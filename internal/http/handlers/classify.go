package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/subjects"
	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
	"github.com/sudo-sidd/classroom-downloader/internal/services"
)

const defaultSuggestionLimit = 5

type ClassifyHandler struct {
	log          *logger.Logger
	classifier   services.ClassifierService
	materialRepo materials.MaterialRepo
	subjectRepo  subjects.SubjectRepo
}

func NewClassifyHandler(
	baseLog *logger.Logger,
	classifier services.ClassifierService,
	materialRepo materials.MaterialRepo,
	subjectRepo subjects.SubjectRepo,
) *ClassifyHandler {
	return &ClassifyHandler{
		log:          baseLog.With("handler", "ClassifyHandler"),
		classifier:   classifier,
		materialRepo: materialRepo,
		subjectRepo:  subjectRepo,
	}
}

// Classify assigns a subject manually. Manual assignments carry full
// confidence and are never overwritten by auto classification.
func (h *ClassifyHandler) Classify(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	var req struct {
		SubjectID string `json:"subject_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_SUBJECT_ID", err)
		return
	}

	dbc := dbctx.From(c.Request.Context())
	if _, err := h.subjectRepo.GetByID(dbc, subjectID); err != nil {
		response.RespondError(c, http.StatusNotFound, "SUBJECT_NOT_FOUND", err)
		return
	}
	if err := h.materialRepo.SetClassification(dbc, materialID, subjectID, services.ClassificationManual, 1.0); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "CLASSIFY_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"classified": true})
}

func (h *ClassifyHandler) Unclassify(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	if err := h.materialRepo.ClearClassification(dbctx.From(c.Request.Context()), materialID); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "UNCLASSIFY_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"unclassified": true})
}

// BulkClassify assigns one subject to many materials at once.
func (h *ClassifyHandler) BulkClassify(c *gin.Context) {
	var req struct {
		MaterialIDs []string `json:"material_ids"`
		SubjectID   string   `json:"subject_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if len(req.MaterialIDs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "MISSING_MATERIALS", errors.New("material_ids is required"))
		return
	}
	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_SUBJECT_ID", err)
		return
	}

	dbc := dbctx.From(c.Request.Context())
	if _, err := h.subjectRepo.GetByID(dbc, subjectID); err != nil {
		response.RespondError(c, http.StatusNotFound, "SUBJECT_NOT_FOUND", err)
		return
	}

	classified := 0
	var failures []string
	for _, raw := range req.MaterialIDs {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			failures = append(failures, raw)
			continue
		}
		if err := h.materialRepo.SetClassification(dbc, id, subjectID, services.ClassificationManual, 1.0); err != nil {
			h.log.Warn("Bulk classify item failed", "material_id", raw, "error", err)
			failures = append(failures, raw)
			continue
		}
		classified++
	}
	response.RespondOK(c, gin.H{"classified": classified, "failed": failures})
}

// Auto runs keyword classification over the given materials, or over every
// uncategorized material when none are given.
func (h *ClassifyHandler) Auto(c *gin.Context) {
	var req struct {
		MaterialIDs []string `json:"material_ids"`
	}
	// Empty body means reclassify everything.
	_ = c.ShouldBindJSON(&req)

	dbc := dbctx.From(c.Request.Context())
	if len(req.MaterialIDs) == 0 {
		stats, err := h.classifier.ReclassifyAll(dbc)
		if err != nil {
			response.RespondError(c, http.StatusInternalServerError, "CLASSIFY_FAILED", err)
			return
		}
		response.RespondOK(c, stats)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.MaterialIDs))
	for _, raw := range req.MaterialIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "INVALID_MATERIAL_ID", err)
			return
		}
		ids = append(ids, id)
	}
	stats, err := h.classifier.AutoClassify(dbc, ids)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "CLASSIFY_FAILED", err)
		return
	}
	response.RespondOK(c, stats)
}

func (h *ClassifyHandler) Suggestions(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}

	dbc := dbctx.From(c.Request.Context())
	m, err := h.materialRepo.GetByID(dbc, materialID)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "MATERIAL_NOT_FOUND", err)
		return
	}
	suggestions, err := h.classifier.Suggestions(dbc, m, defaultSuggestionLimit)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "SUGGESTIONS_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"suggestions": suggestions})
}

// Stats reports per-subject material counts plus the uncategorized total.
func (h *ClassifyHandler) Stats(c *gin.Context) {
	dbc := dbctx.From(c.Request.Context())

	stats, err := h.materialRepo.GetStatistics(dbc)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "STATS_FAILED", err)
		return
	}
	uncategorized, err := h.materialRepo.GetUncategorized(dbc)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "STATS_FAILED", err)
		return
	}
	subjectRows, err := h.subjectRepo.List(dbc)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "STATS_FAILED", err)
		return
	}

	bySubject := make(map[string]int, len(subjectRows))
	for _, s := range subjectRows {
		rows, listErr := h.materialRepo.GetBySubject(dbc, s.ID)
		if listErr != nil {
			response.RespondError(c, http.StatusInternalServerError, "STATS_FAILED", listErr)
			return
		}
		bySubject[s.Name] = len(rows)
	}

	response.RespondOK(c, gin.H{
		"total_materials": stats.TotalMaterials,
		"uncategorized":   len(uncategorized),
		"classified":      stats.TotalMaterials - int64(len(uncategorized)),
		"by_subject":      bySubject,
	})
}
