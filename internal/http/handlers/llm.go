package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
	"github.com/sudo-sidd/classroom-downloader/internal/services"
)

type LLMHandler struct {
	log          *logger.Logger
	llm          services.LLMService
	materialRepo materials.MaterialRepo
}

func NewLLMHandler(baseLog *logger.Logger, llm services.LLMService, materialRepo materials.MaterialRepo) *LLMHandler {
	return &LLMHandler{
		log:          baseLog.With("handler", "LLMHandler"),
		llm:          llm,
		materialRepo: materialRepo,
	}
}

func (h *LLMHandler) Status(c *gin.Context) {
	response.RespondOK(c, gin.H{"available": h.llm.Available()})
}

// Classify analyzes the given materials with the language model and applies
// confident classifications, optionally creating missing subjects.
func (h *LLMHandler) Classify(c *gin.Context) {
	if !h.llm.Available() {
		response.RespondError(c, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", errors.New("language model is not configured"))
		return
	}
	var req struct {
		MaterialIDs        []string `json:"material_ids"`
		AutoCreateSubjects bool     `json:"auto_create_subjects"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	if len(req.MaterialIDs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "MISSING_MATERIALS", errors.New("material_ids is required"))
		return
	}

	result, err := h.llm.AnalyzeAndClassify(dbctx.From(c.Request.Context()), req.MaterialIDs, req.AutoCreateSubjects)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "LLM_CLASSIFY_FAILED", err)
		return
	}
	response.RespondOK(c, result)
}

// Suggestions runs a one-off analysis without persisting a classification.
func (h *LLMHandler) Suggestions(c *gin.Context) {
	if !h.llm.Available() {
		response.RespondError(c, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", errors.New("language model is not configured"))
		return
	}
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
	analysis, err := h.llm.AnalyzeMaterial(dbc, m)
	if err != nil {
		response.RespondError(c, http.StatusBadGateway, "LLM_ANALYSIS_FAILED", err)
		return
	}
	response.RespondOK(c, analysis)
}
