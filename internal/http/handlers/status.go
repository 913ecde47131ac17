package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/materials"
	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/google"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
	"github.com/sudo-sidd/classroom-downloader/internal/services"
)

type StatusHandler struct {
	log          *logger.Logger
	auth         google.Auth
	downloads    services.DownloadService
	llm          services.LLMService
	materialRepo materials.MaterialRepo
}

func NewStatusHandler(
	baseLog *logger.Logger,
	auth google.Auth,
	downloads services.DownloadService,
	llm services.LLMService,
	materialRepo materials.MaterialRepo,
) *StatusHandler {
	return &StatusHandler{
		log:          baseLog.With("handler", "StatusHandler"),
		auth:         auth,
		downloads:    downloads,
		llm:          llm,
		materialRepo: materialRepo,
	}
}

// Status reports the service-level flags the frontend polls on load.
func (h *StatusHandler) Status(c *gin.Context) {
	stats, err := h.materialRepo.GetStatistics(dbctx.From(c.Request.Context()))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "STATS_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{
		"authenticated":   h.auth.IsAuthenticated(c.Request.Context()),
		"download_active": h.downloads.Status().IsActive,
		"llm_available":   h.llm.Available(),
		"statistics":      stats,
	})
}
