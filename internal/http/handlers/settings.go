package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
	"github.com/sudo-sidd/classroom-downloader/internal/services"
)

type SettingsHandler struct {
	log      *logger.Logger
	settings *services.Settings
}

func NewSettingsHandler(baseLog *logger.Logger, settings *services.Settings) *SettingsHandler {
	return &SettingsHandler{
		log:      baseLog.With("handler", "SettingsHandler"),
		settings: settings,
	}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	response.RespondOK(c, h.settings.View())
}

// Update applies the fields present in the body. Values are clamped by the
// settings store; a running batch keeps its current tuning.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req struct {
		MaxConcurrentDownloads *int     `json:"max_concurrent_downloads"`
		RequestDelaySeconds    *float64 `json:"request_delay_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}

	var interval *time.Duration
	if req.RequestDelaySeconds != nil {
		d := time.Duration(*req.RequestDelaySeconds * float64(time.Second))
		interval = &d
	}
	response.RespondOK(c, h.settings.Update(req.MaxConcurrentDownloads, interval))
}
