package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/apperr"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
	"github.com/sudo-sidd/classroom-downloader/internal/services"
)

type DownloadHandler struct {
	log       *logger.Logger
	downloads services.DownloadService
}

func NewDownloadHandler(baseLog *logger.Logger, downloads services.DownloadService) *DownloadHandler {
	return &DownloadHandler{
		log:       baseLog.With("handler", "DownloadHandler"),
		downloads: downloads,
	}
}

// Start kicks off a batch for the selected courses. Only one batch runs at
// a time.
func (h *DownloadHandler) Start(c *gin.Context) {
	var req services.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}

	sessionID, err := h.downloads.Start(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyRunning):
			response.RespondError(c, http.StatusConflict, "DOWNLOAD_ACTIVE", err)
		case errors.Is(err, apperr.ErrInvalidArgument):
			response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		default:
			response.RespondError(c, http.StatusInternalServerError, "DOWNLOAD_START_FAILED", err)
		}
		return
	}
	response.RespondAccepted(c, gin.H{"session_id": sessionID, "message": "Download started"})
}

// Status returns the latest batch snapshot for polling.
func (h *DownloadHandler) Status(c *gin.Context) {
	response.RespondOK(c, h.downloads.Status())
}
