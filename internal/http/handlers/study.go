package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sudo-sidd/classroom-downloader/internal/http/response"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/apperr"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/dbctx"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
	"github.com/sudo-sidd/classroom-downloader/internal/services"
)

const defaultDueLimit = 50

type StudyHandler struct {
	log   *logger.Logger
	study services.StudyService
}

func NewStudyHandler(baseLog *logger.Logger, study services.StudyService) *StudyHandler {
	return &StudyHandler{
		log:   baseLog.With("handler", "StudyHandler"),
		study: study,
	}
}

func (h *StudyHandler) ListNotes(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	rows, err := h.study.NotesForMaterial(dbctx.From(c.Request.Context()), materialID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"notes": rows})
}

func (h *StudyHandler) CreateNote(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	note, err := h.study.CreateNote(dbctx.From(c.Request.Context()), materialID, req.Title, req.Body)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "INVALID_NOTE", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "CREATE_FAILED", err)
		return
	}
	response.RespondCreated(c, note)
}

func (h *StudyHandler) UpdateNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	note, err := h.study.UpdateNote(dbctx.From(c.Request.Context()), id, req.Title, req.Body)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "NOTE_NOT_FOUND", err)
		return
	}
	response.RespondOK(c, note)
}

func (h *StudyHandler) DeleteNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	if err := h.study.DeleteNote(dbctx.From(c.Request.Context()), id); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "DELETE_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (h *StudyHandler) ListFlashcards(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	rows, err := h.study.FlashcardsForMaterial(dbctx.From(c.Request.Context()), materialID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"flashcards": rows})
}

func (h *StudyHandler) CreateFlashcard(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	var req struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	card, err := h.study.CreateFlashcard(dbctx.From(c.Request.Context()), materialID, req.Front, req.Back)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "INVALID_FLASHCARD", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "CREATE_FAILED", err)
		return
	}
	response.RespondCreated(c, card)
}

func (h *StudyHandler) DeleteFlashcard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	if err := h.study.DeleteFlashcard(dbctx.From(c.Request.Context()), id); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "DELETE_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (h *StudyHandler) DueFlashcards(c *gin.Context) {
	rows, err := h.study.DueFlashcards(dbctx.From(c.Request.Context()), intQuery(c, "limit", defaultDueLimit))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"flashcards": rows})
}

// ReviewFlashcard records one review and reschedules the card.
func (h *StudyHandler) ReviewFlashcard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	var req struct {
		Correct bool `json:"correct"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	card, err := h.study.ReviewFlashcard(dbctx.From(c.Request.Context()), id, req.Correct)
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "FLASHCARD_NOT_FOUND", err)
		return
	}
	response.RespondOK(c, card)
}

func (h *StudyHandler) GetProgress(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	progress, err := h.study.ReadingProgressFor(dbctx.From(c.Request.Context()), materialID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "PROGRESS_FAILED", err)
		return
	}
	response.RespondOK(c, progress)
}

func (h *StudyHandler) SetProgress(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	var req struct {
		Percent  float64 `json:"percent"`
		LastPage int     `json:"last_page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	progress, err := h.study.SetReadingProgress(dbctx.From(c.Request.Context()), materialID, req.Percent, req.LastPage)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "PROGRESS_FAILED", err)
		return
	}
	response.RespondOK(c, progress)
}

func (h *StudyHandler) ChatHistory(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	rows, err := h.study.ChatHistory(dbctx.From(c.Request.Context()), materialID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "HISTORY_FAILED", err)
		return
	}
	response.RespondOK(c, gin.H{"messages": rows})
}

// Chat sends one question about the material and returns the model reply.
func (h *StudyHandler) Chat(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_ID", err)
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	reply, err := h.study.Chat(dbctx.From(c.Request.Context()), materialID, req.Message)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "INVALID_MESSAGE", err)
			return
		}
		response.RespondError(c, http.StatusBadGateway, "CHAT_FAILED", err)
		return
	}
	response.RespondOK(c, reply)
}
