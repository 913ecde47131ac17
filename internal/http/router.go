package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/sudo-sidd/classroom-downloader/internal/http/handlers"
	httpMW "github.com/sudo-sidd/classroom-downloader/internal/http/middleware"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	StatusHandler   *httpH.StatusHandler
	AuthHandler     *httpH.AuthHandler
	CourseHandler   *httpH.CourseHandler
	DownloadHandler *httpH.DownloadHandler
	SettingsHandler *httpH.SettingsHandler
	MaterialHandler *httpH.MaterialHandler
	SubjectHandler  *httpH.SubjectHandler
	ClassifyHandler *httpH.ClassifyHandler
	LLMHandler      *httpH.LLMHandler
	StudyHandler    *httpH.StudyHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// OAuth endpoints live outside /api. The bare /oauth2callback path is
	// the redirect URI registered with Google.
	if cfg.AuthHandler != nil {
		r.GET("/oauth2/start", cfg.AuthHandler.Start)
		r.GET("/oauth2/callback", cfg.AuthHandler.Callback)
		r.GET("/oauth2callback", cfg.AuthHandler.Callback)
	}

	api := r.Group("/api")
	{
		if cfg.StatusHandler != nil {
			api.GET("/status", cfg.StatusHandler.Status)
		}

		if cfg.AuthHandler != nil {
			api.POST("/authenticate", cfg.AuthHandler.Authenticate)
			api.GET("/auth-url", cfg.AuthHandler.AuthURL)
			api.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.CourseHandler != nil {
			api.GET("/courses", cfg.CourseHandler.List)
		}

		if cfg.DownloadHandler != nil {
			api.POST("/download", cfg.DownloadHandler.Start)
			api.GET("/download/status", cfg.DownloadHandler.Status)
		}

		if cfg.SettingsHandler != nil {
			api.GET("/settings", cfg.SettingsHandler.Get)
			api.POST("/settings", cfg.SettingsHandler.Update)
		}

		if cfg.MaterialHandler != nil {
			api.GET("/materials", cfg.MaterialHandler.Search)
			api.GET("/materials/uncategorized", cfg.MaterialHandler.Uncategorized)
			api.POST("/materials/:id/move", cfg.MaterialHandler.Move)
			api.GET("/statistics", cfg.MaterialHandler.Statistics)
			api.POST("/generate-indexes", cfg.MaterialHandler.GenerateIndexes)
			api.GET("/files/serve/*filepath", cfg.MaterialHandler.Serve)
			api.GET("/files/by-subject", cfg.MaterialHandler.BySubject)
		}

		if cfg.SubjectHandler != nil {
			api.GET("/subjects", cfg.SubjectHandler.List)
			api.POST("/subjects", cfg.SubjectHandler.Create)
			api.PUT("/subjects/:id", cfg.SubjectHandler.Update)
			api.DELETE("/subjects/:id", cfg.SubjectHandler.Delete)
		}

		if cfg.ClassifyHandler != nil {
			api.POST("/files/:id/classify", cfg.ClassifyHandler.Classify)
			api.POST("/files/:id/unclassify", cfg.ClassifyHandler.Unclassify)
			api.POST("/files/bulk-classify", cfg.ClassifyHandler.BulkClassify)
			api.POST("/classify/auto", cfg.ClassifyHandler.Auto)
			api.GET("/files/:id/suggestions", cfg.ClassifyHandler.Suggestions)
			api.GET("/classification/stats", cfg.ClassifyHandler.Stats)
		}

		if cfg.LLMHandler != nil {
			api.POST("/classify/llm", cfg.LLMHandler.Classify)
			api.GET("/files/:id/llm-suggestions", cfg.LLMHandler.Suggestions)
			api.GET("/llm/status", cfg.LLMHandler.Status)
		}

		if cfg.StudyHandler != nil {
			api.GET("/materials/:id/notes", cfg.StudyHandler.ListNotes)
			api.POST("/materials/:id/notes", cfg.StudyHandler.CreateNote)
			api.PUT("/notes/:id", cfg.StudyHandler.UpdateNote)
			api.DELETE("/notes/:id", cfg.StudyHandler.DeleteNote)

			api.GET("/materials/:id/flashcards", cfg.StudyHandler.ListFlashcards)
			api.POST("/materials/:id/flashcards", cfg.StudyHandler.CreateFlashcard)
			api.DELETE("/flashcards/:id", cfg.StudyHandler.DeleteFlashcard)
			api.GET("/flashcards/due", cfg.StudyHandler.DueFlashcards)
			api.POST("/flashcards/:id/review", cfg.StudyHandler.ReviewFlashcard)

			api.GET("/materials/:id/progress", cfg.StudyHandler.GetProgress)
			api.PUT("/materials/:id/progress", cfg.StudyHandler.SetProgress)

			api.GET("/materials/:id/chat", cfg.StudyHandler.ChatHistory)
			api.POST("/materials/:id/chat", cfg.StudyHandler.Chat)
		}
	}

	return r
}
