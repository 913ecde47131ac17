package app

import (
	"context"

	"github.com/sudo-sidd/classroom-downloader/internal/classroom"
	"github.com/sudo-sidd/classroom-downloader/internal/downloads"
	"github.com/sudo-sidd/classroom-downloader/internal/files"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/google"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
	"github.com/sudo-sidd/classroom-downloader/internal/services"
)

type Services struct {
	Auth       google.Auth
	Settings   *services.Settings
	Download   services.DownloadService
	Classifier services.ClassifierService
	LLM        services.LLMService
	Indexes    services.IndexService
	Study      services.StudyService
	Remotes    services.RemoteFactory
}

func wireServices(log *logger.Logger, cfg Config, resolver *files.Resolver, reposet Repos) Services {
	auth := google.NewAuth(cfg.CredentialsPath, cfg.TokenPath, cfg.OAuthCallbackAddr, log)

	// Remote clients are rebuilt per batch so a refreshed token is used.
	remotes := func(ctx context.Context) (classroom.Client, downloads.DriveClient, error) {
		httpClient, err := auth.Client(ctx)
		if err != nil {
			return nil, nil, err
		}
		cls, err := classroom.NewClient(ctx, httpClient, log)
		if err != nil {
			return nil, nil, err
		}
		drv, err := google.NewDrive(ctx, httpClient, log)
		if err != nil {
			return nil, nil, err
		}
		return cls, drv, nil
	}

	settings := services.NewSettings(cfg.MaxConcurrentDownloads, cfg.RequestDelay)
	gemini := services.NewGeminiClient(cfg.GeminiAPIKey, log)

	store := services.NewMaterialStore(reposet.Materials)
	orchestrator := downloads.NewOrchestrator(resolver, store, log)

	indexes := services.NewIndexService(log, resolver, reposet.Courses, reposet.Materials)
	download := services.NewDownloadService(log, orchestrator, remotes, reposet.Courses, reposet.Sessions, indexes, settings)
	classifier := services.NewClassifierService(log, reposet.Subjects, reposet.Materials)
	llm := services.NewLLMService(log, gemini, reposet.Materials, reposet.Subjects)
	studySvc := services.NewStudyService(log, reposet.Notes, reposet.Flashcards, reposet.Progress, reposet.Chat, reposet.Materials, gemini)

	return Services{
		Auth:       auth,
		Settings:   settings,
		Download:   download,
		Classifier: classifier,
		LLM:        llm,
		Indexes:    indexes,
		Study:      studySvc,
		Remotes:    remotes,
	}
}
