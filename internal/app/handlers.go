package app

import (
	"github.com/sudo-sidd/classroom-downloader/internal/files"
	apphttp "github.com/sudo-sidd/classroom-downloader/internal/http"
	httpH "github.com/sudo-sidd/classroom-downloader/internal/http/handlers"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

func wireHandlers(log *logger.Logger, reposet Repos, serviceset Services, resolver *files.Resolver) apphttp.RouterConfig {
	return apphttp.RouterConfig{
		Log: log,

		StatusHandler:   httpH.NewStatusHandler(log, serviceset.Auth, serviceset.Download, serviceset.LLM, reposet.Materials),
		AuthHandler:     httpH.NewAuthHandler(log, serviceset.Auth),
		CourseHandler:   httpH.NewCourseHandler(log, serviceset.Remotes, reposet.Courses),
		DownloadHandler: httpH.NewDownloadHandler(log, serviceset.Download),
		SettingsHandler: httpH.NewSettingsHandler(log, serviceset.Settings),
		MaterialHandler: httpH.NewMaterialHandler(log, reposet.Materials, resolver, serviceset.Indexes),
		SubjectHandler:  httpH.NewSubjectHandler(log, reposet.Subjects),
		ClassifyHandler: httpH.NewClassifyHandler(log, serviceset.Classifier, reposet.Materials, reposet.Subjects),
		LLMHandler:      httpH.NewLLMHandler(log, serviceset.LLM, reposet.Materials),
		StudyHandler:    httpH.NewStudyHandler(log, serviceset.Study),
	}
}
