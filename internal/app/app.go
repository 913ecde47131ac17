package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sudo-sidd/classroom-downloader/internal/data/db"
	"github.com/sudo-sidd/classroom-downloader/internal/files"
	apphttp "github.com/sudo-sidd/classroom-downloader/internal/http"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Services Services
}

func New() (*App, error) {
	log, err := logger.New("development")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if cfg.LogMode != "development" {
		if log, err = logger.New(cfg.LogMode); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	sqliteSvc, err := db.NewSQLiteService(cfg.DatabasePath, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init sqlite: %w", err)
	}
	theDB := sqliteSvc.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("sqlite automigrate: %w", err)
	}

	resolver, err := files.NewResolver(cfg.BaseDir, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init file resolver: %w", err)
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(log, cfg, resolver, reposet)
	server := apphttp.NewServer(wireHandlers(log, reposet, serviceset, resolver))

	return &App{
		Log:      log,
		DB:       theDB,
		Server:   server,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Serving", "addr", a.Cfg.Addr, "base_dir", a.Cfg.BaseDir)
	return a.Server.Run(a.Cfg.Addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
