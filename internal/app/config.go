package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sudo-sidd/classroom-downloader/internal/platform/envutil"
	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

type Config struct {
	Addr              string
	BaseDir           string
	DatabasePath      string
	CredentialsPath   string
	TokenPath         string
	OAuthCallbackAddr string
	GeminiAPIKey      string
	LogMode           string

	MaxConcurrentDownloads int
	RequestDelay           time.Duration
}

// fileConfig is the optional YAML config. Environment variables override
// anything set here.
type fileConfig struct {
	Addr                   string  `yaml:"addr"`
	BaseDir                string  `yaml:"base_dir"`
	DatabasePath           string  `yaml:"database_path"`
	CredentialsPath        string  `yaml:"credentials_path"`
	TokenPath              string  `yaml:"token_path"`
	OAuthCallbackAddr      string  `yaml:"oauth_callback_addr"`
	GeminiAPIKey           string  `yaml:"gemini_api_key"`
	LogMode                string  `yaml:"log_mode"`
	MaxConcurrentDownloads int     `yaml:"max_concurrent_downloads"`
	RequestDelaySeconds    float64 `yaml:"request_delay_seconds"`
}

// LoadConfig builds the runtime configuration: defaults, then the YAML file
// named by CONFIG_FILE (or ./config.yaml when present), then environment
// variables.
func LoadConfig(log *logger.Logger) (Config, error) {
	fc := fileConfig{
		Addr:                   ":5000",
		BaseDir:                "./materials",
		DatabasePath:           "./classroom_materials.db",
		CredentialsPath:        "./credentials.json",
		TokenPath:              "./token.json",
		OAuthCallbackAddr:      "localhost:8080",
		MaxConcurrentDownloads: 5,
		RequestDelaySeconds:    0.1,
	}

	path := envutil.String("CONFIG_FILE", "./config.yaml")
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg := Config{
		Addr:                   envutil.String("ADDR", fc.Addr),
		BaseDir:                envutil.String("BASE_DIR", fc.BaseDir),
		DatabasePath:           envutil.String("DATABASE_PATH", fc.DatabasePath),
		CredentialsPath:        envutil.String("GOOGLE_CREDENTIALS_PATH", fc.CredentialsPath),
		TokenPath:              envutil.String("GOOGLE_TOKEN_PATH", fc.TokenPath),
		OAuthCallbackAddr:      envutil.String("OAUTH_CALLBACK_ADDR", fc.OAuthCallbackAddr),
		GeminiAPIKey:           envutil.String("GEMINI_API_KEY", fc.GeminiAPIKey),
		LogMode:                envutil.String("LOG_MODE", fc.LogMode),
		MaxConcurrentDownloads: envutil.Int("MAX_CONCURRENT_DOWNLOADS", fc.MaxConcurrentDownloads),
		RequestDelay:           time.Duration(envutil.Float("REQUEST_DELAY_SECONDS", fc.RequestDelaySeconds) * float64(time.Second)),
	}
	if cfg.LogMode == "" {
		cfg.LogMode = "development"
	}
	return cfg, nil
}
