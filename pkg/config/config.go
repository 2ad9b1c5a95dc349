package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Kibana saved-object stamps
const (
	KibanaVersion                = "8.8.0"
	DashboardMigrationVersion    = "8.8.0"
	IndexPatternMigrationVersion = "8.0.0"
	ObjectVersion                = "WzEsMV0="
	DefaultTimestamp             = "2024-01-01T00:00:00.000Z"
	TimestampLayout              = "2006-01-02T15:04:05.000Z"
)

// Trivy data view defaults
const (
	DefaultDataViewID    = "trivy-reports"
	DefaultDataViewTitle = "trivy-reports-*"
	DefaultDataViewName  = "Trivy Reports"
	DefaultTimeField     = "@timestamp"
)

// Dashboard defaults
const (
	DefaultTimeFrom  = "now-7d"
	DefaultTimeTo    = "now"
	DefaultLayerID   = "layer1"
	QueryLanguage    = "kuery"
	RecordsField     = "___records___"
	DefaultTermsSize = 10
)

// Output defaults
const (
	DefaultOutputDir  = "."
	DefaultFilePrefix = "trivy-"
	FileExtension     = ".ndjson"
	FilePerm          = 0o644
	DirPerm           = 0o755
)

// Environment variables
const (
	EnvOutputDir  = "DASHGEN_OUTPUT_DIR"
	EnvCatalogDir = "DASHGEN_CATALOG_DIR"
	EnvLogLevel   = "DASHGEN_LOG_LEVEL"
	EnvLogFormat  = "DASHGEN_LOG_FORMAT"
)

// Config holds the settings the CLI reads from the environment.
// Flags override every field.
type Config struct {
	OutputDir  string
	CatalogDir string
	LogLevel   string
	LogFormat  string
}

// Load reads the given .env files, or the default locations when none are
// given, and returns the resulting Config. Variables already set in the
// environment are never overridden; among files the first one wins.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = defaultEnvFiles()
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Warn().Err(err).Str("path", f).Msg("ignoring unreadable env file")
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		OutputDir:  getEnv(EnvOutputDir, DefaultOutputDir),
		CatalogDir: os.Getenv(EnvCatalogDir),
		LogLevel:   getEnv(EnvLogLevel, "info"),
		LogFormat:  getEnv(EnvLogFormat, "console"),
	}
}

// defaultEnvFiles lists ./.env before the user-level file so a project
// checkout can pin its own output directory.
func defaultEnvFiles() []string {
	files := []string{".env"}
	if dir, err := os.UserConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, "dashgen", ".env"))
	}
	return files
}

func getEnv(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
