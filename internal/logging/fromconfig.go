package logging

import (
	"log/slog"
	"path/filepath"

	"seoflow/internal/config"
)

// LogPath returns the location of the shared log file, or "" when no log
// directory is configured.
func LogPath(cfg *config.Config) string {
	if cfg.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, "seoflow.log")
}

// NewFromConfig builds the process logger from the logging section, writing
// to stdout and the daemon log file.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	paths := []string{"stdout"}
	if path := LogPath(cfg); path != "" {
		paths = append(paths, path)
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: paths,
	})
}
