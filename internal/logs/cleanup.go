package logs

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"seoflow/internal/logging"
)

// CleanupOld removes .log files under dir whose modification time is older
// than retentionDays. Failures are logged and skipped so startup never
// blocks on log housekeeping.
func CleanupOld(logger *slog.Logger, dir string, retentionDays int) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if dir == "" || retentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("read log directory", logging.String("dir", dir), logging.Error(err))
		}
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("remove stale log file", logging.String("path", path), logging.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("pruned stale log files",
			logging.String("dir", dir),
			logging.Int("removed", removed),
			logging.Int("retention_days", retentionDays))
	}
}
