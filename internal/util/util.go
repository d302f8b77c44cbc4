package util

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"rsnap/internal/logging"
)

// TimestampLayout is the snapshot identifier format. Local time, second
// precision, lexicographically sortable, no characters that are unsafe in
// file names.
const TimestampLayout = "2006-01-02T15-04-05"

func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Slug converts a target location string (local path or rsync remote spec
// like user@host:/backups) into a name usable as a directory component for
// per-target state under the base dir.
func Slug(target string) string {
	var b strings.Builder
	for _, r := range target {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// TargetPath joins path elements onto a target location string. The target
// may be a local path or a remote spec; "host:/backups" + "hourly" yields
// "host:/backups/hourly".
func TargetPath(root string, elems ...string) string {
	return strings.TrimRight(root, "/") + "/" + path.Join(elems...)
}

func RunDir(baseDir, targetSlug string) string {
	return filepath.Join(baseDir, "run", targetSlug)
}

func LogDir(baseDir, targetSlug string) string {
	return filepath.Join(baseDir, "logs", targetSlug)
}

func SetupDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func SetupLogging(logPath string) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logger, logFile, err := logging.NewLogger(logPath)
	if err != nil {
		return nil, nil, err
	}

	return logger, logFile, nil
}
