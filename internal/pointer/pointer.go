// Package pointer manages the last-successful-timestamp file at the target
// root: the single piece of persisted state linking one run's snapshot to
// the next run's hardlink basis.
package pointer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rsnap/internal/transport"
	"rsnap/internal/util"
)

const FileName = "last_successful_timestamp"

// Resolve fetches the pointer from the target into scratchDir and returns
// the previous snapshot timestamp. Any fetch miss (absent file, transport
// failure) resolves to the empty timestamp: the run proceeds as a first run
// with a full copy. Whether the named snapshot still exists on the target
// is not checked; a stale basis degrades to a full copy in the primitive.
func Resolve(ctx context.Context, t transport.Transport, target, scratchDir string) string {
	local := filepath.Join(scratchDir, FileName)
	defer os.Remove(local)

	if err := t.Fetch(ctx, util.TargetPath(target, FileName), local); err != nil {
		slog.Info("No previous timestamp on target, performing full copy", "error", err)
		return ""
	}

	data, err := os.ReadFile(local)
	if err != nil {
		slog.Warn("Failed to read fetched pointer, performing full copy", "error", err)
		return ""
	}

	return strings.TrimSpace(string(data))
}

// Commit advances the pointer to timestamp. Called only after the snapshot
// transfer reported success; a failed run must leave the pointer at the
// last good snapshot.
func Commit(ctx context.Context, t transport.Transport, target, scratchDir, timestamp string) error {
	local := filepath.Join(scratchDir, FileName)
	if err := os.WriteFile(local, []byte(timestamp+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write pointer scratch file: %w", err)
	}
	defer os.Remove(local)

	if err := t.Push(ctx, local, util.TargetPath(target, FileName)); err != nil {
		return fmt.Errorf("failed to commit pointer: %w", err)
	}
	return nil
}
