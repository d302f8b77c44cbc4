// Package backup orchestrates one snapshot run: provisioning gate, exclude
// loading, previous-timestamp resolution, the link-based sync, and the
// pointer commit. One invocation produces at most one snapshot; there are
// no in-run retries, recovery is the scheduler's next invocation.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"rsnap/internal/check"
	"rsnap/internal/config"
	"rsnap/internal/exclude"
	"rsnap/internal/lock"
	"rsnap/internal/manifest"
	"rsnap/internal/pointer"
	"rsnap/internal/remote"
	"rsnap/internal/transport"
	"rsnap/internal/util"
)

// ErrTransfer marks a run whose snapshot sync reported failure. The
// pointer is left untouched and the partial snapshot directory is orphaned
// on the target for manual inspection.
var ErrTransfer = errors.New("snapshot transfer failed")

const lockFile = "rsnap.lock"

// Context is the immutable per-run state, built once at the start of a run
// and passed through every step.
type Context struct {
	Timestamp    string // snapshot identifier for this run
	Source       string
	Target       string
	TargetSlug   string
	RunDir       string // local per-target state dir (lock, scratch, manifest)
	LogPath      string
	SnapshotPath string // TARGET/hourly/<Timestamp>
}

func NewContext(cfg *config.Config, source, target string, now time.Time) Context {
	ts := util.Timestamp(now)
	slug := util.Slug(target)
	return Context{
		Timestamp:    ts,
		Source:       source,
		Target:       target,
		TargetSlug:   slug,
		RunDir:       util.RunDir(cfg.BaseDir, slug),
		LogPath:      filepath.Join(util.LogDir(cfg.BaseDir, slug), ts+".log"),
		SnapshotPath: util.TargetPath(target, check.ContainerDir, ts),
	}
}

func Run(ctx context.Context, cfg *config.Config, t transport.Transport, source, target string) error {
	return runAt(ctx, cfg, t, source, target, time.Now())
}

func runAt(ctx context.Context, cfg *config.Config, t transport.Transport, source, target string, now time.Time) error {
	if source == "" || target == "" {
		return fmt.Errorf("source and target must be specified")
	}
	if ctx.Err() != nil {
		return fmt.Errorf("backup cancelled before start: %w", ctx.Err())
	}

	run := NewContext(cfg, source, target, now)

	if err := util.SetupDirectories(cfg.BaseDir, run.RunDir); err != nil {
		return err
	}

	logger, logFile, err := util.SetupLogging(run.LogPath)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("Backup started", "timestamp", run.Timestamp, "source", source, "target", target)

	if !cfg.DisableLock {
		releaseLock, err := lock.Acquire(filepath.Join(run.RunDir, lockFile), source, target)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		defer func() {
			if err := releaseLock(); err != nil {
				slog.Warn("Failed to release lock", "error", err)
			}
		}()
	}

	// Hard precondition: never write to a target that was not explicitly
	// provisioned. Everything before this point only touched local state.
	if err := check.Gate(ctx, t, target); err != nil {
		slog.Error("Provisioning gate failed", "error", err)
		return err
	}
	slog.Info("Provisioning gate passed", "target", target)

	excludes, mangled, err := exclude.Load(cfg.IgnoreFile)
	if err != nil {
		return fmt.Errorf("failed to read ignore file: %w", err)
	}
	for _, raw := range mangled {
		slog.Warn("Ignore pattern sanitized, unsupported characters stripped",
			"pattern", raw, "sanitized", string(exclude.Sanitize(raw)))
	}
	slog.Info("Exclude patterns loaded", "count", len(excludes), "file", cfg.IgnoreFile)

	basis := pointer.Resolve(ctx, t, target, run.RunDir)
	if basis != "" {
		slog.Info("Hardlink basis resolved", "basis", basis)
	}

	if ctx.Err() != nil {
		return fmt.Errorf("backup cancelled before transfer: %w", ctx.Err())
	}

	slog.Info("Creating snapshot", "snapshot", run.SnapshotPath, "basis", basis)
	opts := transport.SyncOptions{Excludes: excludes, LinkBasis: basis}
	if err := t.Sync(ctx, source, run.SnapshotPath, opts); err != nil {
		// The pointer stays at the last good snapshot, so the next run
		// still links against an intact basis. The partial directory is
		// left on the target; it is never referenced by anything.
		slog.Error("Snapshot transfer failed", "snapshot", run.Timestamp, "error", err)
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	slog.Info("Snapshot transfer completed", "snapshot", run.Timestamp)

	if err := pointer.Commit(ctx, t, target, run.RunDir, run.Timestamp); err != nil {
		return err
	}
	slog.Info("Pointer advanced", "timestamp", run.Timestamp)

	writeRunManifest(ctx, cfg, run, basis, excludes)

	slog.Info("Backup completed successfully", "snapshot", run.Timestamp)
	return nil
}

// writeRunManifest records the successful run locally and mirrors the
// record to S3 when configured. The snapshot and pointer are already
// committed, so nothing here can fail the run: problems are warnings.
func writeRunManifest(ctx context.Context, cfg *config.Config, run Context, basis string, excludes []exclude.Pattern) {
	logHash, err := manifest.BLAKE3File(run.LogPath)
	if err != nil {
		slog.Warn("Failed to hash run log", "error", err)
	}

	patterns := make([]string, len(excludes))
	for i, p := range excludes {
		patterns[i] = string(p)
	}

	rec := &manifest.Run{
		Datetime:  time.Now().Unix(),
		Hostname:  manifest.Hostname(),
		Source:    run.Source,
		Target:    run.Target,
		Snapshot:  run.Timestamp,
		Basis:     basis,
		Excludes:  patterns,
		LogPath:   run.LogPath,
		LogBlake3: logHash,
	}

	lastPath := filepath.Join(run.RunDir, manifest.LastRunFile)
	if err := manifest.Write(lastPath, rec); err != nil {
		slog.Warn("Failed to write run manifest", "error", err)
		return
	}
	slog.Info("Run manifest written", "path", lastPath)

	if cfg.S3.Enabled {
		mirrorManifest(ctx, cfg, run, lastPath)
	}
}

func mirrorManifest(ctx context.Context, cfg *config.Config, run Context, lastPath string) {
	backend, err := remote.NewS3(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix,
		cfg.S3.Endpoint, cfg.S3StorageClass(), cfg.S3RetryAttempts())
	if err != nil {
		slog.Warn("S3 manifest mirror unavailable", "error", err)
		return
	}
	if err := backend.VerifyCredentials(ctx); err != nil {
		slog.Warn("S3 credentials verification failed", "error", err)
		return
	}

	hash, err := manifest.BLAKE3File(lastPath)
	if err != nil {
		slog.Warn("Failed to hash run manifest", "error", err)
	}

	remotePath := filepath.Join("manifests", run.TargetSlug, run.Timestamp, manifest.LastRunFile)
	if err := backend.Upload(ctx, lastPath, remotePath, hash); err != nil {
		slog.Warn("Failed to mirror run manifest", "error", err)
		return
	}
	slog.Info("Run manifest mirrored", "remote", remotePath)
}
