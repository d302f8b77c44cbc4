// Package transport models the sync primitive the orchestration runs on: a
// small interface over rsync so the snapshot logic is testable against a
// fake, plus the real rsync-backed implementation.
package transport

import (
	"context"

	"rsnap/internal/exclude"
)

// SyncOptions parameterizes one mirror operation.
type SyncOptions struct {
	// Excludes are passed to the primitive in order, one directive each.
	Excludes []exclude.Pattern

	// LinkBasis names a sibling directory of the destination whose
	// unchanged files the new tree should hardlink instead of copying.
	// Empty means no basis: a full copy.
	LinkBasis string
}

// Transport is the sync primitive. All paths may be local paths or remote
// location specs (host:path, user@host:path); implementations must treat
// both identically.
type Transport interface {
	// List returns the entry names directly under path.
	List(ctx context.Context, path string) ([]string, error)

	// Probe is a read-only existence check for path.
	Probe(ctx context.Context, path string) error

	// Fetch copies a single remote file to a local path.
	Fetch(ctx context.Context, remotePath, localPath string) error

	// Push copies a single local file over a remote path.
	Push(ctx context.Context, localPath, remotePath string) error

	// Sync mirrors the tree at src into dst, preserving metadata, with
	// partial-transfer safety. It never deletes from dst.
	Sync(ctx context.Context, src, dst string, opts SyncOptions) error
}
