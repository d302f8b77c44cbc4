// Package provision performs the one-time target setup the gate demands.
// Running it is the explicit operator decision that marks a directory as a
// backup target.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"rsnap/internal/check"
	"rsnap/internal/transport"
	"rsnap/internal/util"
)

func Run(ctx context.Context, t transport.Transport, target string) error {
	if err := check.Gate(ctx, t, target); err == nil {
		fmt.Printf("%s is already provisioned\n", target)
		return nil
	}

	scratch, err := os.MkdirTemp("", "rsnap-provision-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	marker := filepath.Join(scratch, check.MarkerFile)
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		return fmt.Errorf("failed to create marker scratch file: %w", err)
	}
	if err := t.Push(ctx, marker, util.TargetPath(target, check.MarkerFile)); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	// Syncing an empty local directory creates the container remotely
	// through the same transport, no shell access needed.
	container := filepath.Join(scratch, check.ContainerDir)
	if err := os.Mkdir(container, 0o755); err != nil {
		return fmt.Errorf("failed to create container scratch dir: %w", err)
	}
	if err := t.Sync(ctx, container, util.TargetPath(target, check.ContainerDir), transport.SyncOptions{}); err != nil {
		return fmt.Errorf("failed to create snapshot container: %w", err)
	}

	fmt.Printf("provisioned %s for backups\n", target)
	return nil
}
