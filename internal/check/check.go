// Package check implements the provisioning gate: a target must carry the
// marker file and the snapshot container before any write is attempted.
package check

import (
	"context"
	"errors"
	"fmt"

	"rsnap/internal/transport"
	"rsnap/internal/util"
)

const (
	// MarkerFile must exist at the target root. Its absence means the
	// directory was never prepared for backups and must not be written to.
	MarkerFile = "backup_enabled"

	// ContainerDir holds one directory per snapshot.
	ContainerDir = "hourly"
)

var ErrNotProvisioned = errors.New("target is not provisioned for backups")

// Gate probes the marker file and the snapshot container over the same
// transport the sync uses, so local paths and remote targets behave
// identically. Read-only; a failed probe is fatal, not retryable.
func Gate(ctx context.Context, t transport.Transport, target string) error {
	if err := t.Probe(ctx, util.TargetPath(target, MarkerFile)); err != nil {
		return fmt.Errorf("%w: marker file %q not found at %s (create it to enable backups)",
			ErrNotProvisioned, MarkerFile, target)
	}
	if err := t.Probe(ctx, util.TargetPath(target, ContainerDir)); err != nil {
		return fmt.Errorf("%w: snapshot container %q not found at %s",
			ErrNotProvisioned, ContainerDir, target)
	}
	return nil
}

// Run is the standalone `check` command: the gate probes with per-probe
// console output.
func Run(ctx context.Context, t transport.Transport, target string) error {
	if err := t.Probe(ctx, util.TargetPath(target, MarkerFile)); err != nil {
		return fmt.Errorf("marker file: %w", err)
	}
	fmt.Printf("marker file %s: OK\n", MarkerFile)

	if err := t.Probe(ctx, util.TargetPath(target, ContainerDir)); err != nil {
		return fmt.Errorf("snapshot container: %w", err)
	}
	fmt.Printf("snapshot container %s/: OK\n", ContainerDir)

	fmt.Println("all checks passed")
	return nil
}
