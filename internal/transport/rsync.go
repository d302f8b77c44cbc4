package transport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Rsync runs the system rsync binary. Archive mode preserves metadata,
// --partial keeps interrupted transfers resumable, and --link-dest gives
// hardlink sharing against the basis snapshot. Deletion flags are never
// passed: a snapshot only gains content relative to its basis.
type Rsync struct {
	binary    string
	extraArgs []string
}

func NewRsync(binary string, extraArgs []string) *Rsync {
	if binary == "" {
		binary = "rsync"
	}
	return &Rsync{binary: binary, extraArgs: extraArgs}
}

func (r *Rsync) command(ctx context.Context, args ...string) *exec.Cmd {
	// The literal command line goes to the run log for post-hoc debugging.
	slog.Debug("Transport command", "command", r.binary+" "+strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stderr = os.Stderr
	return cmd
}

func (r *Rsync) List(ctx context.Context, path string) ([]string, error) {
	cmd := r.command(ctx, "--list-only", strings.TrimRight(path, "/")+"/")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	return parseListing(string(output)), nil
}

// parseListing extracts entry names from rsync --list-only output. Each
// line is perms, size, date, time, then the name, which may itself contain
// spaces. The "." self-entry is dropped.
func parseListing(output string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		name := strings.Join(fields[4:], " ")
		if name == "." {
			continue
		}
		names = append(names, name)
	}
	return names
}

func (r *Rsync) Probe(ctx context.Context, path string) error {
	cmd := r.command(ctx, "--list-only", path)
	cmd.Stderr = nil // probes are expected to fail on unprovisioned targets
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s not reachable: %w", path, err)
	}
	return nil
}

func (r *Rsync) Fetch(ctx context.Context, remotePath, localPath string) error {
	if err := r.command(ctx, remotePath, localPath).Run(); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", remotePath, err)
	}
	return nil
}

func (r *Rsync) Push(ctx context.Context, localPath, remotePath string) error {
	if err := r.command(ctx, localPath, remotePath).Run(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", remotePath, err)
	}
	return nil
}

func (r *Rsync) Sync(ctx context.Context, src, dst string, opts SyncOptions) error {
	args := r.syncArgs(src, dst, opts)
	cmd := r.command(ctx, args...)
	cmd.Stdout = os.Stdout
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rsync failed: %w", err)
	}
	return nil
}

func (r *Rsync) syncArgs(src, dst string, opts SyncOptions) []string {
	args := []string{"-a", "--partial"}
	args = append(args, r.extraArgs...)
	for _, p := range opts.Excludes {
		args = append(args, "--exclude="+string(p))
	}
	if opts.LinkBasis != "" {
		// Relative to dst, so it resolves to the sibling snapshot.
		args = append(args, "--link-dest=../"+opts.LinkBasis)
	}
	args = append(args, strings.TrimRight(src, "/")+"/", dst)
	return args
}
