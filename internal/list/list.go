// Package list prints the snapshots present on a target and the current
// pointer value.
package list

import (
	"context"
	"fmt"
	"os"
	"sort"

	"rsnap/internal/check"
	"rsnap/internal/pointer"
	"rsnap/internal/transport"
	"rsnap/internal/util"
)

func Run(ctx context.Context, t transport.Transport, target string) error {
	if err := check.Gate(ctx, t, target); err != nil {
		return err
	}

	names, err := t.List(ctx, util.TargetPath(target, check.ContainerDir))
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	sort.Strings(names)

	scratch, err := os.MkdirTemp("", "rsnap-list-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	current := pointer.Resolve(ctx, t, target, scratch)

	if len(names) == 0 {
		fmt.Println("no snapshots")
	}
	for _, name := range names {
		if name == current {
			fmt.Printf("%s  <- last successful\n", name)
		} else {
			fmt.Println(name)
		}
	}
	return nil
}
