package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"rsnap/internal/backup"
	"rsnap/internal/check"
	"rsnap/internal/config"
	"rsnap/internal/list"
	"rsnap/internal/provision"
	"rsnap/internal/transport"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config",
		Usage: "path to configuration yaml file",
		Value: "rsnap_config.yaml",
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, *transport.Rsync, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, transport.NewRsync(cfg.RsyncPath, cfg.RsyncArgs), nil
}

func singleTarget(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one TARGET argument")
	}
	return cmd.Args().Get(0), nil
}

func main() {
	cmd := &cli.Command{
		Name:    "rsnap",
		Usage:   "Rotating hardlink snapshot backups",
		Version: "0.1.0",
		Commands: []*cli.Command{
			{
				Name:      "backup",
				Usage:     "Create one snapshot of SOURCE under TARGET/hourly",
				ArgsUsage: "SOURCE TARGET",
				Flags:     []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("expected exactly SOURCE and TARGET arguments")
					}
					cfg, t, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return backup.Run(ctx, cfg, t, cmd.Args().Get(0), cmd.Args().Get(1))
				},
			},
			{
				Name:      "check",
				Usage:     "Verify TARGET is provisioned for backups",
				ArgsUsage: "TARGET",
				Flags:     []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					target, err := singleTarget(cmd)
					if err != nil {
						return err
					}
					_, t, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return check.Run(ctx, t, target)
				},
			},
			{
				Name:      "provision",
				Usage:     "One-time setup: create the marker file and snapshot container on TARGET",
				ArgsUsage: "TARGET",
				Flags:     []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					target, err := singleTarget(cmd)
					if err != nil {
						return err
					}
					_, t, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return provision.Run(ctx, t, target)
				},
			},
			{
				Name:      "list",
				Usage:     "List snapshots on TARGET and the last successful one",
				ArgsUsage: "TARGET",
				Flags:     []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					target, err := singleTarget(cmd)
					if err != nil {
						return err
					}
					_, t, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return list.Run(ctx, t, target)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Fprintln(os.Stderr, "interrupted; pointer untouched, partial snapshot left on target")
			os.Exit(130)
		}
		slog.Error("rsnap error", "error", err)
		os.Exit(1)
	}
}
