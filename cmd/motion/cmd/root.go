// Package cmd implements the motion CLI commands.
//
// The command structure follows a root command that dispatches to
// subcommands (replay, version). Subcommands register themselves from init.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/go-drift/motion/cmd/motion/internal/config"
	"github.com/go-drift/motion/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// commands holds constructors for the registered subcommands.
var commands []func() *cobra.Command

// RegisterCommand adds a subcommand constructor to the CLI.
func RegisterCommand(newCmd func() *cobra.Command) {
	commands = append(commands, newCmd)
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "motion",
		Short: "motion - layout measurement for animated trees",
		Long: `motion drives layout schedulers through scripted update cycles.

Each cycle snapshots bounding boxes before the tree commits, measures
them after, and hands every element the delta it should animate from.
Elements either batch with their siblings or synchronize through a
shared layout group.

Use "motion <command> --help" for more information about a command.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Resolve(dir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			level := cfg.LogLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: verbose})

			ctx := withLogger(cmd.Context(), logger)
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("motion %s (built %s)\n", Version, BuildTime))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	for _, newCmd := range commands {
		root.AddCommand(newCmd())
	}
	return root
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Resolved) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFromContext returns the resolved config, or the defaults when none
// is attached.
func configFromContext(ctx context.Context) *config.Resolved {
	if cfg, ok := ctx.Value(configKey{}).(*config.Resolved); ok {
		return cfg
	}
	return &config.Resolved{
		LogLevel:  log.InfoLevel,
		Color:     true,
		MaxCycles: config.DefaultMaxCycles,
	}
}
