package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/motion/cmd/motion/internal/scenario"
)

func init() {
	RegisterCommand(newReplayCmd)
}

func newReplayCmd() *cobra.Command {
	var (
		maxCycles int
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Replay a scenario and print its measurement trace",
		Long: `Replay a scenario file through layout schedulers.

The scenario declares elements, their sync targets (a shared layout group
or the standalone batcher) and a list of update cycles. Each cycle mounts
and unmounts elements, changes layout ids, layout orders and boxes, and
commits. The trace lists every snapshot, batch, registration and
measurement in the order it happened.

Scenarios are YAML (.yaml, .yml) or TOML (.toml) and carry a schema
version such as v1.0.0.

Defaults for --max-cycles and color output come from motion.yaml in the
working directory, when present.

Usage:
  motion replay rows.yaml
  motion replay cards.toml --max-cycles 3 --no-color`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)

			limit := cfg.MaxCycles
			if cmd.Flags().Changed("max-cycles") {
				if maxCycles < 0 {
					return fmt.Errorf("--max-cycles must not be negative (got %d)", maxCycles)
				}
				limit = maxCycles
			}

			s, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			logger.Debug("loaded scenario", "path", args[0], "version", s.Version,
				"elements", len(s.Elements), "cycles", len(s.Cycles))

			p := newProgress(logger)
			trace, err := scenario.NewRunner(s, logger).Run(ctx, limit)
			if trace != nil {
				if perr := printTrace(cmd.OutOrStdout(), trace, cfg.Color && !noColor); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Replayed %d cycles", trace.Cycles()))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "stop after N cycles (0 for no limit)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable styled output")
	return cmd
}
