package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"seoflow/internal/logging"
	"seoflow/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var followFlag bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logging.LogPath(cfg)
			if path == "" {
				return errors.New("paths.log_dir is not configured")
			}

			out := cmd.OutOrStdout()
			lines, offset, err := logs.Tail(path, limitFlag)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if !followFlag {
				return nil
			}

			err = logs.Follow(cmd.Context(), path, offset, func(lines []string) {
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "lines", "n", 100, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&followFlag, "follow", "f", false, "Keep polling for new lines")
	return cmd
}
