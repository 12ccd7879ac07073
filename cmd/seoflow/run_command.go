package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"seoflow/internal/logging"
	"seoflow/internal/notify"
	"seoflow/internal/pipeline"
	"seoflow/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <workflow|all>",
		Short: "Run one workflow (wf01..wf11) or the whole pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			manager := pipeline.NewManager(cfg, store, logger, notify.NewService(cfg))

			out := cmd.OutOrStdout()
			if args[0] == "all" {
				summaries, err := manager.RunAll(cmd.Context())
				for _, wf := range manager.Registry().All() {
					if summary, ok := summaries[wf.ID()]; ok {
						printSummary(out, wf.ID(), wf.Name(), summary)
					}
				}
				return err
			}

			wf, ok := manager.Registry().Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown workflow %q (try `seoflow workflows`)", args[0])
			}
			summary, err := manager.Run(cmd.Context(), wf.ID())
			printSummary(out, wf.ID(), wf.Name(), summary)
			return err
		},
	}
}

func printSummary(out io.Writer, id, name string, summary workflow.Summary) {
	fmt.Fprintf(out, "%s %s: %d processed, %d failed, %d skipped in %s\n",
		id, name, summary.Processed, summary.Failed, summary.Skipped, summary.Elapsed.Round(time.Millisecond))
	for _, note := range summary.Notes {
		fmt.Fprintf(out, "  - %s\n", note)
	}
}
