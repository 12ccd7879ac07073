package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seoflow/internal/logging"
	"seoflow/internal/pipeline"
)

func newWorkflowsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List the pipeline workflows in execution order",
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

			registry := pipeline.NewRegistry(cfg, store, pipeline.NewCapabilities(cfg), logging.NewNop())
			rows := make([][]string, 0, len(registry.All()))
			for _, wf := range registry.All() {
				rows = append(rows, []string{wf.ID(), wf.Name()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name"}, rows, nil))
			return nil
		},
	}
}
