package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"seoflow/internal/sheet"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts per tab and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			var rows [][]string
			for _, tab := range sheet.AllTabs() {
				statuses := stats[tab]
				if len(statuses) == 0 {
					continue
				}
				names := make([]string, 0, len(statuses))
				for status := range statuses {
					names = append(names, string(status))
				}
				sort.Strings(names)
				for _, status := range names {
					rows = append(rows, []string{
						string(tab),
						status,
						formatCount(statuses[sheet.Status(status)]),
					})
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No records yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tab", "Status", "Count"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the record store",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			health, err := store.Health(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", health.DBPath)
			fmt.Fprintf(out, "Readable: %v\n", health.DatabaseReadable)
			fmt.Fprintf(out, "Integrity: %v\n", health.IntegrityCheck)
			fmt.Fprintf(out, "Records: %d\n", health.TotalRecords)
			if health.Error != "" {
				fmt.Fprintf(out, "Error: %s\n", health.Error)
			}
			return err
		},
	}
}
