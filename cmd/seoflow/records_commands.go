package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"seoflow/internal/sheet"
	"seoflow/internal/textutil"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and manage pipeline records",
	}
	recordsCmd.AddCommand(newRecordsListCommand(ctx))
	recordsCmd.AddCommand(newRecordsAddCommand(ctx))
	recordsCmd.AddCommand(newRecordsApproveCommand(ctx))
	return recordsCmd
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	var tabFlag string
	var statusFlag string
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records in one tab",
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, ok := sheet.ParseTab(tabFlag)
			if !ok {
				return fmt.Errorf("unknown tab %q (known: %s)", tabFlag, knownTabs())
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var records []*sheet.Record
			if statusFlag != "" {
				records, err = store.RecordsByStatus(cmd.Context(), tab, sheet.Status(statusFlag), limitFlag)
			} else {
				records, err = store.List(cmd.Context(), tab)
			}
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					strconv.FormatInt(record.ID, 10),
					string(record.Status),
					textutil.Truncate(summarizeFields(record.Fields), 60),
					textutil.Truncate(record.LastError, 40),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Status", "Fields", "Last Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&tabFlag, "tab", "t", "", "Tab name (required)")
	cmd.Flags().StringVarP(&statusFlag, "status", "s", "", "Filter by status")
	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 0, "Limit the number of rows")
	_ = cmd.MarkFlagRequired("tab")
	return cmd
}

func newRecordsAddCommand(ctx *commandContext) *cobra.Command {
	var tabFlag string
	var fieldFlags []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a record (e.g. a niche input or an incoming lead)",
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, ok := sheet.ParseTab(tabFlag)
			if !ok {
				return fmt.Errorf("unknown tab %q (known: %s)", tabFlag, knownTabs())
			}
			fields := make(map[string]string, len(fieldFlags))
			for _, pair := range fieldFlags {
				key, value, found := strings.Cut(pair, "=")
				if !found || key == "" {
					return fmt.Errorf("field %q is not key=value", pair)
				}
				fields[key] = value
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.Append(cmd.Context(), tab, fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added record %d to %s at %s\n", record.ID, record.Tab, record.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tabFlag, "tab", "t", "", "Tab name (required)")
	cmd.Flags().StringArrayVarP(&fieldFlags, "field", "f", nil, "Field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("tab")
	return cmd
}

// newRecordsApproveCommand is the manual review gate: it advances an
// illustrated article to approved so the publishing workflow picks it up.
func newRecordsApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <record-id>",
		Short: "Approve an illustrated article for publishing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("record id %q is not a number", args[0])
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("record %d not found", id)
			}
			if record.Tab != sheet.TabPublishQueue || record.Status != sheet.StatusIllustrated {
				return fmt.Errorf("record %d is %s/%s; only illustrated publish-queue rows can be approved",
					id, record.Tab, record.Status)
			}
			if err := store.Advance(cmd.Context(), record, sheet.StatusApproved); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Approved %q for publishing\n", record.Field("title"))
			return nil
		},
	}
}

func summarizeFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+fields[key])
	}
	return strings.Join(parts, " ")
}

func knownTabs() string {
	names := make([]string, 0, len(sheet.AllTabs()))
	for _, tab := range sheet.AllTabs() {
		names = append(names, string(tab))
	}
	return strings.Join(names, ", ")
}
