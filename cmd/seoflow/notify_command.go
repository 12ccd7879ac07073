package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seoflow/internal/notify"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.Method == "" || cfg.Notifications.Method == "none" {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications are not configured (set notifications.method)")
				return nil
			}
			service := notify.NewService(cfg)
			if err := service.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
