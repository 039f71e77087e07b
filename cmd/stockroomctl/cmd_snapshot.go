package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/cmd/stockroomctl/cli"
	"github.com/odyssey-erp/stockroom/internal/app"
	"github.com/odyssey-erp/stockroom/internal/persistence"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect the persisted warehouse snapshot",
}

// stockroomctl snapshot dump
var snapshotDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the persisted snapshot from the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := persistence.Open(cmd.Context(), cfg.StoreOptions())
		if err != nil {
			return err
		}
		defer closeStore()

		summary, err := cli.DumpSnapshot(cmd.Context(), store, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s store: %d items, %d logs, %d rmas\n", cfg.StoreDriver, summary.Items, summary.Logs, summary.RMAs)
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotDumpCmd)
}

func loadEnv() error {
	return app.LoadDotEnv()
}

func loadConfig() (*app.Config, error) {
	return app.LoadConfig()
}
