package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/cmd/stockroomctl/cli"
)

var (
	importServerFlag   string
	importOperatorFlag string
	importKeyFlag      string
	importTimeoutFlag  time.Duration
)

// stockroomctl import <file.csv>
var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Bulk-import a CSV file through the API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		importer := cli.NewImporter(importServerFlag, importOperatorFlag, importTimeoutFlag)
		summary, err := importer.Import(cmd.Context(), f, importKeyFlag)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows: %d created, %d merged\n", len(summary.Rows), summary.Created, summary.Merged)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importServerFlag, "server", "http://127.0.0.1:8080", "stockroom API base URL")
	importCmd.Flags().StringVar(&importOperatorFlag, "operator", "", "operator label recorded in the audit log")
	importCmd.Flags().StringVar(&importKeyFlag, "idempotency-key", "", "optional idempotency key for safe retries")
	importCmd.Flags().DurationVar(&importTimeoutFlag, "timeout", 30*time.Second, "request timeout")
}
