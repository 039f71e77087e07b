package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/cmd/stockroomctl/cli"
	"github.com/odyssey-erp/stockroom/jobs"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage background jobs",
}

// stockroomctl jobs trigger <name>
var jobsTriggerCmd = &cobra.Command{
	Use:       "trigger <" + strings.Join(jobNames(), "|") + ">",
	Short:     "Enqueue a job for immediate processing",
	Args:      cobra.ExactArgs(1),
	ValidArgs: jobNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		jobsCLI, err := cli.NewJobsCLI(cfg.AsynqRedis())
		if err != nil {
			return err
		}
		defer jobsCLI.Close()

		info, err := jobsCLI.Trigger(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s as %s on queue %s\n", info.Type, info.ID, info.Queue)
		return nil
	},
}

// stockroomctl jobs stats
var jobsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show queue statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		jobsCLI, err := cli.NewJobsCLI(cfg.AsynqRedis())
		if err != nil {
			return err
		}
		defer jobsCLI.Close()

		stats, err := jobsCLI.InspectQueue(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func jobNames() []string {
	names := make([]string, 0, len(jobs.TaskNames))
	for name := range jobs.TaskNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	jobsCmd.AddCommand(jobsTriggerCmd)
	jobsCmd.AddCommand(jobsStatsCmd)
}
