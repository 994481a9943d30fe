package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists recent check runs from the cache database.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent check runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cache := openCache(cfg)
	if cache == nil {
		return fmt.Errorf("run history requires the cache database (cache.database_path)")
	}
	defer cache.Close()

	runs, err := cache.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %8s  %6s  %10s  %10s\n",
		"run", "started", "duration", "refs", "unresolved", "suppressed")
	for _, run := range runs {
		fmt.Printf("%-36s  %-20s  %8s  %6d  %10d  %10d\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Duration.Truncate(time.Millisecond).String(),
			run.RefsTotal,
			run.Unresolved,
			run.Suppressed)
	}
	return nil
}
