package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Defnoch/finance/internal/rules"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and run scheduled background tasks",
	}
	cmd.AddCommand(tasksListCmd())
	cmd.AddCommand(tasksRunCmd())
	return cmd
}

func tasksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List task configurations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			configs, err := store.GetTaskConfigs(ctx)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			for _, c := range configs {
				lastRun := "never"
				if c.LastRunAt != nil {
					lastRun = c.LastRunAt.Format(time.RFC3339)
				}
				status := "idle"
				if c.Due(now) {
					status = "due"
				}
				if !c.IsEnabled {
					status = "disabled"
				}
				cmd.Printf("%-20s every %3dm  last run %-25s %s\n",
					c.Name, c.IntervalMinutes, lastRun, status)
			}
			return nil
		},
	}
}

func tasksRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all due tasks once",
		Long: `Poll the task configurations and execute every task whose interval has
elapsed. Intended to be invoked periodically from cron or a systemd
timer; missed runs simply catch up on the next invocation.`,
		RunE: runDueTasks,
	}
	cmd.Flags().Bool("force", false, "run tasks even when not due")
	return cmd
}

func runDueTasks(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	force, _ := cmd.Flags().GetBool("force")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	configs, err := store.GetTaskConfigs(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	ran := 0
	for _, config := range configs {
		if !config.Due(now) && !(force && config.IsEnabled) {
			continue
		}
		switch config.Name {
		case "categorization":
			report, err := rules.NewRunner(store, nil).Run(ctx)
			if err != nil {
				return fmt.Errorf("task %s failed: %w", config.Name, err)
			}
			cmd.Printf("%s: scanned %d, assigned %d, skipped %d\n",
				config.Name, report.Scanned, report.Assigned, report.Skipped)
		default:
			cmd.Printf("%s: no handler, skipping\n", config.Name)
			continue
		}
		if err := store.UpdateTaskLastRun(ctx, config.ID, now); err != nil {
			return err
		}
		ran++
	}

	if ran == 0 {
		cmd.Println("No tasks due")
	}
	return nil
}
